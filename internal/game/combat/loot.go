package combat

import "math/rand/v2"

// RollLoot samples a uniform integer loot value in [min, max], both bounds
// inclusive. Bounds below 1 are lifted to keep destroyed raiders worth
// something even under a misconfigured archetype.
func RollLoot(rng *rand.Rand, min, max int) int {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	if max == min {
		return min
	}
	return min + rng.IntN(max-min+1)
}
