package model

// Tuning holds per-archetype movement and combat parameters for a raider.
// Loaded once at construction from config; never mutated mid-run.
type Tuning struct {
	MaxSpeed          float64 // world units/second
	Acceleration      float64 // world units/second²
	TurnRate          float64 // radians/second
	DetectionRange    float64 // target becomes visible inside this radius
	AttackRange       float64 // Chase → Attack below this distance
	FleeHealthFrac    float64 // health/max below this forces Flee
	LoseInterestRange float64 // target lost beyond this distance
	ContactDamage     float64 // damage dealt to the player on body contact
	LootMin           int     // loot value bounds, inclusive
	LootMax           int
	CollisionRadius   float64
	MaxHealth         float64
	PatrolRadius      float64 // radius of the patrol circle around the anchor
	RespawnDelay      float64 // seconds before the spawner replaces a destroyed raider
}

// DefaultTuning returns the baseline raider archetype.
func DefaultTuning() Tuning {
	return Tuning{
		MaxSpeed:          180,
		Acceleration:      220,
		TurnRate:          3.0,
		DetectionRange:    450,
		AttackRange:       120,
		FleeHealthFrac:    0.25,
		LoseInterestRange: 700,
		ContactDamage:     15,
		LootMin:           10,
		LootMax:           30,
		CollisionRadius:   18,
		MaxHealth:         60,
		PatrolRadius:      300,
		RespawnDelay:      20,
	}
}

// Validate reports the first contract violation in the tuning record.
func (t Tuning) Validate() error {
	switch {
	case t.MaxSpeed <= 0:
		return errTuning("max_speed must be > 0")
	case t.Acceleration <= 0:
		return errTuning("acceleration must be > 0")
	case t.TurnRate <= 0:
		return errTuning("turn_rate must be > 0")
	case t.DetectionRange <= 0:
		return errTuning("detection_range must be > 0")
	case t.AttackRange <= 0:
		return errTuning("attack_range must be > 0")
	case t.FleeHealthFrac < 0 || t.FleeHealthFrac > 1:
		return errTuning("flee_health_fraction must be in [0, 1]")
	case t.LoseInterestRange < t.DetectionRange:
		return errTuning("lose_interest_range must be >= detection_range")
	case t.LootMax < t.LootMin:
		return errTuning("loot_max must be >= loot_min")
	case t.CollisionRadius <= 0:
		return errTuning("collision_radius must be > 0")
	case t.MaxHealth <= 0:
		return errTuning("max_health must be > 0")
	case t.PatrolRadius <= 0:
		return errTuning("patrol_radius must be > 0")
	}
	return nil
}

type errTuning string

func (e errTuning) Error() string {
	return "tuning: " + string(e)
}
