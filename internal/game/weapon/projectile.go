package weapon

import "github.com/udisondev/skirmish/internal/model"

// Side tags who owns a projectile or a cooldown.
type Side int32

const (
	// SidePlayer - shots fired by the player ship (single global cooldown)
	SidePlayer Side = iota
	// SideRaider - shots fired by raiders (cooldown keyed per shooter)
	SideRaider
)

// String returns human-readable side name
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "PLAYER"
	case SideRaider:
		return "RAIDER"
	default:
		return "UNKNOWN"
	}
}

// Projectile is a short-lived ballistic object. Damage, speed and lifetime
// are fixed at creation; lifetime only decreases. Once deactivated a
// projectile is removed from the pool and never collision-checked again.
type Projectile struct {
	Position model.Vec2
	Velocity model.Vec2
	Damage   float64
	Side     Side
	Lifetime float64 // seconds remaining
	Radius   float64
	Active   bool
}
