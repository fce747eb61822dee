package model

import "math"

// Body is the minimal kinematic integrator shared by all moving objects:
// the player ship, raiders and projectiles all advance through it.
type Body struct {
	Position         Vec2
	Velocity         Vec2
	Rotation         float64 // radians, normalized to (-π, π]
	RotationVelocity float64 // radians/second
	MaxSpeed         float64 // world units/second, 0 = unlimited
}

// Integrate advances position and rotation by dt seconds.
// Velocity magnitude is clamped to MaxSpeed and rotation is kept canonical.
func (b *Body) Integrate(dt float64) {
	if b.MaxSpeed > 0 {
		b.Velocity = b.Velocity.ClampLength(b.MaxSpeed)
	}
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	b.Rotation = NormalizeAngle(b.Rotation + b.RotationVelocity*dt)
}

// Stop zeroes all motion.
func (b *Body) Stop() {
	b.Velocity = Vec2{}
	b.RotationVelocity = 0
}

// NormalizeAngle wraps an angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleDiff returns the shortest signed rotation from angle a to angle b.
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(b - a)
}
