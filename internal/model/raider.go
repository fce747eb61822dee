package model

import (
	"math"
	"math/rand/v2"
)

// Movement policy constants shared by all raider archetypes.
const (
	frictionFactor    = 0.98 // velocity damping applied every kinematic tick
	patrolRepickDist  = 50   // pick a new patrol waypoint once within this range
	fleeOffsetDist    = 200  // flee steers toward a point this far beyond-opposite the target
	patrolAccelFrac   = 0.5
	chaseAccelFrac    = 0.8
	attackAccelFrac   = 1.0
	fleeAccelFrac     = 1.0
	flashDuration     = 0.1 // seconds of hit-flash after taking damage
	headingThrustGate = math.Pi / 2
)

// Raider is a single autonomous hostile ship: a kinematic body plus the
// four-state behavior machine (Patrol → Chase → Attack → Flee).
//
// The raider owns its per-tick movement; state transitions are driven
// externally by the BehaviorCoordinator at its decision cadence.
type Raider struct {
	Body Body

	tuning    Tuning
	maxHealth float64
	health    float64
	state     State

	// Steer target. For Chase/Attack this is the (possibly predicted)
	// target position written by the coordinator each pass.
	target    Vec2
	hasTarget bool

	patrolAnchor Vec2
	patrolRadius float64
	waypoint     Vec2
	hasWaypoint  bool

	passive   bool
	destroyed bool

	flashTimer float64

	rng *rand.Rand
}

// NewRaider creates a raider at the given world position.
// The position doubles as the initial patrol anchor.
// rng must be non-nil; all random draws go through it so runs are
// reproducible under a fixed seed.
func NewRaider(pos Vec2, patrolRadius float64, tuning Tuning, rng *rand.Rand) *Raider {
	return &Raider{
		Body: Body{
			Position: pos,
			Rotation: 0,
			MaxSpeed: tuning.MaxSpeed,
		},
		tuning:       tuning,
		maxHealth:    tuning.MaxHealth,
		health:       tuning.MaxHealth,
		state:        StatePatrol,
		patrolAnchor: pos,
		patrolRadius: patrolRadius,
		rng:          rng,
	}
}

// Tuning returns the archetype tuning record.
func (r *Raider) Tuning() Tuning { return r.tuning }

// State returns the current behavior state.
func (r *Raider) State() State { return r.state }

// SetState sets the behavior state without side effects.
// Transition side effects (patrol anchor reset on Flee → Patrol)
// are the coordinator's responsibility.
func (r *Raider) SetState(s State) { r.state = s }

// Health returns current health.
func (r *Raider) Health() float64 { return r.health }

// MaxHealth returns maximum health.
func (r *Raider) MaxHealth() float64 { return r.maxHealth }

// HealthFraction returns health/max in [0, 1].
func (r *Raider) HealthFraction() float64 {
	if r.maxHealth <= 0 {
		return 0
	}
	return r.health / r.maxHealth
}

// IsDestroyed reports whether health has reached zero.
func (r *Raider) IsDestroyed() bool { return r.destroyed }

// IsPassive reports whether the raider is under temporary non-hostility.
func (r *Raider) IsPassive() bool { return r.passive }

// SetPassive sets the temporary non-hostility flag (respawn grace period).
// Entering passive drops any hostile behavior back to Patrol.
func (r *Raider) SetPassive(passive bool) {
	r.passive = passive
	if passive && r.state != StatePatrol {
		r.state = StatePatrol
		r.ClearTarget()
	}
}

// Target returns the current steer target, if any.
func (r *Raider) Target() (Vec2, bool) { return r.target, r.hasTarget }

// SetTarget sets the steer target point.
func (r *Raider) SetTarget(p Vec2) {
	r.target = p
	r.hasTarget = true
}

// ClearTarget removes the steer target.
func (r *Raider) ClearTarget() {
	r.target = Vec2{}
	r.hasTarget = false
}

// PatrolAnchor returns the center of the patrol circle.
func (r *Raider) PatrolAnchor() Vec2 { return r.patrolAnchor }

// ResetPatrolAnchor re-centers the patrol circle on the current position.
// Called on the Flee → Patrol transition: the raider does not walk back
// to its original spawn circle.
func (r *Raider) ResetPatrolAnchor() {
	r.patrolAnchor = r.Body.Position
	r.hasWaypoint = false
}

// Position returns the current world position.
func (r *Raider) Position() Vec2 { return r.Body.Position }

// CollisionRadius returns the body collision radius.
func (r *Raider) CollisionRadius() float64 { return r.tuning.CollisionRadius }

// IsFlashing reports whether the hit-flash timer is running.
// Presentation-layer cosmetic; the timer lives here so any consumer
// can query it.
func (r *Raider) IsFlashing() bool { return r.flashTimer > 0 }

// TakeDamage subtracts health. No-op once destroyed.
// Dropping below the flee threshold forces an immediate Flee transition
// from Chase or Attack; a patrolling raider keeps evaluating transitions
// on the coordinator's next pass instead.
func (r *Raider) TakeDamage(amount float64) {
	if r.destroyed {
		return
	}

	r.health -= amount
	r.flashTimer = flashDuration

	if r.health <= 0 {
		r.health = 0
		r.destroyed = true
		r.Body.Stop()
		return
	}

	if r.HealthFraction() < r.tuning.FleeHealthFrac && r.state.Hostile() {
		r.state = StateFlee
	}
}

// Update advances the raider by one kinematic tick: per-state steering,
// friction, speed clamp and position integration. Destroyed raiders are
// inert. Passive raiders keep moving but only ever in non-hostile states
// (the coordinator skips them, and SetPassive drops hostile states).
func (r *Raider) Update(dt float64) {
	if r.destroyed {
		return
	}

	if r.flashTimer > 0 {
		r.flashTimer -= dt
		if r.flashTimer < 0 {
			r.flashTimer = 0
		}
	}

	switch r.state {
	case StatePatrol:
		r.updatePatrol(dt)
	case StateChase:
		r.steerToward(r.steerPoint(), chaseAccelFrac, dt)
	case StateAttack:
		r.steerToward(r.steerPoint(), attackAccelFrac, dt)
	case StateFlee:
		r.updateFlee(dt)
	}

	r.Body.Velocity = r.Body.Velocity.Scale(frictionFactor)
	r.Body.Integrate(dt)
}

// steerPoint returns the point Chase/Attack steer toward.
// Falls back to the current position when no target is set
// (coordinator clears targets asynchronously to movement ticks).
func (r *Raider) steerPoint() Vec2 {
	if r.hasTarget {
		return r.target
	}
	return r.Body.Position
}

func (r *Raider) updatePatrol(dt float64) {
	if !r.hasWaypoint || r.Body.Position.Distance(r.waypoint) < patrolRepickDist {
		r.waypoint = r.randomPatrolPoint()
		r.hasWaypoint = true
	}
	r.steerToward(r.waypoint, patrolAccelFrac, dt)
}

func (r *Raider) updateFlee(dt float64) {
	away := r.Body.Position.Sub(r.steerPoint()).Normalize()
	if away == (Vec2{}) {
		away = FromAngle(r.Body.Rotation)
	}
	fleePoint := r.Body.Position.Add(away.Scale(fleeOffsetDist))
	r.steerToward(fleePoint, fleeAccelFrac, dt)
}

// steerToward rotates the raider toward the desired point at its turn rate
// (clamped per tick) and applies forward thrust while the heading error is
// within ±90°.
func (r *Raider) steerToward(point Vec2, accelFrac, dt float64) {
	to := point.Sub(r.Body.Position)
	if to.LengthSquared() == 0 {
		return
	}

	desired := to.Angle()
	diff := AngleDiff(r.Body.Rotation, desired)

	maxTurn := r.tuning.TurnRate * dt
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	r.Body.Rotation = NormalizeAngle(r.Body.Rotation + diff)

	if math.Abs(AngleDiff(r.Body.Rotation, desired)) <= headingThrustGate {
		thrust := FromAngle(r.Body.Rotation).Scale(r.tuning.Acceleration * accelFrac * dt)
		r.Body.Velocity = r.Body.Velocity.Add(thrust)
	}
}

// randomPatrolPoint samples a uniform point inside the patrol circle.
func (r *Raider) randomPatrolPoint() Vec2 {
	angle := r.rng.Float64() * 2 * math.Pi
	dist := math.Sqrt(r.rng.Float64()) * r.patrolRadius
	return r.patrolAnchor.Add(FromAngle(angle).Scale(dist))
}
