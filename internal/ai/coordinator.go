package ai

import (
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/skirmish/internal/model"
)

// debugLoggingEnabled gates per-raider debug logging. The decision pass
// touches every live raider every interval, so transition logs check this
// atomic flag instead of paying slog's level machinery on each raider.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging switches per-raider debug logging on or off.
// Called once from main after the log level is known.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether per-raider debug logging is on.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}

// Config holds coordinator decision-pass tuning.
type Config struct {
	// Interval is the decision cadence in seconds. The coordinator
	// accumulates elapsed time and runs one pass per interval,
	// decoupled from the kinematic tick.
	Interval float64
	// PredictionFactor scales target velocity when computing the
	// intercept point Chase/Attack steer toward.
	PredictionFactor float64
	// SeparationDistance is the flocking neighbor radius.
	SeparationDistance float64
	// SeparationForce scales the averaged repulsion added to velocity.
	SeparationForce float64
	// ThreatRange bounds the ThreatLevel query.
	ThreatRange float64
	// ThreatCountCap is the hostile count at which the count component
	// of the threat score saturates.
	ThreatCountCap int
}

// DefaultConfig returns the reference coordinator tuning.
func DefaultConfig() Config {
	return Config{
		Interval:           0.1,
		PredictionFactor:   0.5,
		SeparationDistance: 60,
		SeparationForce:    50,
		ThreatRange:        500,
		ThreatCountCap:     5,
	}
}

// LiveFunc returns the current live raider set. Injected by the spawner
// (which owns raider collection lifetime) so the coordinator never holds
// a stale snapshot across frames.
type LiveFunc func() []*model.Raider

// FireFunc is a callback to fire a raider-side shot. Injected by the
// simulation driver so the coordinator stays decoupled from the weapon
// station. If nil, raider fire support is disabled and raiders fall back
// to pure ramming behavior.
type FireFunc func(r *model.Raider, origin model.Vec2, angle float64)

// Coordinator runs the periodic AI decision pass across all live raiders:
// visibility checks, target prediction, state transitions and flocking
// separation. Movement itself stays on the raiders' kinematic tick.
type Coordinator struct {
	cfg         Config
	live        LiveFunc
	fireFunc    FireFunc
	accumulator float64
}

// NewCoordinator creates a coordinator over the given live set provider.
func NewCoordinator(cfg Config, live LiveFunc) *Coordinator {
	return &Coordinator{
		cfg:  cfg,
		live: live,
	}
}

// SetFireFunc sets the raider-side fire callback.
func (c *Coordinator) SetFireFunc(fn FireFunc) {
	c.fireFunc = fn
}

// Update accumulates elapsed time and runs a decision pass once the
// configured interval is reached. targetPos/targetVel describe the external
// target (the player ship) as of this frame.
//
// Skipped raiders: destroyed (inert until the spawner removes them) and
// passive (respawn grace: no detection or transitions until cleared).
func (c *Coordinator) Update(dt float64, targetPos, targetVel model.Vec2) {
	c.accumulator += dt
	if c.accumulator < c.cfg.Interval {
		return
	}
	c.accumulator = 0

	raiders := c.live()
	predicted := targetPos.Add(targetVel.Scale(c.cfg.PredictionFactor))

	for _, r := range raiders {
		if r.IsDestroyed() || r.IsPassive() {
			continue
		}
		c.think(r, targetPos, predicted)
	}

	c.applySeparation(raiders)
}

// think evaluates one raider's state transitions for this pass.
func (c *Coordinator) think(r *model.Raider, targetPos, predicted model.Vec2) {
	tuning := r.Tuning()
	dist := r.Position().Distance(targetPos)
	detectable := dist <= tuning.DetectionRange

	prev := r.State()

	switch prev {
	case model.StatePatrol:
		if detectable {
			r.SetTarget(predicted)
			r.SetState(model.StateChase)
		}

	case model.StateChase:
		switch {
		case r.HealthFraction() < tuning.FleeHealthFrac:
			r.SetTarget(targetPos)
			r.SetState(model.StateFlee)
		// Chase is abandoned on visibility alone; lose-interest range
		// (>= detection range by contract) only matters for Flee.
		case !detectable:
			r.ClearTarget()
			r.SetState(model.StatePatrol)
		case dist < tuning.AttackRange:
			r.SetTarget(predicted)
			r.SetState(model.StateAttack)
		default:
			r.SetTarget(predicted)
		}

	case model.StateAttack:
		switch {
		case r.HealthFraction() < tuning.FleeHealthFrac:
			r.SetTarget(targetPos)
			r.SetState(model.StateFlee)
		case !detectable:
			r.ClearTarget()
			r.SetState(model.StatePatrol)
		case dist > tuning.AttackRange*2:
			r.SetTarget(predicted)
			r.SetState(model.StateChase)
		default:
			r.SetTarget(predicted)
			c.tryFire(r, predicted)
		}

	case model.StateFlee:
		// Evaluated even when undetectable: a fleeing raider is usually
		// already beyond detection range when it calms down.
		if dist > tuning.LoseInterestRange {
			r.ClearTarget()
			r.ResetPatrolAnchor()
			r.SetState(model.StatePatrol)
		} else {
			// Flee steers away from where the target actually is.
			r.SetTarget(targetPos)
		}
	}

	if prev != r.State() && IsDebugEnabled() {
		slog.Debug("raider state changed",
			"from", prev,
			"to", r.State(),
			"distance", dist)
	}
}

// tryFire requests a raider-side shot at the predicted target position.
// Rate limiting is the weapon station's job (per-shooter cooldown keys),
// so this fires every pass while in Attack.
func (c *Coordinator) tryFire(r *model.Raider, predicted model.Vec2) {
	if c.fireFunc == nil {
		return
	}
	origin := r.Position()
	angle := predicted.Sub(origin).Angle()
	c.fireFunc(r, origin, angle)
}

// applySeparation adds a distance-weighted repulsion to each raider's
// velocity so multiple pursuers don't stack on the same intercept point.
func (c *Coordinator) applySeparation(raiders []*model.Raider) {
	sepDist := c.cfg.SeparationDistance
	if sepDist <= 0 {
		return
	}

	for _, r := range raiders {
		if r.IsDestroyed() || r.IsPassive() || !r.Position().IsFinite() {
			continue
		}

		var sum model.Vec2
		count := 0

		for _, other := range raiders {
			if other == r || other.IsDestroyed() {
				continue
			}
			if !other.Position().IsFinite() {
				// A NaN distance passes the range check below (NaN
				// comparisons are all false) and would poison every
				// neighbor's velocity through the accumulated sum.
				continue
			}
			offset := r.Position().Sub(other.Position())
			dist := offset.Length()
			if !(dist > 0 && dist < sepDist) {
				continue
			}
			weight := (sepDist - dist) / sepDist
			sum = sum.Add(offset.Normalize().Scale(weight))
			count++
		}

		if count == 0 {
			continue
		}

		repulsion := sum.Scale(1 / float64(count)).Normalize().Scale(c.cfg.SeparationForce)
		r.Body.Velocity = r.Body.Velocity.Add(repulsion)
	}
}

// Nearest returns the live raider closest to point, or nil when the live
// set is empty.
func (c *Coordinator) Nearest(point model.Vec2) *model.Raider {
	var nearest *model.Raider
	best := 0.0

	for _, r := range c.live() {
		if r.IsDestroyed() || !r.Position().IsFinite() {
			continue
		}
		d := r.Position().DistanceSquared(point)
		if nearest == nil || d < best {
			nearest = r
			best = d
		}
	}
	return nearest
}

// Within returns all live raiders inside radius of point.
func (c *Coordinator) Within(point model.Vec2, radius float64) []*model.Raider {
	var out []*model.Raider
	radiusSq := radius * radius

	for _, r := range c.live() {
		if r.IsDestroyed() {
			continue
		}
		if r.Position().DistanceSquared(point) <= radiusSq {
			out = append(out, r)
		}
	}
	return out
}

// AnyHostileWithin reports whether any raider inside radius of point is
// currently chasing or attacking.
func (c *Coordinator) AnyHostileWithin(point model.Vec2, radius float64) bool {
	radiusSq := radius * radius

	for _, r := range c.live() {
		if r.IsDestroyed() || !r.State().Hostile() {
			continue
		}
		if r.Position().DistanceSquared(point) <= radiusSq {
			return true
		}
	}
	return false
}

// ThreatLevel returns a normalized 0-1 threat score for a point, built from
// the count and proximity of hostile raiders within ThreatRange. Count and
// nearest-proximity components are averaged so one very close raider and
// several distant ones score comparably.
func (c *Coordinator) ThreatLevel(point model.Vec2) float64 {
	rangeMax := c.cfg.ThreatRange
	if rangeMax <= 0 {
		return 0
	}

	count := 0
	nearestProx := 0.0

	for _, r := range c.live() {
		if r.IsDestroyed() || !r.State().Hostile() || !r.Position().IsFinite() {
			continue
		}
		dist := r.Position().Distance(point)
		if dist > rangeMax {
			continue
		}
		count++
		if prox := 1 - dist/rangeMax; prox > nearestProx {
			nearestProx = prox
		}
	}

	if count == 0 {
		return 0
	}

	countCap := c.cfg.ThreatCountCap
	if countCap <= 0 {
		countCap = 1
	}
	countFactor := float64(count) / float64(countCap)
	if countFactor > 1 {
		countFactor = 1
	}

	return (countFactor + nearestProx) / 2
}
