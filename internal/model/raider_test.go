package model

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRaider(pos Vec2) *Raider {
	rng := rand.New(rand.NewPCG(1, 2))
	return NewRaider(pos, 300, DefaultTuning(), rng)
}

func TestNewRaider_StartsPatrolling(t *testing.T) {
	r := newTestRaider(NewVec2(100, 200))

	assert.Equal(t, StatePatrol, r.State())
	assert.Equal(t, NewVec2(100, 200), r.PatrolAnchor())
	assert.Equal(t, r.MaxHealth(), r.Health())
	assert.False(t, r.IsDestroyed())
}

func TestTakeDamage_ReducesHealthAndFlashes(t *testing.T) {
	r := newTestRaider(Vec2{})

	r.TakeDamage(10)

	assert.Equal(t, r.MaxHealth()-10, r.Health())
	assert.True(t, r.IsFlashing())
}

func TestTakeDamage_DestroyedAtZero(t *testing.T) {
	r := newTestRaider(Vec2{})
	r.Body.Velocity = NewVec2(50, 0)

	r.TakeDamage(r.MaxHealth())

	assert.True(t, r.IsDestroyed())
	assert.Equal(t, 0.0, r.Health())
	assert.Equal(t, Vec2{}, r.Body.Velocity)

	// Further damage is a no-op
	r.TakeDamage(100)
	assert.Equal(t, 0.0, r.Health())
}

func TestTakeDamage_ForcesFleeFromHostileStates(t *testing.T) {
	for _, state := range []State{StateChase, StateAttack} {
		t.Run(state.String(), func(t *testing.T) {
			r := newTestRaider(Vec2{})
			r.SetState(state)

			// Drop below the 25% flee threshold
			r.TakeDamage(r.MaxHealth() * 0.8)

			assert.Equal(t, StateFlee, r.State())
		})
	}
}

func TestTakeDamage_PatrolNotForcedToFlee(t *testing.T) {
	r := newTestRaider(Vec2{})

	r.TakeDamage(r.MaxHealth() * 0.8)

	assert.Equal(t, StatePatrol, r.State())
}

func TestUpdate_DestroyedRaiderIsInert(t *testing.T) {
	r := newTestRaider(Vec2{})
	r.TakeDamage(r.MaxHealth())
	pos := r.Body.Position

	for range 60 {
		r.Update(1.0 / 60.0)
	}

	assert.Equal(t, pos, r.Body.Position)
}

func TestUpdate_ChaseMovesTowardTarget(t *testing.T) {
	r := newTestRaider(Vec2{})
	r.SetState(StateChase)
	target := NewVec2(400, 0)
	r.SetTarget(target)

	start := r.Body.Position.Distance(target)
	for range 120 {
		r.Update(1.0 / 60.0)
	}

	assert.Less(t, r.Body.Position.Distance(target), start)
}

func TestUpdate_FleeMovesAwayFromTarget(t *testing.T) {
	r := newTestRaider(Vec2{})
	r.SetState(StateFlee)
	target := NewVec2(50, 0)
	r.SetTarget(target)
	// Already facing away so the thrust gate opens immediately
	r.Body.Rotation = math.Pi

	start := r.Body.Position.Distance(target)
	for range 120 {
		r.Update(1.0 / 60.0)
	}

	assert.Greater(t, r.Body.Position.Distance(target), start)
}

func TestUpdate_SpeedNeverExceedsMax(t *testing.T) {
	r := newTestRaider(Vec2{})
	r.SetState(StateAttack)
	r.SetTarget(NewVec2(10000, 0))

	for range 600 {
		r.Update(1.0 / 60.0)
		assert.LessOrEqual(t, r.Body.Velocity.Length(), r.Tuning().MaxSpeed+1e-9)
	}
}

func TestSetPassive_DropsHostileState(t *testing.T) {
	r := newTestRaider(Vec2{})
	r.SetState(StateChase)
	r.SetTarget(NewVec2(100, 100))

	r.SetPassive(true)

	assert.Equal(t, StatePatrol, r.State())
	_, hasTarget := r.Target()
	assert.False(t, hasTarget)
	assert.True(t, r.IsPassive())
}

func TestResetPatrolAnchor(t *testing.T) {
	r := newTestRaider(NewVec2(0, 0))
	r.Body.Position = NewVec2(500, 600)

	r.ResetPatrolAnchor()

	assert.Equal(t, NewVec2(500, 600), r.PatrolAnchor())
}

func TestPatrolWaypoints_ReproducibleWithSeed(t *testing.T) {
	a := NewRaider(Vec2{}, 300, DefaultTuning(), rand.New(rand.NewPCG(7, 7)))
	b := NewRaider(Vec2{}, 300, DefaultTuning(), rand.New(rand.NewPCG(7, 7)))

	for range 300 {
		a.Update(1.0 / 60.0)
		b.Update(1.0 / 60.0)
	}

	assert.Equal(t, a.Body.Position, b.Body.Position)
	assert.Equal(t, a.Body.Rotation, b.Body.Rotation)
}
