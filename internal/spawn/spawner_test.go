package spawn

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udisondev/skirmish/internal/model"
)

func newTestSpawner() *Spawner {
	return NewSpawner(rand.New(rand.NewPCG(1, 1)))
}

func quickRespawnTuning() model.Tuning {
	t := model.DefaultTuning()
	t.RespawnDelay = 2.0
	return t
}

func TestSpawn_AddsToLiveSet(t *testing.T) {
	s := newTestSpawner()

	h := s.Spawn(model.DefaultTuning(), model.NewVec2(100, 200))

	require.False(t, h.IsZero())
	assert.Equal(t, 1, s.Count())

	r, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, model.NewVec2(100, 200), r.Position())
	assert.Equal(t, model.NewVec2(100, 200), r.PatrolAnchor())
}

func TestLive_StableSlotOrder(t *testing.T) {
	s := newTestSpawner()

	h1 := s.Spawn(model.DefaultTuning(), model.NewVec2(1, 0))
	h2 := s.Spawn(model.DefaultTuning(), model.NewVec2(2, 0))
	h3 := s.Spawn(model.DefaultTuning(), model.NewVec2(3, 0))

	r1, _ := s.Get(h1)
	r2, _ := s.Get(h2)
	r3, _ := s.Get(h3)

	live := s.Live()
	require.Len(t, live, 3)
	assert.Same(t, r1, live[0])
	assert.Same(t, r2, live[1])
	assert.Same(t, r3, live[2])

	// Same snapshot until membership changes
	assert.Equal(t, live, s.Live())
}

func TestUpdate_SweepsDestroyedAndNotifies(t *testing.T) {
	s := newTestSpawner()
	var dropped []string
	s.SetRemoveFunc(func(key string) { dropped = append(dropped, key) })

	h := s.Spawn(quickRespawnTuning(), model.NewVec2(50, 50))
	r, _ := s.Get(h)
	r.TakeDamage(r.MaxHealth())
	require.True(t, r.IsDestroyed())

	s.Update(0.016)

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 1, s.PendingRespawns())
	require.Len(t, dropped, 1)
	assert.Equal(t, h.String(), dropped[0])

	_, ok := s.Get(h)
	assert.False(t, ok, "handle must go stale after the sweep")
}

func TestUpdate_RespawnsAtOriginAfterDelay(t *testing.T) {
	s := newTestSpawner()
	origin := model.NewVec2(-300, 120)

	h := s.Spawn(quickRespawnTuning(), origin)
	r, _ := s.Get(h)
	r.TakeDamage(r.MaxHealth())
	s.Update(0.016)
	require.Equal(t, 0, s.Count())

	// 2s delay: not back yet after 1.9s
	for range 19 {
		s.Update(0.1)
	}
	assert.Equal(t, 0, s.Count())

	s.Update(0.2)
	require.Equal(t, 1, s.Count())
	assert.Equal(t, 0, s.PendingRespawns())

	replacement := s.Live()[0]
	assert.Equal(t, origin, replacement.Position())
	assert.Equal(t, replacement.MaxHealth(), replacement.Health())
	assert.False(t, replacement.IsDestroyed())
}

func TestUpdate_NoRespawnWhenDelayZero(t *testing.T) {
	s := newTestSpawner()
	tuning := model.DefaultTuning()
	tuning.RespawnDelay = 0

	h := s.Spawn(tuning, model.Vec2{})
	r, _ := s.Get(h)
	r.TakeDamage(r.MaxHealth())

	s.Update(0.016)

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, s.PendingRespawns())
}

func TestSetPassiveFor_GracePeriod(t *testing.T) {
	s := newTestSpawner()
	h := s.Spawn(model.DefaultTuning(), model.Vec2{})
	r, _ := s.Get(h)

	s.SetPassiveFor(1.0)
	assert.True(t, r.IsPassive())

	// Raiders spawned during the grace window start passive too
	h2 := s.Spawn(model.DefaultTuning(), model.NewVec2(10, 10))
	r2, _ := s.Get(h2)
	assert.True(t, r2.IsPassive())

	for range 9 {
		s.Update(0.1)
	}
	assert.True(t, r.IsPassive())

	s.Update(0.2)
	assert.False(t, r.IsPassive())
	assert.False(t, r2.IsPassive())
}

func TestKeyFor(t *testing.T) {
	s := newTestSpawner()
	h := s.Spawn(model.DefaultTuning(), model.Vec2{})
	r, _ := s.Get(h)

	assert.Equal(t, h.String(), s.KeyFor(r))

	stranger := model.NewRaider(model.Vec2{}, 300, model.DefaultTuning(), rand.New(rand.NewPCG(9, 9)))
	assert.Equal(t, "", s.KeyFor(stranger))
}
