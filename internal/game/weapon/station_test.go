package weapon

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udisondev/skirmish/internal/model"
)

func newTestStation(t *testing.T) *Station {
	t.Helper()
	s, err := NewStation(DefaultPlayerConfig(), DefaultRaiderConfig())
	require.NoError(t, err)
	return s
}

// fakeTarget is a stationary collision target.
type fakeTarget struct {
	pos       model.Vec2
	radius    float64
	destroyed bool
}

func (f *fakeTarget) Position() model.Vec2     { return f.pos }
func (f *fakeTarget) CollisionRadius() float64 { return f.radius }
func (f *fakeTarget) IsDestroyed() bool        { return f.destroyed }

func TestNewStation_RejectsInvalidConfig(t *testing.T) {
	bad := DefaultPlayerConfig()
	bad.FireRate = 0

	_, err := NewStation(bad, DefaultRaiderConfig())
	assert.Error(t, err)

	_, err = NewStation(DefaultPlayerConfig(), bad)
	assert.Error(t, err)
}

func TestFire_CooldownEnforcement(t *testing.T) {
	// fire_rate = 3: second shot within 1/3s must be rejected,
	// a shot after >= 1/3s must succeed.
	s := newTestStation(t)

	assert.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))
	assert.Equal(t, 1, s.ActiveProjectiles())

	s.Update(0.1) // < 1/3 second
	assert.False(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))
	assert.Equal(t, 1, s.ActiveProjectiles(), "rejected fire must spawn nothing")

	s.Update(0.25) // cumulative 0.35 >= 1/3
	assert.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))
}

func TestFire_RaiderCooldownsIndependentPerShooter(t *testing.T) {
	s := newTestStation(t)

	assert.True(t, s.Fire(model.Vec2{}, 0, SideRaider, "r1"))
	assert.True(t, s.Fire(model.Vec2{}, 0, SideRaider, "r2"),
		"second shooter must not share the first shooter's cooldown")
	assert.False(t, s.Fire(model.Vec2{}, 0, SideRaider, "r1"))
}

func TestFire_SpreadSymmetry(t *testing.T) {
	// shot_count = 3, spread = 0.26 rad at angle 0 must produce headings
	// exactly {-0.13, 0, +0.13}.
	cfg := DefaultPlayerConfig()
	cfg.ShotCount = 3
	cfg.SpreadAngle = 0.26
	s, err := NewStation(cfg, DefaultRaiderConfig())
	require.NoError(t, err)

	require.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))

	var angles []float64
	s.EachProjectile(func(p Projectile) {
		angles = append(angles, p.Velocity.Angle())
	})
	sort.Float64s(angles)

	require.Len(t, angles, 3)
	assert.InDelta(t, -0.13, angles[0], 1e-9)
	assert.InDelta(t, 0, angles[1], 1e-9)
	assert.InDelta(t, 0.13, angles[2], 1e-9)
}

func TestFire_SingleShotIgnoresSpread(t *testing.T) {
	cfg := DefaultPlayerConfig()
	cfg.ShotCount = 1
	cfg.SpreadAngle = 1.0
	s, err := NewStation(cfg, DefaultRaiderConfig())
	require.NoError(t, err)

	require.True(t, s.Fire(model.Vec2{}, 0.5, SidePlayer, ""))

	s.EachProjectile(func(p Projectile) {
		assert.InDelta(t, 0.5, p.Velocity.Angle(), 1e-9)
	})
}

func TestFire_ProjectileVelocityFromAngle(t *testing.T) {
	s := newTestStation(t)
	angle := math.Pi / 4
	require.True(t, s.Fire(model.NewVec2(10, 20), angle, SidePlayer, ""))

	speed := DefaultPlayerConfig().ProjectileSpeed
	s.EachProjectile(func(p Projectile) {
		assert.InDelta(t, math.Cos(angle)*speed, p.Velocity.X, 1e-9)
		assert.InDelta(t, math.Sin(angle)*speed, p.Velocity.Y, 1e-9)
		assert.Equal(t, model.NewVec2(10, 20), p.Position)
	})
}

func TestUpdate_ProjectileExpiry(t *testing.T) {
	// lifetime = 2.0s: active below cumulative 2.0s, inactive at >= 2.0s.
	s := newTestStation(t)
	require.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, "")) // lifetime 2.0

	for range 19 {
		s.Update(0.1) // cumulative 1.9
	}
	assert.Equal(t, 1, s.ActiveProjectiles())

	s.Update(0.1) // cumulative 2.0
	assert.Equal(t, 0, s.ActiveProjectiles())
}

func TestUpdate_ExpiredProjectileNeverHits(t *testing.T) {
	s := newTestStation(t)
	require.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))

	// Target sits exactly where the projectile ends up after 2.1s of
	// travel; only the expiry (at 2.0s) keeps this from being a hit.
	target := &fakeTarget{pos: model.NewVec2(600 * 2.1, 0), radius: 50}

	s.Update(2.1)
	hits := s.CheckCollisions([]Target{target}, SidePlayer)
	assert.Empty(t, hits)
}

func TestCheckCollisions_Determinism(t *testing.T) {
	// One projectile overlapping one target: exactly one hit, projectile
	// deactivated, damage equals the configured projectile damage.
	s := newTestStation(t)
	require.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))

	target := &fakeTarget{pos: model.NewVec2(5, 0), radius: 20}
	hits := s.CheckCollisions([]Target{target}, SidePlayer)

	require.Len(t, hits, 1)
	assert.Same(t, target, hits[0].Target.(*fakeTarget))
	assert.Equal(t, DefaultPlayerConfig().ProjectileDamage, hits[0].Damage)
	assert.Equal(t, 0, s.ActiveProjectiles())

	// Second sweep: projectile is gone, no double hit
	assert.Empty(t, s.CheckCollisions([]Target{target}, SidePlayer))
}

func TestCheckCollisions_FirstSuppliedTargetWins(t *testing.T) {
	// Two equidistant overlapping targets: caller-supplied order decides.
	s := newTestStation(t)
	require.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))

	a := &fakeTarget{pos: model.NewVec2(0, 5), radius: 20}
	b := &fakeTarget{pos: model.NewVec2(0, -5), radius: 20}

	hits := s.CheckCollisions([]Target{a, b}, SidePlayer)

	require.Len(t, hits, 1)
	assert.Same(t, a, hits[0].Target.(*fakeTarget))
}

func TestCheckCollisions_SkipsDestroyedAndWrongSide(t *testing.T) {
	s := newTestStation(t)
	require.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))

	dead := &fakeTarget{pos: model.Vec2{}, radius: 50, destroyed: true}
	assert.Empty(t, s.CheckCollisions([]Target{dead}, SidePlayer))

	live := &fakeTarget{pos: model.Vec2{}, radius: 50}
	assert.Empty(t, s.CheckCollisions([]Target{live}, SideRaider),
		"player projectile must not hit raider-side targets")
}

func TestCheckCollisions_NonFinitePositionNoCollision(t *testing.T) {
	s := newTestStation(t)
	require.True(t, s.Fire(model.Vec2{}, 0, SidePlayer, ""))

	nan := &fakeTarget{pos: model.NewVec2(math.NaN(), 0), radius: 1e9}
	assert.Empty(t, s.CheckCollisions([]Target{nan}, SidePlayer))
}

func TestDropShooter_ClearsCooldown(t *testing.T) {
	s := newTestStation(t)
	require.True(t, s.Fire(model.Vec2{}, 0, SideRaider, "r1"))
	assert.Greater(t, s.Cooldown(SideRaider, "r1"), 0.0)

	s.DropShooter("r1")
	assert.Equal(t, 0.0, s.Cooldown(SideRaider, "r1"))
}
