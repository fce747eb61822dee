package weapon

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

// playerKey is the single cooldown key for the player side.
const playerKey = "player"

// Config holds one side's weapon parameters.
type Config struct {
	FireRate           float64 // shots/second; must be > 0
	ProjectileSpeed    float64 // world units/second
	ProjectileDamage   float64
	ProjectileLifetime float64 // seconds
	ShotCount          int     // >= 1
	SpreadAngle        float64 // radians, used only when ShotCount > 1
	ProjectileRadius   float64 // collision radius
}

// DefaultPlayerConfig returns the reference player-side weapon.
func DefaultPlayerConfig() Config {
	return Config{
		FireRate:           3,
		ProjectileSpeed:    600,
		ProjectileDamage:   10,
		ProjectileLifetime: 2.0,
		ShotCount:          1,
		SpreadAngle:        0.26,
		ProjectileRadius:   4,
	}
}

// DefaultRaiderConfig returns the reference raider-side weapon.
func DefaultRaiderConfig() Config {
	return Config{
		FireRate:           1,
		ProjectileSpeed:    400,
		ProjectileDamage:   8,
		ProjectileLifetime: 1.5,
		ShotCount:          1,
		SpreadAngle:        0,
		ProjectileRadius:   4,
	}
}

// Validate reports the first contract violation in the weapon config.
// A zero fire rate is a caller contract violation caught here, at
// construction, never at runtime during combat.
func (c Config) Validate() error {
	switch {
	case c.FireRate <= 0:
		return fmt.Errorf("weapon: fire_rate must be > 0, got %v", c.FireRate)
	case c.ProjectileSpeed <= 0:
		return fmt.Errorf("weapon: projectile_speed must be > 0, got %v", c.ProjectileSpeed)
	case c.ProjectileLifetime <= 0:
		return fmt.Errorf("weapon: projectile_lifetime must be > 0, got %v", c.ProjectileLifetime)
	case c.ShotCount < 1:
		return fmt.Errorf("weapon: shot_count must be >= 1, got %d", c.ShotCount)
	case c.SpreadAngle < 0:
		return fmt.Errorf("weapon: spread_angle must be >= 0, got %v", c.SpreadAngle)
	case c.ProjectileRadius <= 0:
		return fmt.Errorf("weapon: projectile_radius must be > 0, got %v", c.ProjectileRadius)
	}
	return nil
}

// Target is anything a projectile can hit. Raiders satisfy it on the player
// side; the combat engine adapts the ship for the raider side.
type Target interface {
	Position() model.Vec2
	CollisionRadius() float64
	IsDestroyed() bool
}

// Hit records one projectile-target collision.
type Hit struct {
	Target     Target
	Projectile world.Handle
	Damage     float64
}

// Station is the per-side fire-rate limiter and projectile factory.
// The player side shares one global cooldown; raider-side cooldowns are
// keyed per shooter so multiple raiders fire independently.
//
// Cooldown state is owned exclusively by the station.
type Station struct {
	playerCfg Config
	raiderCfg Config

	cooldowns   map[string]float64 // seconds remaining, keyed per side/shooter
	projectiles *world.Arena[Projectile]
}

// NewStation creates a station with one config per side.
// Invalid configs fail here, before any combat runs.
func NewStation(playerCfg, raiderCfg Config) (*Station, error) {
	if err := playerCfg.Validate(); err != nil {
		return nil, fmt.Errorf("player side: %w", err)
	}
	if err := raiderCfg.Validate(); err != nil {
		return nil, fmt.Errorf("raider side: %w", err)
	}
	return &Station{
		playerCfg:   playerCfg,
		raiderCfg:   raiderCfg,
		cooldowns:   make(map[string]float64),
		projectiles: world.NewArena[Projectile](64),
	}, nil
}

// Fire spawns the configured number of projectiles from origin along angle.
// Returns false without spawning anything while the side/shooter is on
// cooldown. A hard rate limit, not a queue, and not an error.
//
// shooterKey identifies the raider-side shooter; the player side ignores it.
func (s *Station) Fire(origin model.Vec2, angle float64, side Side, shooterKey string) bool {
	cfg := s.config(side)
	key := s.cooldownKey(side, shooterKey)

	if s.cooldowns[key] > 0 {
		return false
	}
	s.cooldowns[key] = 1 / cfg.FireRate

	if cfg.ShotCount == 1 {
		s.spawn(origin, angle, cfg, side)
	} else {
		// Shots distributed evenly across [angle-spread/2, angle+spread/2],
		// both endpoints inclusive.
		start := angle - cfg.SpreadAngle/2
		step := cfg.SpreadAngle / float64(cfg.ShotCount-1)
		for i := range cfg.ShotCount {
			s.spawn(origin, start+step*float64(i), cfg, side)
		}
	}

	slog.Debug("shots fired",
		"side", side,
		"key", key,
		"angle", angle,
		"count", cfg.ShotCount)
	return true
}

func (s *Station) spawn(origin model.Vec2, shotAngle float64, cfg Config, side Side) {
	s.projectiles.Insert(Projectile{
		Position: origin,
		Velocity: model.FromAngle(shotAngle).Scale(cfg.ProjectileSpeed),
		Damage:   cfg.ProjectileDamage,
		Side:     side,
		Lifetime: cfg.ProjectileLifetime,
		Radius:   cfg.ProjectileRadius,
		Active:   true,
	})
}

// Update decays cooldowns (floored at zero), advances projectiles and
// expires lifetimes. Expiry happens here, before any collision pass in the
// same tick, so expired projectiles never register a hit.
func (s *Station) Update(dt float64) {
	for key, cd := range s.cooldowns {
		cd -= dt
		if cd <= 0 {
			delete(s.cooldowns, key)
		} else {
			s.cooldowns[key] = cd
		}
	}

	var expired []world.Handle
	s.projectiles.Range(func(h world.Handle, p *Projectile) bool {
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
		p.Lifetime -= dt
		if p.Lifetime <= 0 {
			p.Active = false
			expired = append(expired, h)
		}
		return true
	})
	for _, h := range expired {
		s.projectiles.Remove(h)
	}
}

// CheckCollisions sweeps every active projectile of the given side against
// the candidate targets. A projectile hits at most one target and is
// deactivated immediately on its first hit.
//
// Tie-break is deterministic: targets are checked in the exact order the
// caller supplies them, and the first overlapping target wins.
// Non-finite positions never collide.
func (s *Station) CheckCollisions(targets []Target, side Side) []Hit {
	var hits []Hit

	s.projectiles.Range(func(h world.Handle, p *Projectile) bool {
		if !p.Active || p.Side != side || !p.Position.IsFinite() {
			return true
		}

		for _, target := range targets {
			if target.IsDestroyed() {
				continue
			}
			pos := target.Position()
			if !pos.IsFinite() {
				continue
			}

			reach := p.Radius + target.CollisionRadius()
			if p.Position.DistanceSquared(pos) < reach*reach {
				hits = append(hits, Hit{Target: target, Projectile: h, Damage: p.Damage})
				p.Active = false
				break
			}
		}
		return true
	})

	// Remove spent projectiles after the sweep so arena iteration order
	// stays stable during it.
	for _, hit := range hits {
		s.projectiles.Remove(hit.Projectile)
	}
	return hits
}

// Cooldown returns the remaining cooldown for a side/shooter, 0 when ready.
func (s *Station) Cooldown(side Side, shooterKey string) float64 {
	return s.cooldowns[s.cooldownKey(side, shooterKey)]
}

// ActiveProjectiles returns the number of live projectiles.
func (s *Station) ActiveProjectiles() int {
	return s.projectiles.Len()
}

// EachProjectile calls fn for every live projectile (read-only snapshots,
// for presentation-layer consumers).
func (s *Station) EachProjectile(fn func(Projectile)) {
	s.projectiles.Range(func(_ world.Handle, p *Projectile) bool {
		fn(*p)
		return true
	})
}

// DropShooter forgets a raider-side shooter's cooldown entry.
// Called by the spawner when a raider is removed from the live set.
func (s *Station) DropShooter(shooterKey string) {
	delete(s.cooldowns, s.cooldownKey(SideRaider, shooterKey))
}

func (s *Station) config(side Side) Config {
	if side == SidePlayer {
		return s.playerCfg
	}
	return s.raiderCfg
}

func (s *Station) cooldownKey(side Side, shooterKey string) string {
	if side == SidePlayer {
		return playerKey
	}
	return "raider:" + shooterKey
}
