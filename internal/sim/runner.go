package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/udisondev/skirmish/internal/ai"
	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/event"
	"github.com/udisondev/skirmish/internal/game/combat"
	"github.com/udisondev/skirmish/internal/game/weapon"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/spawn"
)

// maxStep caps a single simulation step. Long stalls (debugger, GC pause,
// laptop sleep) advance the world by at most this much instead of teleporting
// everything through walls of elapsed time.
const maxStep = 0.1

// Runner assembles the subsystems and drives them in frame order:
// AI decisions, raider kinematics, projectile flight, combat resolution,
// then the spawner sweep. Not safe for concurrent use; external input
// (ship velocity, fire requests) must come from the loop's goroutine.
type Runner struct {
	cfg     config.Simulation
	ship    *model.Body
	engine  *combat.Engine
	station *weapon.Station
	coord   *ai.Coordinator
	spawner *spawn.Spawner
	events  *event.Dispatcher
}

// NewRunner builds a simulation from config. The rng feeds every random
// draw in the run (patrol points, loot), so a fixed seed replays exactly.
func NewRunner(cfg config.Simulation, rng *rand.Rand) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	events := event.NewDispatcher()
	ship := &model.Body{
		Position: model.NewVec2(cfg.Player.RespawnX, cfg.Player.RespawnY),
	}

	station, err := weapon.NewStation(
		weaponConfig(cfg.PlayerWeapon),
		weaponConfig(cfg.RaiderWeapon),
	)
	if err != nil {
		return nil, err
	}

	engine, err := combat.NewEngine(playerConfig(cfg.Player), events, rng)
	if err != nil {
		return nil, err
	}

	spawner := spawn.NewSpawner(rng)
	spawner.SetRemoveFunc(station.DropShooter)

	coord := ai.NewCoordinator(coordinatorConfig(cfg.Coordinator), spawner.Live)
	coord.SetFireFunc(func(r *model.Raider, origin model.Vec2, angle float64) {
		station.Fire(origin, angle, weapon.SideRaider, spawner.KeyFor(r))
	})

	r := &Runner{
		cfg:     cfg,
		ship:    ship,
		engine:  engine,
		station: station,
		coord:   coord,
		spawner: spawner,
		events:  events,
	}

	// Fresh spawns around a just-respawned player stay passive for the
	// same doubled window the player is invulnerable for.
	events.Subscribe(func(e event.Event) {
		if e.Type == event.PlayerRespawned {
			spawner.SetPassiveFor(2 * cfg.Player.InvulnDuration)
		}
	})

	if err := r.populate(); err != nil {
		return nil, err
	}
	return r, nil
}

// populate places the initial raider population from config.
func (r *Runner) populate() error {
	for _, s := range r.cfg.Spawns {
		name := s.Archetype
		if name == "" {
			name = "default"
		}
		tuning := tuningFor(r.cfg.Archetypes[name])
		if err := tuning.Validate(); err != nil {
			return fmt.Errorf("archetype %q: %w", name, err)
		}
		r.spawner.Spawn(tuning, model.NewVec2(s.X, s.Y))
	}

	slog.Info("simulation populated",
		"raiders", r.spawner.Count(),
		"archetypes", len(r.cfg.Archetypes))
	return nil
}

// Ship returns the player body. Callers steer the ship by mutating its
// velocity between steps.
func (r *Runner) Ship() *model.Body { return r.ship }

// Engine returns the combat engine, for health and respawn state readers.
func (r *Runner) Engine() *combat.Engine { return r.engine }

// Station returns the weapon station, for projectile readers.
func (r *Runner) Station() *weapon.Station { return r.station }

// Coordinator exposes the AI spatial queries (nearest, threat level).
func (r *Runner) Coordinator() *ai.Coordinator { return r.coord }

// Spawner returns the raider spawner.
func (r *Runner) Spawner() *spawn.Spawner { return r.spawner }

// Events returns the combat event dispatcher for external subscribers.
// Subscribe before the first Step; the dispatcher is not synchronized.
func (r *Runner) Events() *event.Dispatcher { return r.events }

// Fire requests a player shot along angle from the ship's position.
// Returns false while the player weapon is on cooldown or the player is dead.
func (r *Runner) Fire(angle float64) bool {
	if r.engine.IsDead() {
		return false
	}
	return r.station.Fire(r.ship.Position, angle, weapon.SidePlayer, "")
}

// Step advances the simulation by dt seconds (capped at maxStep).
func (r *Runner) Step(dt float64) {
	if dt <= 0 {
		return
	}
	if dt > maxStep {
		dt = maxStep
	}

	r.coord.Update(dt, r.ship.Position, r.ship.Velocity)

	for _, raider := range r.spawner.Live() {
		raider.Update(dt)
	}

	r.ship.Integrate(dt)
	r.station.Update(dt)
	r.engine.Update(dt, r.ship, r.spawner.Live(), r.station)
	r.spawner.Update(dt)
}

// statusInterval spaces the periodic population log lines.
const statusInterval = 10 * time.Second

// Run drives Step on a fixed ticker until ctx is canceled. The status
// summary is logged from this goroutine too; the runner has no locks.
func (r *Runner) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / r.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("simulation loop started", "tickRate", r.cfg.TickRate)

	last := time.Now()
	nextStatus := last.Add(statusInterval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopping")
			return ctx.Err()

		case now := <-ticker.C:
			r.Step(now.Sub(last).Seconds())
			last = now

			if now.After(nextStatus) {
				nextStatus = now.Add(statusInterval)
				slog.Info("simulation status",
					"raiders", r.spawner.Count(),
					"pendingRespawns", r.spawner.PendingRespawns(),
					"projectiles", r.station.ActiveProjectiles(),
					"playerHealth", r.engine.Health(),
					"threat", r.coord.ThreatLevel(r.ship.Position))
			}
		}
	}
}

func weaponConfig(c config.WeaponConfig) weapon.Config {
	return weapon.Config{
		FireRate:           c.FireRate,
		ProjectileSpeed:    c.ProjectileSpeed,
		ProjectileDamage:   c.ProjectileDamage,
		ProjectileLifetime: c.ProjectileLife,
		ShotCount:          c.ShotCount,
		SpreadAngle:        c.SpreadAngle,
		ProjectileRadius:   c.ProjectileRadius,
	}
}

func playerConfig(c config.PlayerConfig) combat.PlayerConfig {
	return combat.PlayerConfig{
		MaxHealth:            c.MaxHealth,
		InvulnDuration:       c.InvulnDuration,
		KnockbackForce:       c.KnockbackForce,
		RespawnDelay:         c.RespawnDelay,
		RespawnPosition:      model.NewVec2(c.RespawnX, c.RespawnY),
		CollisionRadius:      c.CollisionRadius,
		ContactCounterDamage: c.ContactCounterDamage,
	}
}

func coordinatorConfig(c config.CoordinatorConfig) ai.Config {
	return ai.Config{
		Interval:           c.Interval,
		PredictionFactor:   c.PredictionFactor,
		SeparationDistance: c.SeparationDistance,
		SeparationForce:    c.SeparationForce,
		ThreatRange:        c.ThreatRange,
		ThreatCountCap:     c.ThreatCountCap,
	}
}

func tuningFor(c config.ArchetypeConfig) model.Tuning {
	return model.Tuning{
		MaxSpeed:          c.MaxSpeed,
		Acceleration:      c.Acceleration,
		TurnRate:          c.TurnRate,
		DetectionRange:    c.DetectionRange,
		AttackRange:       c.AttackRange,
		FleeHealthFrac:    c.FleeHealthFrac,
		LoseInterestRange: c.LoseInterestRange,
		ContactDamage:     c.ContactDamage,
		LootMin:           c.LootMin,
		LootMax:           c.LootMax,
		CollisionRadius:   c.CollisionRadius,
		MaxHealth:         c.MaxHealth,
		PatrolRadius:      c.PatrolRadius,
		RespawnDelay:      c.RespawnDelay,
	}
}
