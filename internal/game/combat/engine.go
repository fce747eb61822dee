package combat

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/skirmish/internal/event"
	"github.com/udisondev/skirmish/internal/game/weapon"
	"github.com/udisondev/skirmish/internal/model"
)

// Knockback split on body contact: the raider takes the larger shove.
const (
	raiderKnockbackFrac = 0.5
	playerKnockbackFrac = 0.3
)

// PlayerConfig holds the player-side combat parameters.
// Supplied at construction, not reloadable mid-run.
type PlayerConfig struct {
	MaxHealth            float64
	InvulnDuration       float64 // seconds of immunity after taking damage
	KnockbackForce       float64 // world units/second imparted on contact
	RespawnDelay         float64 // seconds between death and respawn
	RespawnPosition      model.Vec2
	CollisionRadius      float64
	ContactCounterDamage float64 // fixed damage a raider takes for ramming
}

// DefaultPlayerConfig returns the reference player combat tuning.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		MaxHealth:            100,
		InvulnDuration:       1.5,
		KnockbackForce:       300,
		RespawnDelay:         3.0,
		CollisionRadius:      16,
		ContactCounterDamage: 5,
	}
}

// Validate reports the first contract violation in the player config.
func (c PlayerConfig) Validate() error {
	switch {
	case c.MaxHealth <= 0:
		return fmt.Errorf("combat: max_health must be > 0, got %v", c.MaxHealth)
	case c.InvulnDuration <= 0:
		return fmt.Errorf("combat: invulnerability_duration must be > 0, got %v", c.InvulnDuration)
	case c.RespawnDelay <= 0:
		return fmt.Errorf("combat: respawn_delay must be > 0, got %v", c.RespawnDelay)
	case c.KnockbackForce < 0:
		return fmt.Errorf("combat: knockback_force must be >= 0, got %v", c.KnockbackForce)
	case c.CollisionRadius <= 0:
		return fmt.Errorf("combat: collision_radius must be > 0, got %v", c.CollisionRadius)
	}
	return nil
}

// Engine owns player health, invulnerability and respawn state, and turns
// collisions into damage, knockback, death and loot. It communicates with
// reward/mission/presentation collaborators only through combat events.
type Engine struct {
	cfg    PlayerConfig
	events *event.Dispatcher
	rng    *rand.Rand

	health           float64
	invulnRemaining  float64
	invulnWindow     float64 // starting duration of the currently open window
	dead             bool
	respawnRemaining float64
}

// NewEngine creates an engine with full health and no timers running.
// The config fails fast here on contract violations; rng feeds loot rolls
// so reward sequences are reproducible under a fixed seed.
func NewEngine(cfg PlayerConfig, events *event.Dispatcher, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		events: events,
		rng:    rng,
		health: cfg.MaxHealth,
	}, nil
}

// Health returns current player health.
func (e *Engine) Health() float64 { return e.health }

// MaxHealth returns maximum player health.
func (e *Engine) MaxHealth() float64 { return e.cfg.MaxHealth }

// IsDead reports whether the player is awaiting respawn.
func (e *Engine) IsDead() bool { return e.dead }

// IsInvulnerable reports whether the invulnerability window is open.
func (e *Engine) IsInvulnerable() bool { return e.invulnRemaining > 0 }

// InvulnerabilityFraction returns invulnerability time remaining as 0-1,
// relative to the window that opened it. A fresh window reads 1 whether it
// came from an ordinary hit or the doubled post-respawn grace.
func (e *Engine) InvulnerabilityFraction() float64 {
	if e.invulnWindow <= 0 || e.invulnRemaining <= 0 {
		return 0
	}
	frac := e.invulnRemaining / e.invulnWindow
	if frac > 1 {
		frac = 1
	}
	return frac
}

// RespawnFraction returns respawn countdown remaining as 0-1.
func (e *Engine) RespawnFraction() float64 {
	if !e.dead || e.cfg.RespawnDelay <= 0 {
		return 0
	}
	frac := e.respawnRemaining / e.cfg.RespawnDelay
	if frac < 0 {
		frac = 0
	}
	return frac
}

// Update runs one combat resolution tick, in order: timers, respawn
// handling, projectile hits on raiders, raider shots on the ship, then
// direct-contact overlaps. ship is the player body for this frame; raiders
// is the live set in the spawner's order (which fixes collision tie-breaks).
func (e *Engine) Update(dt float64, ship *model.Body, raiders []*model.Raider, station *weapon.Station) {
	if e.invulnRemaining > 0 {
		e.invulnRemaining -= dt
		if e.invulnRemaining < 0 {
			e.invulnRemaining = 0
		}
	}

	if e.dead {
		e.respawnRemaining -= dt
		if e.respawnRemaining <= 0 {
			e.respawn(ship)
		}
		// Dead or freshly respawned: no combat this tick.
		return
	}

	e.resolveProjectilesOnRaiders(raiders, station)
	e.resolveProjectilesOnShip(ship, station)
	e.resolveContacts(ship, raiders)
}

// respawn brings the player back at the designated position with a doubled
// invulnerability window.
func (e *Engine) respawn(ship *model.Body) {
	e.dead = false
	e.respawnRemaining = 0
	e.health = e.cfg.MaxHealth
	e.invulnRemaining = 2 * e.cfg.InvulnDuration
	e.invulnWindow = e.invulnRemaining
	ship.Position = e.cfg.RespawnPosition
	ship.Stop()

	e.events.Publish(event.Event{
		Type:     event.PlayerRespawned,
		Position: e.cfg.RespawnPosition,
	})

	slog.Info("player respawned",
		"position", e.cfg.RespawnPosition,
		"invulnerability", 2*e.cfg.InvulnDuration)
}

// resolveProjectilesOnRaiders applies player projectile hits.
// Raiders are supplied to the station in live-list order, which is the
// documented deterministic tie-break for overlapping targets.
func (e *Engine) resolveProjectilesOnRaiders(raiders []*model.Raider, station *weapon.Station) {
	targets := make([]weapon.Target, 0, len(raiders))
	for _, r := range raiders {
		if r.IsDestroyed() {
			continue
		}
		targets = append(targets, r)
	}
	if len(targets) == 0 {
		return
	}

	for _, hit := range station.CheckCollisions(targets, weapon.SidePlayer) {
		r, ok := hit.Target.(*model.Raider)
		if !ok {
			continue
		}
		wasDestroyed := r.IsDestroyed()
		r.TakeDamage(hit.Damage)
		if !wasDestroyed && r.IsDestroyed() {
			e.rewardKill(r)
		}
	}
}

// resolveProjectilesOnShip applies raider projectile hits to the player.
// Damage gating (dead/invulnerable) happens inside DamagePlayer.
func (e *Engine) resolveProjectilesOnShip(ship *model.Body, station *weapon.Station) {
	target := &shipTarget{body: ship, radius: e.cfg.CollisionRadius, dead: e.dead}
	for _, hit := range station.CheckCollisions([]weapon.Target{target}, weapon.SideRaider) {
		e.DamagePlayer(hit.Damage)
	}
}

// resolveContacts handles raider-body-to-ship overlaps: symmetric knockback
// along the collision normal, fixed counter-damage to the raider, and
// contact damage to the player unless invulnerable.
func (e *Engine) resolveContacts(ship *model.Body, raiders []*model.Raider) {
	if !ship.Position.IsFinite() {
		return
	}

	for _, r := range raiders {
		if r.IsDestroyed() {
			continue
		}
		pos := r.Position()
		if !pos.IsFinite() {
			// Malformed raider: skip for this tick, keep simulating the rest.
			continue
		}

		reach := r.CollisionRadius() + e.cfg.CollisionRadius
		if ship.Position.DistanceSquared(pos) >= reach*reach {
			continue
		}

		normal := pos.Sub(ship.Position).Normalize()
		if normal == (model.Vec2{}) {
			normal = model.NewVec2(1, 0)
		}
		r.Body.Velocity = r.Body.Velocity.Add(normal.Scale(e.cfg.KnockbackForce * raiderKnockbackFrac))
		ship.Velocity = ship.Velocity.Sub(normal.Scale(e.cfg.KnockbackForce * playerKnockbackFrac))

		wasDestroyed := r.IsDestroyed()
		r.TakeDamage(e.cfg.ContactCounterDamage)
		if !wasDestroyed && r.IsDestroyed() {
			e.rewardKill(r)
		}

		if !e.IsInvulnerable() {
			e.DamagePlayer(r.Tuning().ContactDamage)
		}

		if e.dead {
			// No further contacts this tick once the player is down.
			return
		}
	}
}

// rewardKill rolls loot for a destroyed raider and announces it.
func (e *Engine) rewardKill(r *model.Raider) {
	tuning := r.Tuning()
	loot := RollLoot(e.rng, tuning.LootMin, tuning.LootMax)

	e.events.Publish(event.Event{
		Type:     event.RaiderDestroyed,
		Loot:     loot,
		Position: r.Position(),
	})

	slog.Info("raider destroyed",
		"loot", loot,
		"position", r.Position())
}

// DamagePlayer applies damage to the player. No-op while dead or
// invulnerable, so callers never need to pre-check state. Opens the
// invulnerability window; at zero health the player dies and the respawn
// countdown starts.
func (e *Engine) DamagePlayer(amount float64) {
	if e.dead || e.IsInvulnerable() {
		return
	}

	e.health -= amount
	e.invulnRemaining = e.cfg.InvulnDuration
	e.invulnWindow = e.cfg.InvulnDuration

	e.events.Publish(event.Event{
		Type:   event.PlayerDamaged,
		Amount: amount,
	})

	if e.health <= 0 {
		e.health = 0
		e.dead = true
		e.respawnRemaining = e.cfg.RespawnDelay

		e.events.Publish(event.Event{Type: event.PlayerDestroyed})

		slog.Info("player destroyed", "respawnDelay", e.cfg.RespawnDelay)
	}
}

// shipTarget adapts the player body to the weapon target interface.
type shipTarget struct {
	body   *model.Body
	radius float64
	dead   bool
}

func (s *shipTarget) Position() model.Vec2     { return s.body.Position }
func (s *shipTarget) CollisionRadius() float64 { return s.radius }
func (s *shipTarget) IsDestroyed() bool        { return s.dead }
