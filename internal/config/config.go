package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Simulation holds all configuration for the skirmish server.
type Simulation struct {
	// Runtime
	LogLevel string  `yaml:"log_level"` // debug, info, warn, error
	DebugAI  bool    `yaml:"debug_ai"`  // verbose behavior logging
	TickRate float64 `yaml:"tick_rate"` // frames per second

	// Player combat
	Player PlayerConfig `yaml:"player"`

	// Weapons
	PlayerWeapon WeaponConfig `yaml:"player_weapon"`
	RaiderWeapon WeaponConfig `yaml:"raider_weapon"`

	// Behavior coordination
	Coordinator CoordinatorConfig `yaml:"coordinator"`

	// Raider archetypes, keyed by name. "default" is used when a spawn
	// entry names no archetype.
	Archetypes map[string]ArchetypeConfig `yaml:"archetypes"`

	// Initial population
	Spawns []SpawnEntry `yaml:"spawns"`

	// Combat event recording. Disabled unless database.host is set.
	Database DatabaseConfig `yaml:"database"`
}

// PlayerConfig mirrors the combat engine's player parameters.
type PlayerConfig struct {
	MaxHealth            float64 `yaml:"max_health"`
	InvulnDuration       float64 `yaml:"invulnerability_duration"` // seconds
	KnockbackForce       float64 `yaml:"knockback_force"`
	RespawnDelay         float64 `yaml:"respawn_delay"` // seconds
	RespawnX             float64 `yaml:"respawn_x"`
	RespawnY             float64 `yaml:"respawn_y"`
	CollisionRadius      float64 `yaml:"collision_radius"`
	ContactCounterDamage float64 `yaml:"contact_counter_damage"`
}

// WeaponConfig holds one side's weapon parameters.
type WeaponConfig struct {
	FireRate         float64 `yaml:"fire_rate"` // shots per second
	ProjectileSpeed  float64 `yaml:"projectile_speed"`
	ProjectileDamage float64 `yaml:"projectile_damage"`
	ProjectileLife   float64 `yaml:"projectile_life"` // seconds
	ShotCount        int     `yaml:"shot_count"`
	SpreadAngle      float64 `yaml:"spread_angle"` // radians, total arc
	ProjectileRadius float64 `yaml:"projectile_radius"`
}

// CoordinatorConfig holds the behavior coordinator's cadence and flocking
// parameters.
type CoordinatorConfig struct {
	Interval           float64 `yaml:"interval"` // seconds between decision passes
	PredictionFactor   float64 `yaml:"prediction_factor"`
	SeparationDistance float64 `yaml:"separation_distance"`
	SeparationForce    float64 `yaml:"separation_force"`
	ThreatRange        float64 `yaml:"threat_range"`
	ThreatCountCap     int     `yaml:"threat_count_cap"`
}

// ArchetypeConfig is the YAML form of a raider tuning record.
type ArchetypeConfig struct {
	MaxSpeed          float64 `yaml:"max_speed"`
	Acceleration      float64 `yaml:"acceleration"`
	TurnRate          float64 `yaml:"turn_rate"` // radians/second
	DetectionRange    float64 `yaml:"detection_range"`
	AttackRange       float64 `yaml:"attack_range"`
	FleeHealthFrac    float64 `yaml:"flee_health_fraction"`
	LoseInterestRange float64 `yaml:"lose_interest_range"`
	ContactDamage     float64 `yaml:"contact_damage"`
	LootMin           int     `yaml:"loot_min"`
	LootMax           int     `yaml:"loot_max"`
	CollisionRadius   float64 `yaml:"collision_radius"`
	MaxHealth         float64 `yaml:"max_health"`
	PatrolRadius      float64 `yaml:"patrol_radius"`
	RespawnDelay      float64 `yaml:"respawn_delay"` // seconds
}

// SpawnEntry places one raider at startup.
type SpawnEntry struct {
	Archetype string  `yaml:"archetype"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the combat
// event recorder.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether event recording is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSimulation returns Simulation config with sensible defaults:
// a 60Hz loop, the reference player and weapon tuning, and a small ring
// of default-archetype raiders around the origin.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel: "info",
		TickRate: 60,
		Player: PlayerConfig{
			MaxHealth:            100,
			InvulnDuration:       1.5,
			KnockbackForce:       300,
			RespawnDelay:         3.0,
			CollisionRadius:      16,
			ContactCounterDamage: 5,
		},
		PlayerWeapon: WeaponConfig{
			FireRate:         3,
			ProjectileSpeed:  600,
			ProjectileDamage: 10,
			ProjectileLife:   2.0,
			ShotCount:        1,
			SpreadAngle:      0.26,
			ProjectileRadius: 4,
		},
		RaiderWeapon: WeaponConfig{
			FireRate:         1,
			ProjectileSpeed:  400,
			ProjectileDamage: 8,
			ProjectileLife:   1.5,
			ShotCount:        1,
			SpreadAngle:      0,
			ProjectileRadius: 4,
		},
		Coordinator: CoordinatorConfig{
			Interval:           0.1,
			PredictionFactor:   0.5,
			SeparationDistance: 60,
			SeparationForce:    50,
			ThreatRange:        500,
			ThreatCountCap:     5,
		},
		Archetypes: map[string]ArchetypeConfig{
			"default": {
				MaxSpeed:          180,
				Acceleration:      220,
				TurnRate:          3.0,
				DetectionRange:    450,
				AttackRange:       120,
				FleeHealthFrac:    0.25,
				LoseInterestRange: 700,
				ContactDamage:     15,
				LootMin:           10,
				LootMax:           30,
				CollisionRadius:   18,
				MaxHealth:         60,
				PatrolRadius:      300,
				RespawnDelay:      20,
			},
		},
		Spawns: []SpawnEntry{
			{Archetype: "default", X: 800, Y: 0},
			{Archetype: "default", X: -800, Y: 0},
			{Archetype: "default", X: 0, Y: 800},
			{Archetype: "default", X: 0, Y: -800},
		},
		Database: DatabaseConfig{
			Port:    5432,
			User:    "skirmish",
			DBName:  "skirmish",
			SSLMode: "disable",
		},
	}
}

// LoadSimulation loads simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first contract violation across the whole config.
// Per-subsystem constructors re-validate their own parameters; this
// catches the cross-cutting fields they never see.
func (c Simulation) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("config: tick_rate must be > 0, got %v", c.TickRate)
	}
	if c.Coordinator.Interval <= 0 {
		return fmt.Errorf("config: coordinator.interval must be > 0, got %v", c.Coordinator.Interval)
	}
	for _, s := range c.Spawns {
		name := s.Archetype
		if name == "" {
			name = "default"
		}
		if _, ok := c.Archetypes[name]; !ok {
			return fmt.Errorf("config: spawn references unknown archetype %q", name)
		}
	}
	return nil
}
