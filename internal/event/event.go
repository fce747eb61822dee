package event

import "github.com/udisondev/skirmish/internal/model"

// Type discriminates combat event variants.
type Type int32

const (
	// PlayerDamaged - the player took damage; Amount carries the value
	PlayerDamaged Type = iota
	// PlayerDestroyed - player health reached zero, respawn countdown started
	PlayerDestroyed
	// PlayerRespawned - the respawn countdown elapsed and the player is back
	PlayerRespawned
	// RaiderDestroyed - a raider died; Loot and Position carry the reward
	RaiderDestroyed
)

// String returns human-readable event type name
func (t Type) String() string {
	switch t {
	case PlayerDamaged:
		return "PLAYER_DAMAGED"
	case PlayerDestroyed:
		return "PLAYER_DESTROYED"
	case PlayerRespawned:
		return "PLAYER_RESPAWNED"
	case RaiderDestroyed:
		return "RAIDER_DESTROYED"
	default:
		return "UNKNOWN"
	}
}

// Event is a closed tagged union: one variant per combat occurrence, with
// typed payload fields instead of loosely-typed callback arguments.
// Payload fields not listed for a variant are zero.
//
//	PlayerDamaged:   Amount
//	PlayerDestroyed: -
//	PlayerRespawned: Position (respawn point)
//	RaiderDestroyed: Loot, Position
type Event struct {
	Type     Type
	Amount   float64
	Loot     int
	Position model.Vec2
}

// Handler consumes a single event. Handlers must treat events as
// fire-and-forget notifications and never call back into the emitter.
type Handler func(Event)

// Dispatcher fans events out to registered subscribers, synchronously and
// in subscription order. The combat core communicates with reward, mission
// and presentation collaborators only through this channel.
type Dispatcher struct {
	handlers []Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a handler for all combat events.
func (d *Dispatcher) Subscribe(h Handler) {
	d.handlers = append(d.handlers, h)
}

// Publish delivers the event to every subscriber.
func (d *Dispatcher) Publish(e Event) {
	for _, h := range d.handlers {
		h(e)
	}
}
