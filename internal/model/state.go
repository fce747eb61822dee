package model

// State represents the behavior state of a raider.
type State int32

const (
	// StatePatrol - raider is circling its patrol anchor, no target
	StatePatrol State = iota
	// StateChase - raider is closing on a detected target
	StateChase
	// StateAttack - raider is inside attack range, ramming the target
	StateAttack
	// StateFlee - raider is running away after dropping below its flee threshold
	StateFlee
)

// String returns human-readable state name
func (s State) String() string {
	switch s {
	case StatePatrol:
		return "PATROL"
	case StateChase:
		return "CHASE"
	case StateAttack:
		return "ATTACK"
	case StateFlee:
		return "FLEE"
	default:
		return "UNKNOWN"
	}
}

// Hostile reports whether the state is an active-aggression state.
// Used by threat-level queries.
func (s State) Hostile() bool {
	return s == StateChase || s == StateAttack
}
