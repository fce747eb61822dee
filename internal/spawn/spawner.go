package spawn

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

// RemoveFunc is notified when a raider leaves the live set, with the
// handle key that identified it. Injected by the simulation driver so the
// weapon station can drop the shooter's cooldown entry.
type RemoveFunc func(key string)

// respawnTask is a scheduled replacement for a destroyed raider.
type respawnTask struct {
	tuning    model.Tuning
	origin    model.Vec2
	remaining float64 // seconds
}

type entry struct {
	raider *model.Raider
	origin model.Vec2
}

// Spawner owns the live raider set. The combat core only reads and mutates
// raider instances; add/remove lifecycle lives here: destroyed raiders are
// swept out after each frame and scheduled for a timed respawn at their
// original spawn point.
//
// Tick-stepped like the rest of the simulation: no goroutines, no timers.
type Spawner struct {
	raiders *world.Arena[entry]
	tasks   []respawnTask
	rng     *rand.Rand

	onRemove RemoveFunc

	// grace > 0 keeps every raider passive (post-respawn safety window)
	grace float64

	// cached live snapshot, rebuilt on change
	live      []*model.Raider
	liveDirty bool
}

// NewSpawner creates an empty spawner. rng seeds every raider's movement
// draws, so a fixed seed reproduces the whole population's behavior.
func NewSpawner(rng *rand.Rand) *Spawner {
	return &Spawner{
		raiders: world.NewArena[entry](32),
		rng:     rng,
	}
}

// SetRemoveFunc sets the removal notification callback.
func (s *Spawner) SetRemoveFunc(fn RemoveFunc) {
	s.onRemove = fn
}

// Spawn creates a raider of the given archetype at pos and returns its
// handle. The position becomes both patrol anchor and respawn origin.
func (s *Spawner) Spawn(tuning model.Tuning, pos model.Vec2) world.Handle {
	r := model.NewRaider(pos, tuning.PatrolRadius, tuning, s.rng)
	if s.grace > 0 {
		r.SetPassive(true)
	}
	h := s.raiders.Insert(entry{raider: r, origin: pos})
	s.liveDirty = true

	slog.Debug("raider spawned",
		"handle", h,
		"position", pos,
		"maxHealth", tuning.MaxHealth)
	return h
}

// Get resolves a raider handle; stale handles return nil, false.
func (s *Spawner) Get(h world.Handle) (*model.Raider, bool) {
	e, ok := s.raiders.Get(h)
	if !ok {
		return nil, false
	}
	return e.raider, true
}

// Live returns the live raider set in stable slot order. Destroyed raiders
// still appear until the next Update sweep; callers must treat them as
// inert, which every consumer in this module does.
func (s *Spawner) Live() []*model.Raider {
	if s.liveDirty {
		s.live = s.live[:0]
		s.raiders.Range(func(_ world.Handle, e *entry) bool {
			s.live = append(s.live, e.raider)
			return true
		})
		s.liveDirty = false
	}
	return s.live
}

// Count returns the number of raiders in the live set.
func (s *Spawner) Count() int {
	return s.raiders.Len()
}

// PendingRespawns returns the number of scheduled respawn tasks.
func (s *Spawner) PendingRespawns() int {
	return len(s.tasks)
}

// KeyFor returns the shooter cooldown key for a raider, or "" for raiders
// not (or no longer) in the live set.
func (s *Spawner) KeyFor(r *model.Raider) string {
	key := ""
	s.raiders.Range(func(h world.Handle, e *entry) bool {
		if e.raider == r {
			key = h.String()
			return false
		}
		return true
	})
	return key
}

// SetPassiveFor keeps every live raider (and any spawned meanwhile) passive
// for the given number of seconds. Used for the post-respawn grace period.
func (s *Spawner) SetPassiveFor(seconds float64) {
	s.grace = seconds
	s.raiders.Range(func(_ world.Handle, e *entry) bool {
		e.raider.SetPassive(true)
		return true
	})

	slog.Debug("raiders passive", "seconds", seconds)
}

// Update sweeps destroyed raiders out of the live set (scheduling their
// respawn) and advances the grace and respawn timers.
func (s *Spawner) Update(dt float64) {
	if s.grace > 0 {
		s.grace -= dt
		if s.grace <= 0 {
			s.grace = 0
			s.raiders.Range(func(_ world.Handle, e *entry) bool {
				e.raider.SetPassive(false)
				return true
			})
			slog.Debug("raider grace period ended")
		}
	}

	s.sweepDestroyed()
	s.processRespawns(dt)
}

func (s *Spawner) sweepDestroyed() {
	type removal struct {
		h world.Handle
		e entry
	}
	var removed []removal

	s.raiders.Range(func(h world.Handle, e *entry) bool {
		if e.raider.IsDestroyed() {
			removed = append(removed, removal{h: h, e: *e})
		}
		return true
	})

	for _, rm := range removed {
		s.raiders.Remove(rm.h)
		s.liveDirty = true

		if s.onRemove != nil {
			s.onRemove(rm.h.String())
		}

		tuning := rm.e.raider.Tuning()
		if tuning.RespawnDelay > 0 {
			s.tasks = append(s.tasks, respawnTask{
				tuning:    tuning,
				origin:    rm.e.origin,
				remaining: tuning.RespawnDelay,
			})
		}

		slog.Debug("raider despawned",
			"handle", rm.h,
			"respawnDelay", tuning.RespawnDelay)
	}
}

func (s *Spawner) processRespawns(dt float64) {
	if len(s.tasks) == 0 {
		return
	}

	due := s.tasks[:0]
	for _, task := range s.tasks {
		task.remaining -= dt
		if task.remaining <= 0 {
			h := s.Spawn(task.tuning, task.origin)
			slog.Info("raider respawned", "handle", h, "position", task.origin)
			continue
		}
		due = append(due, task)
	}
	s.tasks = due
}
