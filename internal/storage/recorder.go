package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/skirmish/internal/event"
)

// recordBuffer caps the in-flight event queue. Combat keeps running when
// the database falls behind; overflow events are dropped with a warning.
const recordBuffer = 1024

// Recorder persists combat events to PostgreSQL, tagged with a per-run
// UUID so separate simulation runs stay distinguishable. Record is
// non-blocking; writes happen on the Run goroutine.
type Recorder struct {
	pool  *pgxpool.Pool
	runID uuid.UUID
	queue chan event.Event
	seq   int64
}

// NewRecorder connects to PostgreSQL and returns a recorder for a fresh run.
func NewRecorder(ctx context.Context, dsn string) (*Recorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	r := &Recorder{
		pool:  pool,
		runID: uuid.New(),
		queue: make(chan event.Event, recordBuffer),
	}
	slog.Info("combat event recording enabled", "runID", r.runID)
	return r, nil
}

// RunID returns this run's identifier.
func (r *Recorder) RunID() uuid.UUID {
	return r.runID
}

// Record queues a combat event for persistence. Safe to use as an event
// dispatcher handler. Never blocks the simulation tick: when the queue is
// full the event is dropped.
func (r *Recorder) Record(e event.Event) {
	select {
	case r.queue <- e:
	default:
		slog.Warn("combat event dropped, recorder queue full", "type", e.Type)
	}
}

// Run drains the queue into the database until ctx is canceled, then
// flushes what remains and closes the pool.
func (r *Recorder) Run(ctx context.Context) error {
	defer r.pool.Close()

	for {
		select {
		case <-ctx.Done():
			r.flush()
			return ctx.Err()
		case e := <-r.queue:
			if err := r.insert(ctx, e); err != nil {
				slog.Error("writing combat event", "error", err, "type", e.Type)
			}
		}
	}
}

// flush writes queued events with a detached context; the run context is
// already canceled during shutdown.
func (r *Recorder) flush() {
	ctx := context.Background()
	for {
		select {
		case e := <-r.queue:
			if err := r.insert(ctx, e); err != nil {
				slog.Error("flushing combat event", "error", err, "type", e.Type)
				return
			}
		default:
			return
		}
	}
}

func (r *Recorder) insert(ctx context.Context, e event.Event) error {
	r.seq++
	_, err := r.pool.Exec(ctx,
		`INSERT INTO combat_events (run_id, seq, event_type, amount, loot, pos_x, pos_y)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.runID, r.seq, e.Type.String(), e.Amount, e.Loot, e.Position.X, e.Position.Y,
	)
	if err != nil {
		return fmt.Errorf("inserting combat event %s: %w", e.Type, err)
	}
	return nil
}
