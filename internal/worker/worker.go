// Package worker runs the sync loop that drains game lifecycle events
// from the shared Redis queue and feeds them to the engine. Delivery is
// at most once: a message is popped before it is handled, and a message
// that cannot be handled is logged and dropped, never requeued.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openbracket/arena/internal/event"
	"github.com/openbracket/arena/internal/metrics"
	"github.com/openbracket/arena/internal/queue"
	"github.com/openbracket/arena/internal/tournament"
)

// popTimeout bounds each blocking pop so the loop can notice Stop.
const popTimeout = 1 * time.Second

// Applier applies a decoded lifecycle event to stored state.
type Applier interface {
	Apply(ctx context.Context, ev event.GameEvent) error
}

// Worker owns the consuming side of the game sync queue.
type Worker struct {
	engine  Applier
	client  queue.Client
	metrics metrics.Metrics

	stop chan struct{}
	done chan struct{}
}

// New creates a new Worker. The worker takes ownership of the queue
// client and closes it on Stop.
func New(engine Applier, client queue.Client, metrics metrics.Metrics) *Worker {
	return &Worker{
		engine:  engine,
		client:  client,
		metrics: metrics,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the consume loop in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop shuts the loop down, waits for the in-flight message to finish
// and closes the queue connection.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
	if err := w.client.Close(); err != nil {
		log.Error("Failed to close queue client", "error", err)
	}
	log.Info("Sync worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	log.Info("Sync worker started", "queue", queue.GameSyncQueue)

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		msg, err := w.client.Pop(ctx, queue.GameSyncQueue, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Failed to pop from sync queue", "error", err)
			// The queue is likely unreachable. Back off instead of
			// spinning on the same error.
			select {
			case <-w.stop:
				return
			case <-time.After(popTimeout):
			}
			continue
		}
		if msg == nil {
			continue
		}
		w.handle(ctx, msg)
	}
}

// handle processes one raw queue message. Failures never escape; a bad
// message must not take the loop down.
func (w *Worker) handle(ctx context.Context, msg []byte) {
	startTime := time.Now()

	ev, err := event.Decode(msg)
	if err != nil {
		log.Warn("Dropping malformed queue message", "error", err, "payload", string(msg))
		w.metrics.IncEventsDropped()
		return
	}

	if err := w.engine.Apply(ctx, ev); err != nil {
		if errors.Is(err, tournament.ErrMatchNotFound) {
			log.Warn("Dropping event for unknown match", "matchID", ev.Match())
		} else {
			log.Error("Failed to apply event", "error", err, "matchID", ev.Match())
		}
		w.metrics.IncEventsDropped()
		return
	}

	w.metrics.IncEventsConsumed()
	w.metrics.ObserveEventDuration(time.Since(startTime).Seconds())
}
