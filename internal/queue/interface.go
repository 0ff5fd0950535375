package queue

import (
	"context"
	"time"
)

// Queue names shared with the external game-execution service.
const (
	// GameSyncQueue carries game lifecycle events produced by the game
	// service and consumed by the sync worker.
	GameSyncQueue = "game-sync-session-queue"
	// CreateGameQueue carries create_game requests produced here and
	// consumed by the game service.
	CreateGameQueue = "create-game-queue"
)

// Producer pushes serialized messages onto a named FIFO queue.
type Producer interface {
	Push(ctx context.Context, queue string, payload any) error
}

// Consumer pops the oldest message from a named FIFO queue, blocking up
// to timeout. A nil message with a nil error means the queue was empty
// for the whole wait.
type Consumer interface {
	Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)
}

// Client is the full queue connection owned by the worker lifecycle.
type Client interface {
	Producer
	Consumer
	Close() error
}
