package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

var _ Client = (*client)(nil)

type client struct {
	rdb *redis.Client
}

// New connects to the Redis queue backend and verifies the connection.
func New(addr, password string) (Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	log.Info("Connected to queue backend", "addr", addr)
	return &client{rdb: rdb}, nil
}

// Push appends a JSON-encoded message to the tail of the queue.
func (c *client) Push(ctx context.Context, queue string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	if err := c.rdb.RPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", queue, err)
	}
	return nil
}

// Pop blocks on the head of the queue for up to timeout. Unlike a
// sleep-then-LPOP poll this wakes as soon as a message arrives while
// still bounding each wait.
func (c *client) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	res, err := c.rdb.BLPop(ctx, timeout, queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from %s: %w", queue, err)
	}
	// BLPOP returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BLPOP reply length %d", len(res))
	}
	return []byte(res[1]), nil
}

func (c *client) Close() error {
	return c.rdb.Close()
}
