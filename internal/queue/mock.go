package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Mock is an in-memory queue implementation for testing. It is safe for
// concurrent use. Pop returns immediately instead of blocking.
type Mock struct {
	mu     sync.Mutex
	queues map[string][][]byte
	closed bool

	// Spies for method calls
	PushFunc func(ctx context.Context, queue string, payload any) error
	PopFunc  func(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)

	// Call records
	PushCalls []PushCall
}

// PushCall holds the arguments for a call to Push.
type PushCall struct {
	Queue   string
	Payload any
}

// NewMock creates a new mock queue client.
func NewMock() *Mock {
	return &Mock{queues: make(map[string][][]byte)}
}

// Seed enqueues a raw message, as the external game service would.
func (m *Mock) Seed(queue string, message []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[queue] = append(m.queues[queue], message)
}

// Len reports the number of messages waiting on a queue.
func (m *Mock) Len(queue string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[queue])
}

func (m *Mock) Push(ctx context.Context, queue string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushCalls = append(m.PushCalls, PushCall{Queue: queue, Payload: payload})
	if m.PushFunc != nil {
		return m.PushFunc(ctx, queue, payload)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.queues[queue] = append(m.queues[queue], data)
	return nil
}

func (m *Mock) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PopFunc != nil {
		return m.PopFunc(ctx, queue, timeout)
	}
	msgs := m.queues[queue]
	if len(msgs) == 0 {
		return nil, nil
	}
	head := msgs[0]
	m.queues[queue] = msgs[1:]
	return head, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
