package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	eventsConsumed   int
	eventsDropped    int
	eventDurations   []float64
	gamesRequested   int
	broadcastsSent   int
	broadcastsFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		eventDurations: make([]float64, 0),
	}
}

func (m *Mock) IncEventsConsumed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsConsumed++
}

func (m *Mock) IncEventsDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsDropped++
}

func (m *Mock) ObserveEventDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventDurations = append(m.eventDurations, duration)
}

func (m *Mock) IncGamesRequested() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesRequested++
}

func (m *Mock) IncBroadcastsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastsSent++
}

func (m *Mock) IncBroadcastsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastsFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// GetEventsConsumed returns the number of times IncEventsConsumed was called.
func (m *Mock) GetEventsConsumed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsConsumed
}

// GetEventsDropped returns the number of times IncEventsDropped was called.
func (m *Mock) GetEventsDropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsDropped
}

// GetGamesRequested returns the number of times IncGamesRequested was called.
func (m *Mock) GetGamesRequested() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesRequested
}
