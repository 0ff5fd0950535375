package notify

import "sync"

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	PlayerListUpdateCalls []struct {
		RoomCode        string
		RemovedPlayerID string
	}
	RoomDeletedCalls []string
	SyncMatchCalls   []struct {
		RoomCode string
		Matches  []MatchAssignment
	}
	ScoreUpdateCalls []string
	GameStartedCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerListUpdateCalls = nil
	m.RoomDeletedCalls = nil
	m.SyncMatchCalls = nil
	m.ScoreUpdateCalls = nil
	m.GameStartedCalls = nil
}

func (m *Mock) PlayerListUpdate(roomCode string, removedPlayerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerListUpdateCalls = append(m.PlayerListUpdateCalls, struct {
		RoomCode        string
		RemovedPlayerID string
	}{roomCode, removedPlayerID})
}

func (m *Mock) RoomDeleted(roomCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RoomDeletedCalls = append(m.RoomDeletedCalls, roomCode)
}

func (m *Mock) SyncMatch(roomCode string, matches []MatchAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncMatchCalls = append(m.SyncMatchCalls, struct {
		RoomCode string
		Matches  []MatchAssignment
	}{roomCode, matches})
}

func (m *Mock) ScoreUpdate(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScoreUpdateCalls = append(m.ScoreUpdateCalls, matchID)
}

func (m *Mock) GameStarted(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GameStartedCalls = append(m.GameStartedCalls, matchID)
}
