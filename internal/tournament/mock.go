package tournament

import "sync"

// MockStore is a mock implementation of MatchStore for testing. It is
// safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateMatchesFunc     func(roomID string, matches []*Match) error
	GetMatchFunc          func(id string) (*Match, error)
	GetMatchesByStageFunc func(roomID string, stage int) ([]*Match, error)
	CountMatchesFunc      func(roomID string) (int, error)
	SetGameIDFunc         func(matchID, gameID string) error
	StartMatchFunc        func(matchID string) (bool, error)
	CompleteMatchFunc     func(matchID, winnerID string, ranks map[string]int) (*Outcome, error)

	// Call records
	CreateMatchesCalls []struct {
		RoomID  string
		Matches []*Match
	}
	SetGameIDCalls []struct {
		MatchID string
		GameID  string
	}
	StartMatchCalls    []string
	CompleteMatchCalls []struct {
		MatchID  string
		WinnerID string
		Ranks    map[string]int
	}
}

// NewMockStore creates a new mock match store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreateMatches(roomID string, matches []*Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateMatchesCalls = append(m.CreateMatchesCalls, struct {
		RoomID  string
		Matches []*Match
	}{roomID, matches})
	if m.CreateMatchesFunc != nil {
		return m.CreateMatchesFunc(roomID, matches)
	}
	return nil
}

func (m *MockStore) GetMatch(id string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(id)
	}
	return nil, ErrMatchNotFound
}

func (m *MockStore) GetMatchesByStage(roomID string, stage int) ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchesByStageFunc != nil {
		return m.GetMatchesByStageFunc(roomID, stage)
	}
	return nil, nil
}

func (m *MockStore) CountMatches(roomID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountMatchesFunc != nil {
		return m.CountMatchesFunc(roomID)
	}
	return 0, nil
}

func (m *MockStore) SetGameID(matchID, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetGameIDCalls = append(m.SetGameIDCalls, struct {
		MatchID string
		GameID  string
	}{matchID, gameID})
	if m.SetGameIDFunc != nil {
		return m.SetGameIDFunc(matchID, gameID)
	}
	return nil
}

func (m *MockStore) StartMatch(matchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartMatchCalls = append(m.StartMatchCalls, matchID)
	if m.StartMatchFunc != nil {
		return m.StartMatchFunc(matchID)
	}
	return true, nil
}

func (m *MockStore) CompleteMatch(matchID, winnerID string, ranks map[string]int) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteMatchCalls = append(m.CompleteMatchCalls, struct {
		MatchID  string
		WinnerID string
		Ranks    map[string]int
	}{matchID, winnerID, ranks})
	if m.CompleteMatchFunc != nil {
		return m.CompleteMatchFunc(matchID, winnerID, ranks)
	}
	return &Outcome{}, nil
}
