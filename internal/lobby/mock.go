package lobby

import "sync"

// MockStore is a mock implementation of RoomStore for testing. It is
// safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateRoomFunc        func(room *Room) error
	GetRoomFunc           func(id string) (*Room, error)
	GetRoomByCodeFunc     func(code string) (*Room, error)
	DeleteRoomFunc        func(id string) error
	AddPlayerFunc         func(room *Room, player *Player) error
	RemovePlayerFunc      func(roomID, playerID string) error
	GetPlayerFunc         func(roomID, playerID string) (*Player, error)
	GetPlayersFunc        func(roomID string) ([]Player, error)
	UpdatePlayerScoreFunc func(roomID, playerID string, score int) error
	SetRoomOwnerFunc      func(roomID, playerID string) error
	SetRoomStatusFunc     func(roomID string, status RoomStatus) error
	AdvanceStageFunc      func(roomID string, stage int) error
	SetChampionFunc       func(roomID, playerID string) error

	// Call records
	DeleteRoomCalls    []string
	SetRoomStatusCalls []struct {
		RoomID string
		Status RoomStatus
	}
	AdvanceStageCalls []struct {
		RoomID string
		Stage  int
	}
	SetChampionCalls []struct {
		RoomID   string
		PlayerID string
	}
}

// NewMockStore creates a new mock room store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreateRoom(room *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateRoomFunc != nil {
		return m.CreateRoomFunc(room)
	}
	return nil
}

func (m *MockStore) GetRoom(id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(id)
	}
	return nil, ErrRoomNotFound
}

func (m *MockStore) GetRoomByCode(code string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRoomByCodeFunc != nil {
		return m.GetRoomByCodeFunc(code)
	}
	return nil, ErrRoomNotFound
}

func (m *MockStore) DeleteRoom(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteRoomCalls = append(m.DeleteRoomCalls, id)
	if m.DeleteRoomFunc != nil {
		return m.DeleteRoomFunc(id)
	}
	return nil
}

func (m *MockStore) AddPlayer(room *Room, player *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddPlayerFunc != nil {
		return m.AddPlayerFunc(room, player)
	}
	return nil
}

func (m *MockStore) RemovePlayer(roomID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemovePlayerFunc != nil {
		return m.RemovePlayerFunc(roomID, playerID)
	}
	return nil
}

func (m *MockStore) GetPlayer(roomID, playerID string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(roomID, playerID)
	}
	return nil, ErrPlayerNotFound
}

func (m *MockStore) GetPlayers(roomID string) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(roomID)
	}
	return nil, nil
}

func (m *MockStore) UpdatePlayerScore(roomID, playerID string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdatePlayerScoreFunc != nil {
		return m.UpdatePlayerScoreFunc(roomID, playerID, score)
	}
	return nil
}

func (m *MockStore) SetRoomOwner(roomID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetRoomOwnerFunc != nil {
		return m.SetRoomOwnerFunc(roomID, playerID)
	}
	return nil
}

func (m *MockStore) SetRoomStatus(roomID string, status RoomStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetRoomStatusCalls = append(m.SetRoomStatusCalls, struct {
		RoomID string
		Status RoomStatus
	}{roomID, status})
	if m.SetRoomStatusFunc != nil {
		return m.SetRoomStatusFunc(roomID, status)
	}
	return nil
}

func (m *MockStore) AdvanceStage(roomID string, stage int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdvanceStageCalls = append(m.AdvanceStageCalls, struct {
		RoomID string
		Stage  int
	}{roomID, stage})
	if m.AdvanceStageFunc != nil {
		return m.AdvanceStageFunc(roomID, stage)
	}
	return nil
}

func (m *MockStore) SetChampion(roomID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetChampionCalls = append(m.SetChampionCalls, struct {
		RoomID   string
		PlayerID string
	}{roomID, playerID})
	if m.SetChampionFunc != nil {
		return m.SetChampionFunc(roomID, playerID)
	}
	return nil
}
