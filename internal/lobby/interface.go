package lobby

// RoomStore defines the database operations for rooms and their players.
type RoomStore interface {
	CreateRoom(room *Room) error
	GetRoom(id string) (*Room, error)
	GetRoomByCode(code string) (*Room, error)
	DeleteRoom(id string) error

	// AddPlayer seats a player in a room. The capacity check and the
	// player-count increment are a single atomic step; the losing side of
	// a concurrent join on the last seat gets ErrRoomFull.
	AddPlayer(room *Room, player *Player) error
	RemovePlayer(roomID, playerID string) error
	GetPlayer(roomID, playerID string) (*Player, error)
	GetPlayers(roomID string) ([]Player, error)
	UpdatePlayerScore(roomID, playerID string, score int) error

	SetRoomOwner(roomID, playerID string) error
	SetRoomStatus(roomID string, status RoomStatus) error
	AdvanceStage(roomID string, stage int) error
	SetChampion(roomID, playerID string) error
}
