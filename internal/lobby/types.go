package lobby

import (
	"database/sql"
	"sync"
	"time"
)

// RoomType distinguishes the three play modes a room can host.
type RoomType string

const (
	RoomTypeMatch        RoomType = "MATCH"
	RoomTypeTournament   RoomType = "TOURNAMENT"
	RoomTypeSinglePlayer RoomType = "SINGLE_PLAYER"
)

// RoomStatus is the lifecycle of a room from creation to the end of its
// last game.
type RoomStatus string

const (
	StatusCreatingRoom   RoomStatus = "CREATING_ROOM"
	StatusRoomCreated    RoomStatus = "ROOM_CREATED"
	StatusWaitingPlayers RoomStatus = "WAITING_PLAYERS"
	StatusReadyForStart  RoomStatus = "READY_FOR_START"
	StatusCreatingGame   RoomStatus = "CREATING_GAME"
	StatusGameCreated    RoomStatus = "GAME_CREATED"
	StatusGameStarted    RoomStatus = "GAME_STARTED"
	StatusGameEnded      RoomStatus = "GAME_ENDED"
)

// Joinable reports whether new players may still enter a room in this
// status. Anything at or past READY_FOR_START is locked.
func (s RoomStatus) Joinable() bool {
	switch s {
	case StatusRoomCreated, StatusWaitingPlayers:
		return true
	}
	return false
}

// Room is a lobby that players gather in before a game or tournament.
type Room struct {
	ID          string     `json:"roomId"`
	Code        string     `json:"roomCode"`
	Name        string     `json:"roomName"`
	Type        RoomType   `json:"roomType"`
	Status      RoomStatus `json:"status"`
	MaxPlayers  int        `json:"maxAmountOfPlayers"`
	PlayerCount int        `json:"amountOfPlayers"`
	Stage       int        `json:"stage"`
	OwnerID     string     `json:"createdBy"`
	ChampionID  string     `json:"champion,omitempty"`
	Private     bool       `json:"privateRoom"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// Player is a participant of a single room. BracketPosition is the slot
// 1..MaxPlayers the player occupies in a tournament bracket, 0 otherwise.
type Player struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	RoomID          string    `json:"-"`
	RoomCode        string    `json:"roomCode"`
	ProfileColor    int       `json:"profileColor"`
	ProfileImageURL string    `json:"urlProfileImage"`
	BracketPosition int       `json:"bracketPosition,omitempty"`
	Score           int       `json:"score"`
	CreatedAt       time.Time `json:"-"`
}

// roomSizes are the allowed capacities per room type.
var roomSizes = map[RoomType][]int{
	RoomTypeMatch:        {2, 4},
	RoomTypeTournament:   {4, 8, 16},
	RoomTypeSinglePlayer: {1},
}

// ValidRoomSize reports whether maxPlayers is an allowed capacity for the
// given room type.
func ValidRoomSize(roomType RoomType, maxPlayers int) bool {
	for _, n := range roomSizes[roomType] {
		if n == maxPlayers {
			return true
		}
	}
	return false
}

// profileColorCount is the size of the client-side color palette.
const profileColorCount = 16

// store handles all database operations for rooms and players.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
