package engine

import (
	"github.com/openbracket/arena/internal/lobby"
	"github.com/openbracket/arena/internal/notify"
	"github.com/openbracket/arena/internal/tournament"
)

// RoomStore defines the room operations required by the engine.
type RoomStore interface {
	GetRoom(id string) (*lobby.Room, error)
	GetRoomByCode(code string) (*lobby.Room, error)
	GetPlayers(roomID string) ([]lobby.Player, error)
	SetRoomStatus(roomID string, status lobby.RoomStatus) error
	AdvanceStage(roomID string, stage int) error
	SetChampion(roomID, playerID string) error
}

// MatchStore defines the match operations required by the engine.
type MatchStore interface {
	CreateMatches(roomID string, matches []*tournament.Match) error
	GetMatch(id string) (*tournament.Match, error)
	GetMatchesByStage(roomID string, stage int) ([]*tournament.Match, error)
	CountMatches(roomID string) (int, error)
	SetGameID(matchID, gameID string) error
	StartMatch(matchID string) (bool, error)
	CompleteMatch(matchID, winnerID string, ranks map[string]int) (*tournament.Outcome, error)
}

// Notifier defines the fan-out operations required by the engine.
// This is an alias for the main notify interface for decoupling.
type Notifier interface {
	notify.Notifier
}
