package tournament

import (
	"database/sql"
	"sync"
	"time"
)

// MatchStatus is the per-match state machine:
// PENDING -> READY -> IN_PROGRESS -> COMPLETE.
type MatchStatus string

const (
	// StatusPending means the match is still waiting for both slots.
	StatusPending MatchStatus = "PENDING"
	// StatusReady means both slots are filled and a game can be requested.
	StatusReady MatchStatus = "READY"
	// StatusInProgress means the external game session started.
	StatusInProgress MatchStatus = "IN_PROGRESS"
	// StatusComplete means a winner was recorded.
	StatusComplete MatchStatus = "COMPLETE"
)

// Match is a single node of a room's elimination bracket. NextMatchID
// points at the match the winner advances into; it is nil only for the
// final.
type Match struct {
	ID          string      `json:"matchId"`
	RoomID      string      `json:"roomId"`
	Stage       int         `json:"stage"`
	Position    int         `json:"position"`
	Status      MatchStatus `json:"status"`
	GameID      string      `json:"gameId,omitempty"`
	WinnerID    string      `json:"winner,omitempty"`
	NextMatchID *string     `json:"nextMatchId,omitempty"`

	// Players holds the match's slot assignments when loaded.
	Players []MatchPlayer `json:"players,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// MatchPlayer assigns a player to one of a match's two slots. Rank is 0
// until the match completes.
type MatchPlayer struct {
	MatchID  string `json:"-"`
	PlayerID string `json:"id"`
	Rank     int    `json:"rank,omitempty"`
}

// HasPlayer reports whether the given player occupies one of the match's slots.
func (m *Match) HasPlayer(playerID string) bool {
	for _, mp := range m.Players {
		if mp.PlayerID == playerID {
			return true
		}
	}
	return false
}

// Outcome describes what a completed game-over application did, so the
// caller can drive room-level side effects.
type Outcome struct {
	// Match is the completed match with final ranks loaded.
	Match *Match
	// AlreadyComplete is set when the event was a duplicate; nothing was
	// written.
	AlreadyComplete bool
	// NextMatch is the match the winner advanced into, players loaded.
	// Nil when the completed match was the final.
	NextMatch *Match
	// NextReady is set when NextMatch just received its second player.
	NextReady bool
	// Final is set when the completed match had no next match.
	Final bool
}

// store handles database operations for matches and match players.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
