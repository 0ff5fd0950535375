// Package event defines the wire format shared with the external
// game-execution service: the lifecycle events consumed from the sync
// queue and the create_game requests produced onto the game queue.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed marks a message that cannot be decoded into a known
	// event shape. Such messages are dropped by the consumer.
	ErrMalformed = errors.New("malformed queue message")
)

// PlayerResult is a participant's final rank within a finished game.
type PlayerResult struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

// GameEvent is the closed set of lifecycle events the game service emits.
// Handling is an exhaustive type switch; adding a variant here forces
// every consumer to handle it.
type GameEvent interface {
	// Match returns the id of the match the event refers to.
	Match() string
	isGameEvent()
}

// GameCreated reports that a game session now exists for a match.
type GameCreated struct {
	MatchID string
	GameID  string
}

// GameStarted reports that the game session began running.
type GameStarted struct {
	MatchID string
}

// GameOver reports the outcome of a finished game session.
type GameOver struct {
	MatchID string
	Winner  string
	Players []PlayerResult
}

func (e GameCreated) Match() string { return e.MatchID }
func (e GameStarted) Match() string { return e.MatchID }
func (e GameOver) Match() string    { return e.MatchID }

func (GameCreated) isGameEvent() {}
func (GameStarted) isGameEvent() {}
func (GameOver) isGameEvent()    {}

type envelope struct {
	Type    string         `json:"type"`
	MatchID string         `json:"matchId"`
	GameID  string         `json:"gameId"`
	Winner  string         `json:"winner"`
	Players []PlayerResult `json:"players"`
}

// Decode parses a raw queue message into its typed variant. Any shape
// violation is reported as ErrMalformed.
func Decode(data []byte) (GameEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.MatchID == "" {
		return nil, fmt.Errorf("%w: missing matchId", ErrMalformed)
	}

	switch env.Type {
	case "game-created":
		if env.GameID == "" {
			return nil, fmt.Errorf("%w: game-created without gameId", ErrMalformed)
		}
		return GameCreated{MatchID: env.MatchID, GameID: env.GameID}, nil
	case "game-started":
		return GameStarted{MatchID: env.MatchID}, nil
	case "game-over":
		if env.Winner == "" {
			return nil, fmt.Errorf("%w: game-over without winner", ErrMalformed)
		}
		return GameOver{MatchID: env.MatchID, Winner: env.Winner, Players: env.Players}, nil
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrMalformed, env.Type)
	}
}
