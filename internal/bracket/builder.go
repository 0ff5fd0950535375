// Package bracket constructs single-elimination match trees. The build
// is an iterative pass over an arena indexed by (stage, position), so
// next-match links are resolved by index arithmetic rather than
// recursion.
package bracket

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openbracket/arena/internal/tournament"
)

var (
	// ErrInvalidPlayerCount rejects draws that are not a power of two.
	// Room-size validation happens at creation time, so hitting this is a
	// broken caller contract, not user input.
	ErrInvalidPlayerCount = errors.New("bracket requires a power-of-two player count of at least 4")
)

// Build constructs the full match tree for a room. playerIDs must be
// ordered by bracket slot (index i holds the player in slot i+1); the
// room's player list sorted by bracket position satisfies this.
//
// Stage 1 is the first round; the final sits at stage log2(N). Match
// (s, p) feeds into (s+1, ceil(p/2)). First-round match p is assigned
// the players in slots 2p-1 and 2p and starts READY; every later match
// starts PENDING with empty slots.
func Build(roomID string, playerIDs []string) ([]*tournament.Match, error) {
	n := len(playerIDs)
	if n < 4 || !isPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, n)
	}

	stages := 0
	for size := n; size > 1; size >>= 1 {
		stages++
	}

	// arena[s] holds stage s+1's matches by position.
	arena := make([][]*tournament.Match, stages)
	for s := 1; s <= stages; s++ {
		count := n >> s
		arena[s-1] = make([]*tournament.Match, count)
		for p := 1; p <= count; p++ {
			arena[s-1][p-1] = &tournament.Match{
				ID:       uuid.New().String(),
				RoomID:   roomID,
				Stage:    s,
				Position: p,
				Status:   tournament.StatusPending,
			}
		}
	}

	// Link each match to the one its winner feeds into.
	for s := 1; s < stages; s++ {
		for p, m := range arena[s-1] {
			next := arena[s][p/2]
			m.NextMatchID = &next.ID
		}
	}

	// Seat the first round.
	for p, m := range arena[0] {
		m.Players = []tournament.MatchPlayer{
			{MatchID: m.ID, PlayerID: playerIDs[2*p]},
			{MatchID: m.ID, PlayerID: playerIDs[2*p+1]},
		}
		m.Status = tournament.StatusReady
	}

	matches := make([]*tournament.Match, 0, n-1)
	for _, stage := range arena {
		matches = append(matches, stage...)
	}
	return matches, nil
}
