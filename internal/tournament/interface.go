package tournament

// MatchStore defines the database operations for bracket matches.
type MatchStore interface {
	// CreateMatches persists a freshly built bracket in one transaction,
	// including the first round's slot assignments. Fails with
	// ErrBracketExists if the room already has matches.
	CreateMatches(roomID string, matches []*Match) error

	// GetMatch loads a match with its slot assignments.
	GetMatch(id string) (*Match, error)
	// GetMatchesByStage loads a stage's matches, players included,
	// ordered by position.
	GetMatchesByStage(roomID string, stage int) ([]*Match, error)
	CountMatches(roomID string) (int, error)

	SetGameID(matchID, gameID string) error
	// StartMatch flips READY -> IN_PROGRESS. Any other source state is
	// left untouched and reported false.
	StartMatch(matchID string) (bool, error)

	// CompleteMatch records ranks and the winner, advances the winner
	// into the next match, and flips that match READY when it fills, all
	// in a single transaction. Duplicate calls for an already complete
	// match are no-ops reported via Outcome.AlreadyComplete.
	CompleteMatch(matchID, winnerID string, ranks map[string]int) (*Outcome, error)
}
