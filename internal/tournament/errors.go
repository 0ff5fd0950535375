package tournament

import "errors"

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrWinnerNotInMatch is a data-integrity failure: the reported winner
	// does not occupy either slot of the match.
	ErrWinnerNotInMatch = errors.New("winner is not a participant of the match")
	// ErrBracketExists guards against building a second bracket for a room.
	ErrBracketExists = errors.New("room already has a bracket")
	// ErrSlotsTaken guards the two-slots-per-match invariant.
	ErrSlotsTaken = errors.New("match already has two players")
)
