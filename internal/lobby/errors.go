package lobby

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomLocked     = errors.New("room no longer accepts players")
	ErrRoomNotFull    = errors.New("room is not full yet")
	ErrPlayerNotFound = errors.New("player not found in room")
	ErrNotOwner       = errors.New("player is not the room owner")
	ErrInvalidSize    = errors.New("invalid amount of players for room type")
	ErrAlreadyStarted = errors.New("room game already started")
)
