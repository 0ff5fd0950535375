package notify

// Notifier is the outgoing push channel for state changes that affect a
// client's view of a room or bracket. Implementations decide only how to
// deliver; what to send and when is decided by the callers.
type Notifier interface {
	// PlayerListUpdate tells the room group to refetch its player list.
	// removedPlayerID is empty unless the update was caused by a leave.
	PlayerListUpdate(roomCode string, removedPlayerID string)
	// RoomDeleted tells the room group the room is gone.
	RoomDeleted(roomCode string)
	// SyncMatch enumerates the ready matches of the current stage so that
	// clients can self-select the match group they belong to.
	SyncMatch(roomCode string, matches []MatchAssignment)
	// ScoreUpdate tells a match group a participant's score changed.
	ScoreUpdate(matchID string)
	// GameStarted tells a match group its game is now running.
	GameStarted(matchID string)
}
