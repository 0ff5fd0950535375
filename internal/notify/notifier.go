package notify

import (
	"github.com/charmbracelet/log"
	"github.com/openbracket/arena/internal/metrics"
)

var _ Notifier = (*hubNotifier)(nil)

// hubNotifier fans events out through the websocket hub.
type hubNotifier struct {
	hub     *Hub
	metrics metrics.Metrics
}

// New creates a Notifier backed by the given hub.
func New(hub *Hub, metrics metrics.Metrics) Notifier {
	return &hubNotifier{hub: hub, metrics: metrics}
}

func (n *hubNotifier) broadcast(group string, payload any) {
	if err := n.hub.BroadcastToGroup(group, payload); err != nil {
		log.Error("Broadcast failed", "group", group, "error", err)
		n.metrics.IncBroadcastsFailed()
		return
	}
	n.metrics.IncBroadcastsSent()
}

func (n *hubNotifier) PlayerListUpdate(roomCode string, removedPlayerID string) {
	n.broadcast(RoomGroup(roomCode), playerListUpdateEvent{
		Type:        "player_list_update",
		UserRemoved: removedPlayerID,
	})
}

func (n *hubNotifier) RoomDeleted(roomCode string) {
	n.broadcast(RoomGroup(roomCode), deleteRoomEvent{Type: "delete_room"})
}

func (n *hubNotifier) SyncMatch(roomCode string, matches []MatchAssignment) {
	n.broadcast(RoomGroup(roomCode), syncMatchEvent{
		Type:    "sync_match",
		Matches: matches,
	})
}

func (n *hubNotifier) ScoreUpdate(matchID string) {
	n.broadcast(MatchGroup(matchID), scoreUpdateEvent{Type: "update_score"})
}

func (n *hubNotifier) GameStarted(matchID string) {
	n.broadcast(MatchGroup(matchID), gameStartedEvent{
		Type:    "game_started",
		MatchID: matchID,
	})
}
