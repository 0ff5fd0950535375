package notify

// Group name conventions. Clients subscribe to room_{code} for lobby
// events and to match_{id} for in-game events.
func RoomGroup(code string) string { return "room_" + code }
func MatchGroup(id string) string  { return "match_" + id }

// PlayerRef identifies one of the two players assigned to a match slot.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatchAssignment is one entry of a sync_match payload.
type MatchAssignment struct {
	MatchID string      `json:"matchId"`
	Players []PlayerRef `json:"players"`
}

type playerListUpdateEvent struct {
	Type        string `json:"type"`
	UserRemoved string `json:"userRemoved"`
}

type deleteRoomEvent struct {
	Type string `json:"type"`
}

type syncMatchEvent struct {
	Type    string            `json:"type"`
	Matches []MatchAssignment `json:"matches"`
}

type scoreUpdateEvent struct {
	Type string `json:"type"`
}

type gameStartedEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}
