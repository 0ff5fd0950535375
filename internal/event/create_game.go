package event

// GamePlayer is a participant entry of a create_game request.
type GamePlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color int    `json:"color"`
}

// CreateGameRequest asks the game service to spin up a session. MatchID
// is empty for plain (non-bracket) rooms, which play a single game for
// the whole room.
type CreateGameRequest struct {
	Type           string       `json:"type"`
	RoomID         string       `json:"roomId"`
	MatchID        string       `json:"matchId,omitempty"`
	IsSinglePlayer bool         `json:"isSinglePlayer"`
	OwnerID        string       `json:"ownerId"`
	Players        []GamePlayer `json:"players"`
}

// NewCreateGame builds a create_game request with the fixed type tag.
func NewCreateGame(roomID, matchID, ownerID string, singlePlayer bool, players []GamePlayer) CreateGameRequest {
	return CreateGameRequest{
		Type:           "create_game",
		RoomID:         roomID,
		MatchID:        matchID,
		IsSinglePlayer: singlePlayer,
		OwnerID:        ownerID,
		Players:        players,
	}
}
