package http

import (
	"net/http"

	"github.com/openbracket/arena/internal/config"
	"github.com/openbracket/arena/internal/engine"
	"github.com/openbracket/arena/internal/lobby"
	"github.com/openbracket/arena/internal/metrics"
	"github.com/openbracket/arena/internal/notify"
	"github.com/openbracket/arena/internal/tournament"
)

type Server struct {
	Lobby          *lobby.Service
	Engine         *engine.Engine
	Matches        tournament.MatchStore
	Hub            *notify.Hub
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}

// createRoomRequest mirrors the field names the clients already send.
type createRoomRequest struct {
	RoomName        string `json:"roomName"`
	RoomType        string `json:"roomType"`
	MaxPlayers      int    `json:"maxAmountOfPlayers"`
	Private         bool   `json:"privateRoom"`
	PlayerName      string `json:"playerName"`
	ProfileImageURL string `json:"urlProfileImage"`
}

type joinRoomRequest struct {
	PlayerName      string `json:"playerName"`
	ProfileImageURL string `json:"urlProfileImage"`
}

type updateScoreRequest struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

type roomResponse struct {
	*lobby.Room
	Players []lobby.Player `json:"players"`
}

type errorResponse struct {
	Error string `json:"error"`
}
