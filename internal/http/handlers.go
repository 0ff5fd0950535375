package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/openbracket/arena/internal/bracket"
	"github.com/openbracket/arena/internal/lobby"
	"github.com/openbracket/arena/internal/notify"
	"github.com/openbracket/arena/internal/tournament"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are the reverse proxy's job.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// respondError maps domain sentinels onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lobby.ErrRoomNotFound),
		errors.Is(err, lobby.ErrPlayerNotFound),
		errors.Is(err, tournament.ErrMatchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lobby.ErrRoomFull),
		errors.Is(err, lobby.ErrRoomLocked),
		errors.Is(err, lobby.ErrRoomNotFull),
		errors.Is(err, lobby.ErrAlreadyStarted),
		errors.Is(err, tournament.ErrBracketExists):
		status = http.StatusConflict
	case errors.Is(err, lobby.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, lobby.ErrInvalidSize),
		errors.Is(err, bracket.ErrInvalidPlayerCount):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) CreateRoomHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := decodeBody(r, &req); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		room, owner, err := s.Lobby.CreateRoom(lobby.CreateRoomParams{
			Name:       req.RoomName,
			Type:       lobby.RoomType(req.RoomType),
			MaxPlayers: req.MaxPlayers,
			Private:    req.Private,
			OwnerName:  req.PlayerName,
			OwnerImage: req.ProfileImageURL,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		room, players, err := s.Lobby.GetRoom(room.Code)
		if err != nil {
			respondError(w, err)
			return
		}
		log.Info("Room created", "roomCode", room.Code, "owner", owner.ID)
		respondJSON(w, http.StatusCreated, roomResponse{Room: room, Players: players})
	}
}

func (s *Server) GetRoomHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, players, err := s.Lobby.GetRoom(r.PathValue("code"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, roomResponse{Room: room, Players: players})
	}
}

// RoomStatusHandler returns only the room's lifecycle status, so
// clients waiting on the game-creation transitions can poll cheaply.
func (s *Server) RoomStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, _, err := s.Lobby.GetRoom(r.PathValue("code"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, struct {
			Status lobby.RoomStatus `json:"status"`
		}{room.Status})
	}
}

func (s *Server) JoinRoomHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRoomRequest
		if err := decodeBody(r, &req); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		room, player, err := s.Lobby.JoinRoom(r.PathValue("code"), req.PlayerName, req.ProfileImageURL)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, struct {
			*lobby.Room
			Player *lobby.Player `json:"player"`
		}{room, player})
	}
}

func (s *Server) LeaveRoomHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		if userID == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-User-Id header"})
			return
		}
		if err := s.Lobby.LeaveRoom(r.PathValue("code"), userID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) DeleteRoomHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		if userID == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-User-Id header"})
			return
		}
		if err := s.Lobby.DeleteRoom(r.PathValue("code"), userID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) StartRoomHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		if userID == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-User-Id header"})
			return
		}
		if err := s.Engine.StartRoom(r.Context(), r.PathValue("code"), userID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// ListMatchesHandler returns the matches of the room's current stage.
// A stage query parameter selects an earlier round instead.
func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, _, err := s.Lobby.GetRoom(r.PathValue("code"))
		if err != nil {
			respondError(w, err)
			return
		}

		stage := room.Stage
		if v := r.URL.Query().Get("stage"); v != "" {
			if _, err := fmt.Sscanf(v, "%d", &stage); err != nil || stage < 1 {
				respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid stage parameter"})
				return
			}
		}

		matches, err := s.Matches.GetMatchesByStage(room.ID, stage)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, struct {
			Stage   int                 `json:"stage"`
			Matches []*tournament.Match `json:"matches"`
		}{stage, matches})
	}
}

func (s *Server) UpdateScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateScoreRequest
		if err := decodeBody(r, &req); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		if err := s.Lobby.UpdateScore(r.PathValue("code"), req.MatchID, req.PlayerID, req.Score); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SubscribeHandler upgrades the connection and parks it in the requested
// broadcast group. Group names are room_{code} or match_{id}.
func (s *Server) SubscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := r.PathValue("group")
		if !strings.HasPrefix(group, "room_") && !strings.HasPrefix(group, "match_") {
			http.Error(w, "unknown group", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Websocket upgrade failed", "error", err)
			return
		}
		client := notify.NewClient(s.Hub, conn, group)
		go client.WritePump()
		go client.ReadPump()
	}
}
