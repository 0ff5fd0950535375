package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openbracket/arena/internal/config"
	"github.com/openbracket/arena/internal/database"
	"github.com/openbracket/arena/internal/engine"
	"github.com/openbracket/arena/internal/event"
	"github.com/openbracket/arena/internal/lobby"
	"github.com/openbracket/arena/internal/metrics"
	"github.com/openbracket/arena/internal/notify"
	"github.com/openbracket/arena/internal/queue"
	"github.com/openbracket/arena/internal/tournament"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) (*Server, *notify.Mock, *queue.Mock, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	rooms := lobby.New(db)
	matches := tournament.New(db)
	notif := notify.NewMock()
	q := queue.NewMock()

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)

	lobbySvc := lobby.NewService(rooms, notif)
	eng := engine.New(rooms, matches, notif, q, metricsSvc)
	hub := notify.NewHub()
	go hub.Run()

	server := NewServer(lobbySvc, eng, matches, hub, metricsSvc, metricsHandler, config.Config{})

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, notif, q, teardown
}

func doJSON(t *testing.T, server *Server, method, target, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func createTestRoom(t *testing.T, server *Server, roomType string, maxPlayers int) roomResponse {
	t.Helper()
	rr := doJSON(t, server, "POST", "/rooms", "", createRoomRequest{
		RoomName:   "friday night",
		RoomType:   roomType,
		MaxPlayers: maxPlayers,
		PlayerName: "Alice",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp roomResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func joinTestRoom(t *testing.T, server *Server, code, name string) *lobby.Player {
	t.Helper()
	rr := doJSON(t, server, "POST", "/rooms/"+code+"/join", "", joinRoomRequest{PlayerName: name})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Player *lobby.Player `json:"player"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Player
}

func TestRoomLifecycleHandlers(t *testing.T) {
	t.Run("create room seats the owner", func(t *testing.T) {
		server, _, _, teardown := setupTestServer(t)
		defer teardown()

		resp := createTestRoom(t, server, "TOURNAMENT", 4)
		assert.Len(t, resp.Room.Code, 8)
		assert.Equal(t, lobby.StatusRoomCreated, resp.Room.Status)
		assert.Equal(t, 1, resp.Room.PlayerCount)
		require.Len(t, resp.Players, 1)
		assert.Equal(t, resp.Room.OwnerID, resp.Players[0].ID)
	})

	t.Run("create room rejects a bad size", func(t *testing.T) {
		server, _, _, teardown := setupTestServer(t)
		defer teardown()

		rr := doJSON(t, server, "POST", "/rooms", "", createRoomRequest{
			RoomName: "odd one", RoomType: "TOURNAMENT", MaxPlayers: 6, PlayerName: "Alice",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("join fills seats and locks the full room", func(t *testing.T) {
		server, notif, _, teardown := setupTestServer(t)
		defer teardown()

		room := createTestRoom(t, server, "TOURNAMENT", 4)
		for _, name := range []string{"Bob", "Carol", "Dave"} {
			joinTestRoom(t, server, room.Room.Code, name)
		}

		rr := doJSON(t, server, "GET", "/rooms/"+room.Room.Code, "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var got roomResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, lobby.StatusReadyForStart, got.Room.Status)
		assert.Equal(t, 4, got.Room.PlayerCount)
		assert.Len(t, got.Players, 4)

		assert.Len(t, notif.PlayerListUpdateCalls, 3, "every join is broadcast")

		rr = doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/join", "", joinRoomRequest{PlayerName: "Eve"})
		assert.Equal(t, http.StatusConflict, rr.Code, "fifth player must be turned away")
	})

	t.Run("status endpoint tracks the room lifecycle", func(t *testing.T) {
		server, _, _, teardown := setupTestServer(t)
		defer teardown()

		room := createTestRoom(t, server, "MATCH", 2)

		rr := doJSON(t, server, "GET", "/rooms/"+room.Room.Code+"/status", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var got struct {
			Status lobby.RoomStatus `json:"status"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, lobby.StatusRoomCreated, got.Status)

		joinTestRoom(t, server, room.Room.Code, "Bob")
		rr = doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/start", room.Room.OwnerID, nil)
		require.Equal(t, http.StatusAccepted, rr.Code)

		rr = doJSON(t, server, "GET", "/rooms/"+room.Room.Code+"/status", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, lobby.StatusCreatingGame, got.Status)

		rr = doJSON(t, server, "GET", "/rooms/00000000/status", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("get unknown room is a 404", func(t *testing.T) {
		server, _, _, teardown := setupTestServer(t)
		defer teardown()

		rr := doJSON(t, server, "GET", "/rooms/00000000", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("only the owner deletes the room", func(t *testing.T) {
		server, notif, _, teardown := setupTestServer(t)
		defer teardown()

		room := createTestRoom(t, server, "MATCH", 2)
		bob := joinTestRoom(t, server, room.Room.Code, "Bob")

		rr := doJSON(t, server, "DELETE", "/rooms/"+room.Room.Code, bob.ID, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = doJSON(t, server, "DELETE", "/rooms/"+room.Room.Code, room.Room.OwnerID, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, []string{room.Room.Code}, notif.RoomDeletedCalls)

		rr = doJSON(t, server, "GET", "/rooms/"+room.Room.Code, "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("leaving reopens a locked room", func(t *testing.T) {
		server, _, _, teardown := setupTestServer(t)
		defer teardown()

		room := createTestRoom(t, server, "MATCH", 2)
		bob := joinTestRoom(t, server, room.Room.Code, "Bob")

		rr := doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/leave", bob.ID, nil)
		require.Equal(t, http.StatusNoContent, rr.Code)

		rr = doJSON(t, server, "GET", "/rooms/"+room.Room.Code, "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var got roomResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, lobby.StatusWaitingPlayers, got.Room.Status)
		assert.Equal(t, 1, got.Room.PlayerCount)
	})

	t.Run("leave request needs an identity", func(t *testing.T) {
		server, _, _, teardown := setupTestServer(t)
		defer teardown()

		room := createTestRoom(t, server, "MATCH", 2)
		rr := doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/leave", "", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestStartRoomHandler(t *testing.T) {
	t.Run("starting a full tournament queues first round games", func(t *testing.T) {
		server, notif, q, teardown := setupTestServer(t)
		defer teardown()

		room := createTestRoom(t, server, "TOURNAMENT", 4)
		for _, name := range []string{"Bob", "Carol", "Dave"} {
			joinTestRoom(t, server, room.Room.Code, name)
		}

		rr := doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/start", room.Room.OwnerID, nil)
		require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

		require.Len(t, q.PushCalls, 2)
		for _, call := range q.PushCalls {
			assert.Equal(t, queue.CreateGameQueue, call.Queue)
			req, ok := call.Payload.(event.CreateGameRequest)
			require.True(t, ok)
			assert.Len(t, req.Players, 2)
		}
		require.Len(t, notif.SyncMatchCalls, 1)

		rr = doJSON(t, server, "GET", fmt.Sprintf("/rooms/%s/matches?stage=1", room.Room.Code), "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var got struct {
			Stage   int                 `json:"stage"`
			Matches []*tournament.Match `json:"matches"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Len(t, got.Matches, 2)
		for _, m := range got.Matches {
			assert.Equal(t, tournament.StatusReady, m.Status)
			assert.Len(t, m.Players, 2)
		}

		// Without a stage parameter the listing follows the room, which
		// sits on its first round right after the start.
		rr = doJSON(t, server, "GET", "/rooms/"+room.Room.Code+"/matches", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		got.Matches = nil
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, 1, got.Stage)
		assert.Len(t, got.Matches, 2)
	})

	t.Run("starting an underfilled room conflicts", func(t *testing.T) {
		server, _, q, teardown := setupTestServer(t)
		defer teardown()

		room := createTestRoom(t, server, "TOURNAMENT", 4)
		rr := doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/start", room.Room.OwnerID, nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Empty(t, q.PushCalls)
	})

	t.Run("starting twice conflicts", func(t *testing.T) {
		server, _, _, teardown := setupTestServer(t)
		defer teardown()

		room := createTestRoom(t, server, "MATCH", 2)
		joinTestRoom(t, server, room.Room.Code, "Bob")

		rr := doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/start", room.Room.OwnerID, nil)
		require.Equal(t, http.StatusAccepted, rr.Code)

		rr = doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/start", room.Room.OwnerID, nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestUpdateScoreHandler(t *testing.T) {
	server, notif, _, teardown := setupTestServer(t)
	defer teardown()

	room := createTestRoom(t, server, "MATCH", 2)
	bob := joinTestRoom(t, server, room.Room.Code, "Bob")

	rr := doJSON(t, server, "POST", "/rooms/"+room.Room.Code+"/score", bob.ID, updateScoreRequest{
		MatchID: "m1", PlayerID: bob.ID, Score: 42,
	})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
	assert.Equal(t, []string{"m1"}, notif.ScoreUpdateCalls)

	rr = doJSON(t, server, "GET", "/rooms/"+room.Room.Code, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got roomResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	for _, p := range got.Players {
		if p.ID == bob.ID {
			assert.Equal(t, 42, p.Score)
		}
	}
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := doJSON(t, server, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}
