package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/openbracket/arena/internal/event"
	"github.com/openbracket/arena/internal/lobby"
	"github.com/openbracket/arena/internal/metrics"
	"github.com/openbracket/arena/internal/notify"
	"github.com/openbracket/arena/internal/queue"
	"github.com/openbracket/arena/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() (*Engine, *lobby.MockStore, *tournament.MockStore, *notify.Mock, *queue.Mock, *metrics.Mock) {
	rooms := lobby.NewMockStore()
	matches := tournament.NewMockStore()
	notif := notify.NewMock()
	q := queue.NewMock()
	metr := metrics.NewMock()
	return New(rooms, matches, notif, q, metr), rooms, matches, notif, q, metr
}

func tournamentRoom() *lobby.Room {
	return &lobby.Room{
		ID:          "r1",
		Code:        "12345678",
		Type:        lobby.RoomTypeTournament,
		Status:      lobby.StatusReadyForStart,
		MaxPlayers:  4,
		PlayerCount: 4,
		OwnerID:     "alice",
	}
}

func fourPlayers() []lobby.Player {
	// Deliberately out of slot order; the engine must sort by slot.
	return []lobby.Player{
		{ID: "carol", Name: "Carol", RoomID: "r1", BracketPosition: 3},
		{ID: "alice", Name: "Alice", RoomID: "r1", BracketPosition: 1},
		{ID: "dave", Name: "Dave", RoomID: "r1", BracketPosition: 4},
		{ID: "bob", Name: "Bob", RoomID: "r1", BracketPosition: 2},
	}
}

func TestEngine_StartRoom(t *testing.T) {
	t.Run("tournament start builds bracket and requests first round games", func(t *testing.T) {
		e, rooms, matches, notif, q, metr := newTestEngine()
		room := tournamentRoom()
		rooms.GetRoomByCodeFunc = func(code string) (*lobby.Room, error) { return room, nil }
		rooms.GetPlayersFunc = func(roomID string) ([]lobby.Player, error) { return fourPlayers(), nil }

		err := e.StartRoom(context.Background(), room.Code, "alice")
		require.NoError(t, err)

		require.Len(t, matches.CreateMatchesCalls, 1)
		assert.Len(t, matches.CreateMatchesCalls[0].Matches, 3, "4 players should yield 3 matches")

		require.Len(t, rooms.SetRoomStatusCalls, 1)
		assert.Equal(t, lobby.StatusCreatingGame, rooms.SetRoomStatusCalls[0].Status)

		require.Len(t, rooms.AdvanceStageCalls, 1, "starting puts the room on its first round")
		assert.Equal(t, 1, rooms.AdvanceStageCalls[0].Stage)

		require.Len(t, q.PushCalls, 2, "one create_game per first-round match")
		for _, call := range q.PushCalls {
			assert.Equal(t, queue.CreateGameQueue, call.Queue)
		}
		first, ok := q.PushCalls[0].Payload.(event.CreateGameRequest)
		require.True(t, ok)
		assert.Equal(t, "create_game", first.Type)
		assert.Equal(t, "r1", first.RoomID)
		assert.NotEmpty(t, first.MatchID)
		require.Len(t, first.Players, 2)
		assert.Equal(t, "alice", first.Players[0].ID, "slot 1 plays in the first match")
		assert.Equal(t, "bob", first.Players[1].ID, "slot 2 plays in the first match")

		require.Len(t, notif.SyncMatchCalls, 1)
		assert.Equal(t, room.Code, notif.SyncMatchCalls[0].RoomCode)
		assert.Len(t, notif.SyncMatchCalls[0].Matches, 2)

		assert.Equal(t, 2, metr.GetGamesRequested())
	})

	t.Run("plain match room requests a single game for everyone", func(t *testing.T) {
		e, rooms, matches, _, q, _ := newTestEngine()
		room := &lobby.Room{
			ID: "r2", Code: "87654321",
			Type: lobby.RoomTypeMatch, Status: lobby.StatusReadyForStart,
			MaxPlayers: 2, PlayerCount: 2, OwnerID: "alice",
		}
		rooms.GetRoomByCodeFunc = func(code string) (*lobby.Room, error) { return room, nil }
		rooms.GetPlayersFunc = func(roomID string) ([]lobby.Player, error) {
			return []lobby.Player{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}}, nil
		}

		err := e.StartRoom(context.Background(), room.Code, "alice")
		require.NoError(t, err)

		assert.Empty(t, matches.CreateMatchesCalls, "plain rooms have no bracket")
		require.Len(t, q.PushCalls, 1)
		req, ok := q.PushCalls[0].Payload.(event.CreateGameRequest)
		require.True(t, ok)
		assert.Empty(t, req.MatchID)
		assert.False(t, req.IsSinglePlayer)
		assert.Len(t, req.Players, 2)
	})

	t.Run("queue failure releases the room for a retry", func(t *testing.T) {
		e, rooms, _, _, q, _ := newTestEngine()
		room := &lobby.Room{
			ID: "r2", Code: "87654321",
			Type: lobby.RoomTypeMatch, Status: lobby.StatusReadyForStart,
			MaxPlayers: 2, PlayerCount: 2, OwnerID: "alice",
		}
		rooms.GetRoomByCodeFunc = func(code string) (*lobby.Room, error) { return room, nil }
		rooms.GetPlayersFunc = func(roomID string) ([]lobby.Player, error) {
			return []lobby.Player{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}}, nil
		}
		q.PushFunc = func(ctx context.Context, queue string, payload any) error {
			return errors.New("redis is down")
		}

		err := e.StartRoom(context.Background(), room.Code, "alice")
		require.Error(t, err)

		require.Len(t, rooms.SetRoomStatusCalls, 2)
		assert.Equal(t, lobby.StatusCreatingGame, rooms.SetRoomStatusCalls[0].Status)
		assert.Equal(t, lobby.StatusReadyForStart, rooms.SetRoomStatusCalls[1].Status, "status rolls back on queue failure")

		q.PushFunc = nil
		require.NoError(t, e.StartRoom(context.Background(), room.Code, "alice"))
	})

	t.Run("single player room is flagged as such", func(t *testing.T) {
		e, rooms, _, _, q, _ := newTestEngine()
		room := &lobby.Room{
			ID: "r3", Code: "11112222",
			Type: lobby.RoomTypeSinglePlayer, Status: lobby.StatusRoomCreated,
			MaxPlayers: 2, PlayerCount: 2, OwnerID: "alice",
		}
		rooms.GetRoomByCodeFunc = func(code string) (*lobby.Room, error) { return room, nil }
		rooms.GetPlayersFunc = func(roomID string) ([]lobby.Player, error) {
			return []lobby.Player{{ID: "alice", Name: "Alice"}, {ID: "bot-r3", Name: "Bot"}}, nil
		}

		require.NoError(t, e.StartRoom(context.Background(), room.Code, "alice"))

		require.Len(t, q.PushCalls, 1)
		req := q.PushCalls[0].Payload.(event.CreateGameRequest)
		assert.True(t, req.IsSinglePlayer)
	})

	t.Run("only the owner may start", func(t *testing.T) {
		e, rooms, _, _, q, _ := newTestEngine()
		room := tournamentRoom()
		rooms.GetRoomByCodeFunc = func(code string) (*lobby.Room, error) { return room, nil }

		err := e.StartRoom(context.Background(), room.Code, "bob")
		assert.ErrorIs(t, err, lobby.ErrNotOwner)
		assert.Empty(t, q.PushCalls)
	})

	t.Run("room must be full", func(t *testing.T) {
		e, rooms, _, _, q, _ := newTestEngine()
		room := tournamentRoom()
		room.PlayerCount = 3
		rooms.GetRoomByCodeFunc = func(code string) (*lobby.Room, error) { return room, nil }

		err := e.StartRoom(context.Background(), room.Code, "alice")
		assert.ErrorIs(t, err, lobby.ErrRoomNotFull)
		assert.Empty(t, q.PushCalls)
	})

	t.Run("starting twice is rejected", func(t *testing.T) {
		e, rooms, _, _, _, _ := newTestEngine()
		room := tournamentRoom()
		room.Status = lobby.StatusGameStarted
		rooms.GetRoomByCodeFunc = func(code string) (*lobby.Room, error) { return room, nil }

		err := e.StartRoom(context.Background(), room.Code, "alice")
		assert.ErrorIs(t, err, lobby.ErrAlreadyStarted)
	})

	t.Run("existing bracket is rejected", func(t *testing.T) {
		e, rooms, matches, _, _, _ := newTestEngine()
		room := tournamentRoom()
		rooms.GetRoomByCodeFunc = func(code string) (*lobby.Room, error) { return room, nil }
		rooms.GetPlayersFunc = func(roomID string) ([]lobby.Player, error) { return fourPlayers(), nil }
		matches.CountMatchesFunc = func(roomID string) (int, error) { return 3, nil }

		err := e.StartRoom(context.Background(), room.Code, "alice")
		assert.ErrorIs(t, err, tournament.ErrBracketExists)
		assert.Empty(t, rooms.SetRoomStatusCalls, "room state must not change")
	})
}

func TestEngine_Apply(t *testing.T) {
	t.Run("game created records the game id on the match", func(t *testing.T) {
		e, rooms, matches, _, _, _ := newTestEngine()
		matches.GetMatchFunc = func(id string) (*tournament.Match, error) {
			return &tournament.Match{ID: "m1", RoomID: "r1", Status: tournament.StatusReady}, nil
		}

		err := e.Apply(context.Background(), event.GameCreated{MatchID: "m1", GameID: "g1"})
		require.NoError(t, err)

		require.Len(t, matches.SetGameIDCalls, 1)
		assert.Equal(t, "g1", matches.SetGameIDCalls[0].GameID)
		require.Len(t, rooms.SetRoomStatusCalls, 1)
		assert.Equal(t, lobby.StatusGameCreated, rooms.SetRoomStatusCalls[0].Status)
	})

	t.Run("event for unknown match surfaces the store error", func(t *testing.T) {
		e, _, _, _, _, _ := newTestEngine()

		err := e.Apply(context.Background(), event.GameCreated{MatchID: "nope", GameID: "g1"})
		assert.ErrorIs(t, err, tournament.ErrMatchNotFound)
	})

	t.Run("game started flips the match and notifies its group", func(t *testing.T) {
		e, rooms, matches, notif, _, _ := newTestEngine()
		matches.GetMatchFunc = func(id string) (*tournament.Match, error) {
			return &tournament.Match{
				ID: "m1", RoomID: "r1", Status: tournament.StatusReady,
				Players: []tournament.MatchPlayer{{PlayerID: "alice"}, {PlayerID: "bob"}},
			}, nil
		}

		err := e.Apply(context.Background(), event.GameStarted{MatchID: "m1"})
		require.NoError(t, err)

		assert.Equal(t, []string{"m1"}, matches.StartMatchCalls)
		require.Len(t, rooms.SetRoomStatusCalls, 1)
		assert.Equal(t, lobby.StatusGameStarted, rooms.SetRoomStatusCalls[0].Status)
		assert.Equal(t, []string{"m1"}, notif.GameStartedCalls)
	})

	t.Run("game started for an underfilled match is ignored", func(t *testing.T) {
		e, rooms, matches, notif, _, _ := newTestEngine()
		matches.GetMatchFunc = func(id string) (*tournament.Match, error) {
			return &tournament.Match{
				ID: "m1", RoomID: "r1", Status: tournament.StatusPending,
				Players: []tournament.MatchPlayer{{PlayerID: "alice"}},
			}, nil
		}

		err := e.Apply(context.Background(), event.GameStarted{MatchID: "m1"})
		require.NoError(t, err)

		assert.Empty(t, matches.StartMatchCalls)
		assert.Empty(t, rooms.SetRoomStatusCalls)
		assert.Empty(t, notif.GameStartedCalls)
	})

	t.Run("game over advances the winner and requests the next game", func(t *testing.T) {
		e, rooms, matches, notif, q, metr := newTestEngine()
		room := tournamentRoom()
		next := &tournament.Match{
			ID: "m3", RoomID: "r1", Stage: 2, Position: 1, Status: tournament.StatusReady,
			Players: []tournament.MatchPlayer{{PlayerID: "alice"}, {PlayerID: "carol"}},
		}
		matches.GetMatchFunc = func(id string) (*tournament.Match, error) {
			return &tournament.Match{ID: "m1", RoomID: "r1", Stage: 1}, nil
		}
		matches.CompleteMatchFunc = func(matchID, winnerID string, ranks map[string]int) (*tournament.Outcome, error) {
			return &tournament.Outcome{
				Match:     &tournament.Match{ID: "m1", RoomID: "r1", Status: tournament.StatusComplete},
				NextMatch: next,
				NextReady: true,
			}, nil
		}
		matches.GetMatchesByStageFunc = func(roomID string, stage int) ([]*tournament.Match, error) {
			return []*tournament.Match{next}, nil
		}
		rooms.GetRoomFunc = func(id string) (*lobby.Room, error) { return room, nil }
		rooms.GetPlayersFunc = func(roomID string) ([]lobby.Player, error) { return fourPlayers(), nil }

		err := e.Apply(context.Background(), event.GameOver{
			MatchID: "m1",
			Winner:  "alice",
			Players: []event.PlayerResult{{ID: "alice", Rank: 1}, {ID: "bob", Rank: 2}},
		})
		require.NoError(t, err)

		require.Len(t, matches.CompleteMatchCalls, 1)
		assert.Equal(t, "alice", matches.CompleteMatchCalls[0].WinnerID)
		assert.Equal(t, map[string]int{"alice": 1, "bob": 2}, matches.CompleteMatchCalls[0].Ranks)

		require.Len(t, rooms.AdvanceStageCalls, 1)
		assert.Equal(t, 2, rooms.AdvanceStageCalls[0].Stage)

		require.Len(t, notif.SyncMatchCalls, 1)
		require.Len(t, notif.SyncMatchCalls[0].Matches, 1)
		assert.Equal(t, "m3", notif.SyncMatchCalls[0].Matches[0].MatchID)

		require.Len(t, q.PushCalls, 1)
		req := q.PushCalls[0].Payload.(event.CreateGameRequest)
		assert.Equal(t, "m3", req.MatchID)
		require.Len(t, req.Players, 2)
		assert.Equal(t, "Alice", req.Players[0].Name)
		assert.Equal(t, "Carol", req.Players[1].Name)
		assert.Equal(t, 1, metr.GetGamesRequested())
	})

	t.Run("game over with half-filled next match requests nothing yet", func(t *testing.T) {
		e, rooms, matches, _, q, _ := newTestEngine()
		matches.GetMatchFunc = func(id string) (*tournament.Match, error) {
			return &tournament.Match{ID: "m1", RoomID: "r1", Stage: 1}, nil
		}
		matches.CompleteMatchFunc = func(matchID, winnerID string, ranks map[string]int) (*tournament.Outcome, error) {
			return &tournament.Outcome{
				Match:     &tournament.Match{ID: "m1", RoomID: "r1"},
				NextMatch: &tournament.Match{ID: "m3", Stage: 2, Status: tournament.StatusPending},
			}, nil
		}
		rooms.GetRoomFunc = func(id string) (*lobby.Room, error) { return tournamentRoom(), nil }

		err := e.Apply(context.Background(), event.GameOver{MatchID: "m1", Winner: "alice"})
		require.NoError(t, err)

		assert.Empty(t, rooms.AdvanceStageCalls)
		assert.Empty(t, q.PushCalls)
	})

	t.Run("duplicate game over is a no-op", func(t *testing.T) {
		e, rooms, matches, _, q, _ := newTestEngine()
		matches.GetMatchFunc = func(id string) (*tournament.Match, error) {
			return &tournament.Match{ID: "m1", RoomID: "r1"}, nil
		}
		matches.CompleteMatchFunc = func(matchID, winnerID string, ranks map[string]int) (*tournament.Outcome, error) {
			return &tournament.Outcome{AlreadyComplete: true}, nil
		}

		err := e.Apply(context.Background(), event.GameOver{MatchID: "m1", Winner: "alice"})
		require.NoError(t, err)

		assert.Empty(t, rooms.SetChampionCalls)
		assert.Empty(t, rooms.AdvanceStageCalls)
		assert.Empty(t, q.PushCalls)
	})

	t.Run("final crowns the champion", func(t *testing.T) {
		e, rooms, matches, _, q, _ := newTestEngine()
		matches.GetMatchFunc = func(id string) (*tournament.Match, error) {
			return &tournament.Match{ID: "m3", RoomID: "r1", Stage: 2}, nil
		}
		matches.CompleteMatchFunc = func(matchID, winnerID string, ranks map[string]int) (*tournament.Outcome, error) {
			return &tournament.Outcome{
				Match: &tournament.Match{ID: "m3", RoomID: "r1", Status: tournament.StatusComplete},
				Final: true,
			}, nil
		}
		rooms.GetRoomFunc = func(id string) (*lobby.Room, error) { return tournamentRoom(), nil }

		err := e.Apply(context.Background(), event.GameOver{MatchID: "m3", Winner: "alice"})
		require.NoError(t, err)

		require.Len(t, rooms.SetChampionCalls, 1)
		assert.Equal(t, "alice", rooms.SetChampionCalls[0].PlayerID)
		assert.Empty(t, q.PushCalls)
	})

	t.Run("winner outside the match propagates the error", func(t *testing.T) {
		e, _, matches, _, _, _ := newTestEngine()
		matches.GetMatchFunc = func(id string) (*tournament.Match, error) {
			return &tournament.Match{ID: "m1", RoomID: "r1"}, nil
		}
		matches.CompleteMatchFunc = func(matchID, winnerID string, ranks map[string]int) (*tournament.Outcome, error) {
			return nil, tournament.ErrWinnerNotInMatch
		}

		err := e.Apply(context.Background(), event.GameOver{MatchID: "m1", Winner: "mallory"})
		assert.ErrorIs(t, err, tournament.ErrWinnerNotInMatch)
	})
}
