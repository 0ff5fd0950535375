// Package engine drives rooms through their game lifecycle: it turns a
// full room into queued create_game requests (building the bracket for
// tournaments) and applies the lifecycle events the game service sends
// back, advancing winners until a champion is crowned.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/openbracket/arena/internal/bracket"
	"github.com/openbracket/arena/internal/event"
	"github.com/openbracket/arena/internal/lobby"
	"github.com/openbracket/arena/internal/metrics"
	"github.com/openbracket/arena/internal/notify"
	"github.com/openbracket/arena/internal/queue"
	"github.com/openbracket/arena/internal/tournament"
)

// New creates a new Engine.
func New(rooms RoomStore, matches MatchStore, notifier Notifier, producer queue.Producer, metrics metrics.Metrics) *Engine {
	return &Engine{
		rooms:    rooms,
		matches:  matches,
		notifier: notifier,
		producer: producer,
		metrics:  metrics,
	}
}

// StartRoom locks a full room and requests its first game(s) from the
// game service. Only the owner may start a room. For tournament rooms
// this builds and persists the bracket and requests one game per
// first-round match; other room types get a single game for the whole
// room.
func (e *Engine) StartRoom(ctx context.Context, roomCode, requesterID string) error {
	room, err := e.rooms.GetRoomByCode(roomCode)
	if err != nil {
		return err
	}
	if room.OwnerID != requesterID {
		return lobby.ErrNotOwner
	}
	switch room.Status {
	case lobby.StatusCreatingGame, lobby.StatusGameCreated, lobby.StatusGameStarted, lobby.StatusGameEnded:
		return lobby.ErrAlreadyStarted
	}
	if room.PlayerCount != room.MaxPlayers {
		return lobby.ErrRoomNotFull
	}

	players, err := e.rooms.GetPlayers(room.ID)
	if err != nil {
		return err
	}

	if room.Type == lobby.RoomTypeTournament {
		return e.startTournament(ctx, room, players)
	}

	if err := e.rooms.SetRoomStatus(room.ID, lobby.StatusCreatingGame); err != nil {
		return err
	}
	req := event.NewCreateGame(room.ID, "", room.OwnerID, room.Type == lobby.RoomTypeSinglePlayer, gamePlayers(players))
	if err := e.producer.Push(ctx, queue.CreateGameQueue, req); err != nil {
		// Release the room so the owner can retry once the queue is back.
		if rerr := e.rooms.SetRoomStatus(room.ID, room.Status); rerr != nil {
			log.Error("Failed to release room after queue error", "roomID", room.ID, "error", rerr)
		}
		return fmt.Errorf("requesting game: %w", err)
	}
	e.metrics.IncGamesRequested()
	log.Info("Room started, game requested", "roomCode", room.Code, "roomType", room.Type)
	return nil
}

func (e *Engine) startTournament(ctx context.Context, room *lobby.Room, players []lobby.Player) error {
	count, err := e.matches.CountMatches(room.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return tournament.ErrBracketExists
	}

	// The builder expects players ordered by bracket slot.
	sort.Slice(players, func(i, j int) bool {
		return players[i].BracketPosition < players[j].BracketPosition
	})
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}

	built, err := bracket.Build(room.ID, ids)
	if err != nil {
		return err
	}

	if err := e.rooms.SetRoomStatus(room.ID, lobby.StatusCreatingGame); err != nil {
		return err
	}
	// The first round is stage 1; rooms are created at stage 0.
	if err := e.rooms.AdvanceStage(room.ID, 1); err != nil {
		return err
	}
	if err := e.matches.CreateMatches(room.ID, built); err != nil {
		return err
	}

	byID := playersByID(players)
	var assignments []notify.MatchAssignment
	for _, m := range built {
		if m.Stage != 1 {
			continue
		}
		assignments = append(assignments, assignment(m, byID))
		req := event.NewCreateGame(room.ID, m.ID, room.OwnerID, false, matchGamePlayers(m, byID))
		if err := e.producer.Push(ctx, queue.CreateGameQueue, req); err != nil {
			return fmt.Errorf("requesting game for match %s: %w", m.ID, err)
		}
		e.metrics.IncGamesRequested()
	}
	e.notifier.SyncMatch(room.Code, assignments)

	log.Info("Tournament started", "roomCode", room.Code, "matches", len(built), "firstRound", len(assignments))
	return nil
}

// Apply dispatches a game lifecycle event to its handler. Events whose
// match is unknown fail with tournament.ErrMatchNotFound; the consumer
// drops them.
func (e *Engine) Apply(ctx context.Context, ev event.GameEvent) error {
	switch ev := ev.(type) {
	case event.GameCreated:
		return e.applyGameCreated(ev)
	case event.GameStarted:
		return e.applyGameStarted(ev)
	case event.GameOver:
		return e.applyGameOver(ctx, ev)
	default:
		return fmt.Errorf("unhandled event type %T", ev)
	}
}

func (e *Engine) applyGameCreated(ev event.GameCreated) error {
	m, err := e.matches.GetMatch(ev.MatchID)
	if err != nil {
		return err
	}
	if err := e.matches.SetGameID(ev.MatchID, ev.GameID); err != nil {
		return err
	}
	if err := e.rooms.SetRoomStatus(m.RoomID, lobby.StatusGameCreated); err != nil {
		return err
	}
	log.Info("Game created for match", "matchID", ev.MatchID, "gameID", ev.GameID)
	return nil
}

func (e *Engine) applyGameStarted(ev event.GameStarted) error {
	m, err := e.matches.GetMatch(ev.MatchID)
	if err != nil {
		return err
	}
	// A start for a match that never filled both slots is the game
	// service talking about a session we no longer recognize as
	// playable. Ignore it rather than corrupt the bracket.
	if len(m.Players) < 2 {
		log.Warn("Ignoring game start for underfilled match", "matchID", ev.MatchID, "players", len(m.Players))
		return nil
	}
	started, err := e.matches.StartMatch(ev.MatchID)
	if err != nil {
		return err
	}
	if !started {
		log.Debug("Match was not READY, start ignored", "matchID", ev.MatchID, "status", m.Status)
		return nil
	}
	if err := e.rooms.SetRoomStatus(m.RoomID, lobby.StatusGameStarted); err != nil {
		return err
	}
	e.notifier.GameStarted(ev.MatchID)
	log.Info("Match in progress", "matchID", ev.MatchID)
	return nil
}

func (e *Engine) applyGameOver(ctx context.Context, ev event.GameOver) error {
	m, err := e.matches.GetMatch(ev.MatchID)
	if err != nil {
		return err
	}

	ranks := make(map[string]int, len(ev.Players))
	for _, p := range ev.Players {
		ranks[p.ID] = p.Rank
	}
	outcome, err := e.matches.CompleteMatch(ev.MatchID, ev.Winner, ranks)
	if err != nil {
		return err
	}
	if outcome.AlreadyComplete {
		log.Debug("Duplicate game over, already complete", "matchID", ev.MatchID)
		return nil
	}

	room, err := e.rooms.GetRoom(m.RoomID)
	if err != nil {
		return err
	}

	if outcome.Final {
		if err := e.rooms.SetChampion(room.ID, ev.Winner); err != nil {
			return err
		}
		log.Info("Tournament complete", "roomCode", room.Code, "champion", ev.Winner)
		return nil
	}

	log.Info("Match complete, winner advanced", "matchID", ev.MatchID, "winner", ev.Winner, "nextMatchID", outcome.NextMatch.ID)
	if !outcome.NextReady {
		return nil
	}
	return e.startNextMatch(ctx, room, outcome.NextMatch)
}

// startNextMatch runs the side effects of a match filling up: the room
// advances to the match's stage, the room group learns the new pairings
// and a game is requested for the match.
func (e *Engine) startNextMatch(ctx context.Context, room *lobby.Room, next *tournament.Match) error {
	if err := e.rooms.AdvanceStage(room.ID, next.Stage); err != nil {
		return err
	}

	players, err := e.rooms.GetPlayers(room.ID)
	if err != nil {
		return err
	}
	byID := playersByID(players)

	stage, err := e.matches.GetMatchesByStage(room.ID, next.Stage)
	if err != nil {
		return err
	}
	var assignments []notify.MatchAssignment
	for _, m := range stage {
		if m.Status != tournament.StatusReady {
			continue
		}
		assignments = append(assignments, assignment(m, byID))
	}
	e.notifier.SyncMatch(room.Code, assignments)

	req := event.NewCreateGame(room.ID, next.ID, room.OwnerID, false, matchGamePlayers(next, byID))
	if err := e.producer.Push(ctx, queue.CreateGameQueue, req); err != nil {
		return fmt.Errorf("requesting game for match %s: %w", next.ID, err)
	}
	e.metrics.IncGamesRequested()

	log.Info("Next match ready, game requested", "matchID", next.ID, "stage", next.Stage)
	return nil
}

func playersByID(players []lobby.Player) map[string]lobby.Player {
	byID := make(map[string]lobby.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID
}

func assignment(m *tournament.Match, byID map[string]lobby.Player) notify.MatchAssignment {
	a := notify.MatchAssignment{MatchID: m.ID}
	for _, mp := range m.Players {
		a.Players = append(a.Players, notify.PlayerRef{
			ID:   mp.PlayerID,
			Name: byID[mp.PlayerID].Name,
		})
	}
	return a
}

func gamePlayers(players []lobby.Player) []event.GamePlayer {
	out := make([]event.GamePlayer, len(players))
	for i, p := range players {
		out[i] = event.GamePlayer{ID: p.ID, Name: p.Name, Color: p.ProfileColor}
	}
	return out
}

func matchGamePlayers(m *tournament.Match, byID map[string]lobby.Player) []event.GamePlayer {
	out := make([]event.GamePlayer, 0, len(m.Players))
	for _, mp := range m.Players {
		p := byID[mp.PlayerID]
		out = append(out, event.GamePlayer{ID: p.ID, Name: p.Name, Color: p.ProfileColor})
	}
	return out
}
