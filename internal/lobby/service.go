package lobby

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openbracket/arena/internal/notify"
)

// Service wraps the room store with the lobby rules: who may join, when
// a room locks, and which groups get told about it.
type Service struct {
	store    RoomStore
	notifier notify.Notifier
}

// NewService creates a lobby service.
func NewService(store RoomStore, notifier notify.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// CreateRoomParams are the caller-supplied fields of a new room.
type CreateRoomParams struct {
	Name       string
	Type       RoomType
	MaxPlayers int
	Private    bool
	OwnerName  string
	OwnerImage string
}

// CreateRoom creates a room and seats its owner as the first player.
// Single-player rooms also get a bot opponent, and their capacity grows
// by one to hold it.
func (s *Service) CreateRoom(params CreateRoomParams) (*Room, *Player, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, nil, fmt.Errorf("room name is mandatory")
	}
	if !ValidRoomSize(params.Type, params.MaxPlayers) {
		return nil, nil, fmt.Errorf("%w: %s with %d players", ErrInvalidSize, params.Type, params.MaxPlayers)
	}

	room := &Room{
		Name:       params.Name,
		Type:       params.Type,
		MaxPlayers: params.MaxPlayers,
		Private:    params.Private,
		Status:     StatusRoomCreated,
	}
	if params.Type == RoomTypeSinglePlayer {
		room.MaxPlayers = params.MaxPlayers + 1
	}
	if err := s.store.CreateRoom(room); err != nil {
		return nil, nil, err
	}

	owner := &Player{Name: params.OwnerName, ProfileImageURL: params.OwnerImage}
	if err := s.store.AddPlayer(room, owner); err != nil {
		return nil, nil, fmt.Errorf("failed to seat room owner: %w", err)
	}
	if err := s.store.SetRoomOwner(room.ID, owner.ID); err != nil {
		return nil, nil, err
	}
	room.OwnerID = owner.ID

	if room.Type == RoomTypeSinglePlayer {
		bot := &Player{ID: "bot-" + room.ID, Name: "Bot", ProfileColor: 2}
		if err := s.store.AddPlayer(room, bot); err != nil {
			return nil, nil, fmt.Errorf("failed to seat bot: %w", err)
		}
	}

	return room, owner, nil
}

// JoinRoom seats a new player. The capacity race between concurrent
// joins is settled inside the store; the loser gets ErrRoomFull.
func (s *Service) JoinRoom(roomCode, playerName, imageURL string) (*Room, *Player, error) {
	room, err := s.store.GetRoomByCode(roomCode)
	if err != nil {
		return nil, nil, err
	}
	if !room.Status.Joinable() {
		return nil, nil, ErrRoomLocked
	}

	player := &Player{Name: playerName, ProfileImageURL: imageURL}
	if err := s.store.AddPlayer(room, player); err != nil {
		return nil, nil, err
	}

	status := StatusWaitingPlayers
	if room.PlayerCount == room.MaxPlayers {
		status = StatusReadyForStart
	}
	if err := s.store.SetRoomStatus(room.ID, status); err != nil {
		log.Error("Failed to update room status after join", "roomCode", roomCode, "error", err)
	} else {
		room.Status = status
	}

	s.notifier.PlayerListUpdate(roomCode, "")
	return room, player, nil
}

// LeaveRoom removes a player. An emptied room is deleted outright.
func (s *Service) LeaveRoom(roomCode, playerID string) error {
	room, err := s.store.GetRoomByCode(roomCode)
	if err != nil {
		return err
	}
	if err := s.store.RemovePlayer(room.ID, playerID); err != nil {
		return err
	}

	remaining := room.PlayerCount - 1
	if remaining <= 0 {
		log.Info("Room emptied, deleting", "roomCode", roomCode)
		s.notifier.RoomDeleted(roomCode)
		return s.store.DeleteRoom(room.ID)
	}

	if room.Status == StatusReadyForStart {
		if err := s.store.SetRoomStatus(room.ID, StatusWaitingPlayers); err != nil {
			log.Error("Failed to reopen room after leave", "roomCode", roomCode, "error", err)
		}
	}
	s.notifier.PlayerListUpdate(roomCode, playerID)
	return nil
}

// DeleteRoom tears a room down on the owner's request. Matches and
// players cascade; late queue events for its matches become unknown-match
// no-ops at the worker.
func (s *Service) DeleteRoom(roomCode, requesterID string) error {
	room, err := s.store.GetRoomByCode(roomCode)
	if err != nil {
		return err
	}
	if room.OwnerID != requesterID {
		return ErrNotOwner
	}
	s.notifier.RoomDeleted(roomCode)
	return s.store.DeleteRoom(room.ID)
}

// GetRoom returns a room and its players.
func (s *Service) GetRoom(roomCode string) (*Room, []Player, error) {
	room, err := s.store.GetRoomByCode(roomCode)
	if err != nil {
		return nil, nil, err
	}
	players, err := s.store.GetPlayers(room.ID)
	if err != nil {
		return nil, nil, err
	}
	return room, players, nil
}

// UpdateScore records a player's in-game score and pings the match group.
func (s *Service) UpdateScore(roomCode, matchID, playerID string, score int) error {
	room, err := s.store.GetRoomByCode(roomCode)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePlayerScore(room.ID, playerID, score); err != nil {
		return err
	}
	s.notifier.ScoreUpdate(matchID)
	return nil
}
