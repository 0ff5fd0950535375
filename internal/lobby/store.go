package lobby

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/openbracket/arena/internal/bracket"
)

// New creates a new RoomStore.
func New(db *sql.DB) RoomStore {
	return &store{db: db}
}

// newRoomCode derives a short human-shareable numeric code.
func newRoomCode() string {
	id := uuid.New()
	n := binary.BigEndian.Uint32(id[:4])
	return fmt.Sprintf("%08d", n%100000000)
}

// CreateRoom inserts a new room, generating its id and code. Code
// collisions are rare but possible, so the insert is retried with a
// fresh code a few times.
func (s *store) CreateRoom(room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	if room.Status == "" {
		room.Status = StatusRoomCreated
	}

	const query = `
		INSERT INTO rooms (id, code, name, room_type, status, max_players, player_count, stage, owner_id, champion_id, private, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for attempt := 0; attempt < 5; attempt++ {
		code := room.Code
		if code == "" {
			code = newRoomCode()
		}
		_, err := s.db.Exec(query,
			room.ID, code, room.Name, room.Type, room.Status,
			room.MaxPlayers, room.PlayerCount, room.Stage,
			room.OwnerID, room.ChampionID, room.Private,
			now.Unix(), now.Unix(),
		)
		if err == nil {
			room.Code = code
			log.Info("Created room", "roomID", room.ID, "code", room.Code, "type", room.Type)
			return nil
		}
		if room.Code == "" && strings.Contains(err.Error(), "UNIQUE") {
			continue
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return fmt.Errorf("failed to create room: could not allocate a unique code")
}

const roomColumns = `id, code, name, room_type, status, max_players, player_count, stage, owner_id, champion_id, private, created_at, updated_at`

func (s *store) scanRoom(scanner interface{ Scan(...any) error }) (*Room, error) {
	var room Room
	var createdAt, updatedAt int64
	err := scanner.Scan(
		&room.ID, &room.Code, &room.Name, &room.Type, &room.Status,
		&room.MaxPlayers, &room.PlayerCount, &room.Stage,
		&room.OwnerID, &room.ChampionID, &room.Private,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}
	room.CreatedAt = time.Unix(createdAt, 0)
	room.UpdatedAt = time.Unix(updatedAt, 0)
	return &room, nil
}

func (s *store) GetRoom(id string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	return s.scanRoom(row)
}

func (s *store) GetRoomByCode(code string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT `+roomColumns+` FROM rooms WHERE code = ?`, code)
	return s.scanRoom(row)
}

// DeleteRoom removes a room; players, matches and match players cascade.
func (s *store) DeleteRoom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AddPlayer seats a player. The guarded UPDATE below is the capacity
// invariant: it only increments player_count while it is strictly below
// max_players, so two concurrent joins can never overshoot.
func (s *store) AddPlayer(room *Room, player *Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE rooms SET player_count = player_count + 1, updated_at = ?
		WHERE id = ? AND player_count < max_players
	`, time.Now().Unix(), room.ID)
	if err != nil {
		return fmt.Errorf("failed to claim seat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(1) FROM rooms WHERE id = ?`, room.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check room: %w", err)
		}
		if exists == 0 {
			return ErrRoomNotFound
		}
		return ErrRoomFull
	}

	var seat int
	if err := tx.QueryRow(`SELECT player_count FROM rooms WHERE id = ?`, room.ID).Scan(&seat); err != nil {
		return fmt.Errorf("failed to read seat number: %w", err)
	}

	if player.ID == "" {
		player.ID = uuid.New().String()
	}
	player.RoomID = room.ID
	player.RoomCode = room.Code
	player.CreatedAt = time.Now()
	if room.Type == RoomTypeTournament {
		slot, err := nextFreeSlot(tx, room.ID, room.MaxPlayers)
		if err != nil {
			return err
		}
		player.BracketPosition = slot
		if player.BracketPosition%2 == 0 {
			player.ProfileColor = 1
		} else {
			player.ProfileColor = 2
		}
	} else if player.ProfileColor == 0 {
		color, err := nextFreeColor(tx, room.ID)
		if err != nil {
			return err
		}
		player.ProfileColor = color
	}

	_, err = tx.Exec(`
		INSERT INTO players (id, name, room_id, room_code, profile_color, profile_image_url, bracket_position, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, player.ID, player.Name, player.RoomID, player.RoomCode,
		player.ProfileColor, player.ProfileImageURL, player.BracketPosition, player.Score,
		player.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit join: %w", err)
	}

	room.PlayerCount = seat
	log.Info("Player joined room", "roomCode", room.Code, "playerID", player.ID, "seat", seat)
	return nil
}

// nextFreeSlot picks the bracket slot of the lowest seed whose slot is
// not currently occupied in the room. Join order is seed order for a
// fresh room; a seed vacated by a leave is handed out again before any
// later seed, so occupied positions stay distinct and form a
// permutation of 1..max once the room fills.
func nextFreeSlot(tx *sql.Tx, roomID string, maxPlayers int) (int, error) {
	rows, err := tx.Query(`SELECT bracket_position FROM players WHERE room_id = ?`, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to query bracket positions: %w", err)
	}
	defer rows.Close()

	taken := make(map[int]bool)
	for rows.Next() {
		var pos int
		if err := rows.Scan(&pos); err != nil {
			return 0, fmt.Errorf("failed to scan bracket position: %w", err)
		}
		taken[pos] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read bracket positions: %w", err)
	}

	for seed := 1; seed <= maxPlayers; seed++ {
		if slot := bracket.SlotForSeed(seed, maxPlayers); !taken[slot] {
			return slot, nil
		}
	}
	return 0, ErrRoomFull
}

// nextFreeColor picks the lowest palette color not yet used in the room.
func nextFreeColor(tx *sql.Tx, roomID string) (int, error) {
	rows, err := tx.Query(`SELECT profile_color FROM players WHERE room_id = ?`, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to query used colors: %w", err)
	}
	defer rows.Close()

	used := make(map[int]bool)
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			return 0, fmt.Errorf("failed to scan color: %w", err)
		}
		used[c] = true
	}
	for c := 1; c <= profileColorCount; c++ {
		if !used[c] {
			return c, nil
		}
	}
	return 1, nil
}

func (s *store) RemovePlayer(roomID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM players WHERE room_id = ? AND id = ?`, roomID, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlayerNotFound
	}

	_, err = tx.Exec(`
		UPDATE rooms SET player_count = player_count - 1, updated_at = ?
		WHERE id = ? AND player_count > 0
	`, time.Now().Unix(), roomID)
	if err != nil {
		return fmt.Errorf("failed to decrement player count: %w", err)
	}

	return tx.Commit()
}

const playerColumns = `id, name, room_id, room_code, profile_color, profile_image_url, bracket_position, score, created_at`

func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var p Player
	var createdAt int64
	err := scanner.Scan(
		&p.ID, &p.Name, &p.RoomID, &p.RoomCode,
		&p.ProfileColor, &p.ProfileImageURL, &p.BracketPosition, &p.Score,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	p.CreatedAt = time.Unix(createdAt, 0)
	return &p, nil
}

func (s *store) GetPlayer(roomID, playerID string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE room_id = ? AND id = ?`, roomID, playerID)
	return scanPlayer(row)
}

// GetPlayers returns a room's players ordered by bracket slot, then by
// join time for non-tournament rooms.
func (s *store) GetPlayers(roomID string) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+playerColumns+` FROM players
		WHERE room_id = ?
		ORDER BY bracket_position ASC, created_at ASC, id ASC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (s *store) UpdatePlayerScore(roomID, playerID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE players SET score = ? WHERE room_id = ? AND id = ?`, score, roomID, playerID)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (s *store) SetRoomOwner(roomID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE rooms SET owner_id = ?, updated_at = ? WHERE id = ?`, playerID, time.Now().Unix(), roomID)
	return err
}

func (s *store) SetRoomStatus(roomID string, status RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE rooms SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().Unix(), roomID)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AdvanceStage moves the room's bracket progress forward. Stages only
// ever increase; a stale write from a duplicate event is a no-op.
func (s *store) AdvanceStage(roomID string, stage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE rooms SET stage = ?, updated_at = ?
		WHERE id = ? AND stage < ?
	`, stage, time.Now().Unix(), roomID, stage)
	if err != nil {
		return fmt.Errorf("failed to advance stage: %w", err)
	}
	return nil
}

// SetChampion records the tournament winner and closes the room.
func (s *store) SetChampion(roomID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE rooms SET champion_id = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, playerID, StatusGameEnded, time.Now().Unix(), roomID)
	if err != nil {
		return fmt.Errorf("failed to set champion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
