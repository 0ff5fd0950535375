package tournament

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new MatchStore.
func New(db *sql.DB) MatchStore {
	return &store{db: db}
}

// CreateMatches persists a built bracket. The bracket builder guarantees
// the tree shape; this only guards the one-bracket-per-room rule.
func (s *store) CreateMatches(roomID string, matches []*Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow(`SELECT COUNT(1) FROM matches WHERE room_id = ?`, roomID).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count matches: %w", err)
	}
	if existing > 0 {
		return ErrBracketExists
	}

	now := time.Now().Unix()
	matchStmt, err := tx.Prepare(`
		INSERT INTO matches (id, room_id, stage, position, status, game_id, winner_id, next_match_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer matchStmt.Close()

	playerStmt, err := tx.Prepare(`
		INSERT INTO match_players (match_id, player_id, rank, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match player insert: %w", err)
	}
	defer playerStmt.Close()

	for _, m := range matches {
		_, err := matchStmt.Exec(m.ID, m.RoomID, m.Stage, m.Position, m.Status, m.GameID, m.WinnerID, m.NextMatchID, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
		}
		for _, mp := range m.Players {
			if _, err := playerStmt.Exec(m.ID, mp.PlayerID, mp.Rank, now); err != nil {
				return fmt.Errorf("failed to insert match player: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bracket: %w", err)
	}
	log.Info("Bracket persisted", "roomID", roomID, "matches", len(matches))
	return nil
}

const matchColumns = `id, room_id, stage, position, status, game_id, winner_id, next_match_id, created_at, updated_at`

type rowScanner interface{ Scan(...any) error }

func scanMatch(scanner rowScanner) (*Match, error) {
	var m Match
	var createdAt, updatedAt int64
	err := scanner.Scan(
		&m.ID, &m.RoomID, &m.Stage, &m.Position, &m.Status,
		&m.GameID, &m.WinnerID, &m.NextMatchID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	m.UpdatedAt = time.Unix(updatedAt, 0)
	return &m, nil
}

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func loadPlayers(q querier, m *Match) error {
	rows, err := q.Query(`
		SELECT match_id, player_id, rank FROM match_players
		WHERE match_id = ? ORDER BY created_at ASC, player_id ASC
	`, m.ID)
	if err != nil {
		return fmt.Errorf("failed to query match players: %w", err)
	}
	defer rows.Close()

	m.Players = nil
	for rows.Next() {
		var mp MatchPlayer
		if err := rows.Scan(&mp.MatchID, &mp.PlayerID, &mp.Rank); err != nil {
			return fmt.Errorf("failed to scan match player: %w", err)
		}
		m.Players = append(m.Players, mp)
	}
	return rows.Err()
}

func getMatch(q querier, id string) (*Match, error) {
	m, err := scanMatch(q.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := loadPlayers(q, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *store) GetMatch(id string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMatch(s.db, id)
}

func (s *store) GetMatchesByStage(roomID string, stage int) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+matchColumns+` FROM matches
		WHERE room_id = ? AND stage = ?
		ORDER BY position ASC
	`, roomID, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range matches {
		if err := loadPlayers(s.db, m); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (s *store) CountMatches(roomID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM matches WHERE room_id = ?`, roomID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}

func (s *store) SetGameID(matchID, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE matches SET game_id = ?, updated_at = ? WHERE id = ?`, gameID, time.Now().Unix(), matchID)
	if err != nil {
		return fmt.Errorf("failed to set game id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

// StartMatch flips READY -> IN_PROGRESS. The guarded UPDATE makes the
// transition idempotent and rejects out-of-order starts.
func (s *store) StartMatch(matchID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE matches SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, StatusInProgress, time.Now().Unix(), matchID, StatusReady)
	if err != nil {
		return false, fmt.Errorf("failed to start match: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CompleteMatch is the heart of match progression. Everything below runs
// in one transaction so a reader can never observe ranks without the
// winner, or an advanced player without the completed source match.
func (s *store) CompleteMatch(matchID, winnerID string, ranks map[string]int) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := getMatch(tx, matchID)
	if err != nil {
		return nil, err
	}

	if m.Status == StatusComplete {
		return &Outcome{Match: m, AlreadyComplete: true}, nil
	}
	if !m.HasPlayer(winnerID) {
		return nil, fmt.Errorf("%w: match %s, winner %s", ErrWinnerNotInMatch, matchID, winnerID)
	}

	now := time.Now().Unix()
	for playerID, rank := range ranks {
		if !m.HasPlayer(playerID) {
			log.Warn("Rank reported for player outside the match, skipping", "matchID", matchID, "playerID", playerID)
			continue
		}
		if _, err := tx.Exec(`
			UPDATE match_players SET rank = ? WHERE match_id = ? AND player_id = ?
		`, rank, matchID, playerID); err != nil {
			return nil, fmt.Errorf("failed to record rank: %w", err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE matches SET status = ?, winner_id = ?, updated_at = ? WHERE id = ?
	`, StatusComplete, winnerID, now, matchID); err != nil {
		return nil, fmt.Errorf("failed to complete match: %w", err)
	}

	outcome := &Outcome{}

	if m.NextMatchID == nil {
		outcome.Final = true
	} else {
		next, err := getMatch(tx, *m.NextMatchID)
		if err != nil {
			return nil, fmt.Errorf("next match missing: %w", err)
		}
		if len(next.Players) >= 2 {
			return nil, fmt.Errorf("%w: match %s", ErrSlotsTaken, next.ID)
		}
		if _, err := tx.Exec(`
			INSERT INTO match_players (match_id, player_id, rank, created_at)
			VALUES (?, ?, 0, ?)
		`, next.ID, winnerID, now); err != nil {
			return nil, fmt.Errorf("failed to advance winner: %w", err)
		}

		if len(next.Players) == 1 && next.Status == StatusPending {
			if _, err := tx.Exec(`
				UPDATE matches SET status = ?, updated_at = ? WHERE id = ?
			`, StatusReady, now, next.ID); err != nil {
				return nil, fmt.Errorf("failed to ready next match: %w", err)
			}
			outcome.NextReady = true
		}

		next, err = getMatch(tx, next.ID)
		if err != nil {
			return nil, err
		}
		outcome.NextMatch = next
	}

	m, err = getMatch(tx, matchID)
	if err != nil {
		return nil, err
	}
	outcome.Match = m

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match completion: %w", err)
	}
	return outcome, nil
}
