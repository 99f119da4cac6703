package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neilberkman/chronicler/internal/core/models"
)

const sessionColumns = `id, title, date, transcript, tags, current_phase, phases, created, modified`

// SaveSession inserts or replaces a session by id and stamps Modified
func (db *DB) SaveSession(s *models.ProcessingSession) error {
	now := time.Now()
	if s.Created.IsZero() {
		s.Created = now
	}
	s.Modified = now

	tags, err := json.Marshal(nonNil(s.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	// Prompts are derived from session state and never stored
	phases := make([]models.PhaseRecord, len(s.Phases))
	copy(phases, s.Phases)
	for i := range phases {
		phases[i].Prompt = ""
	}
	phasesJSON, err := json.Marshal(phases)
	if err != nil {
		return fmt.Errorf("encode phases: %w", err)
	}

	complete := len(s.Phases) > 0 && s.CompletedCount() == len(s.Phases)

	_, err = db.conn.Exec(`
		INSERT INTO sessions (id, title, date, transcript, tags, current_phase, phases, complete, created, modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			transcript = excluded.transcript,
			tags = excluded.tags,
			current_phase = excluded.current_phase,
			phases = excluded.phases,
			complete = excluded.complete,
			modified = excluded.modified
	`, s.ID, s.Title, s.Date, s.Transcript, string(tags), s.CurrentPhaseIndex, string(phasesJSON),
		complete, formatTimestamp(s.Created), formatTimestamp(s.Modified))
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// GetSession returns a session by id, or nil if it does not exist
func (db *DB) GetSession(id string) (*models.ProcessingSession, error) {
	s, err := scanSession(db.conn.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return s, nil
}

// ListSessions returns all sessions, newest session date first
func (db *DB) ListSessions() ([]*models.ProcessingSession, error) {
	rows, err := db.conn.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY date DESC, created DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.ProcessingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session. It reports whether a row was deleted.
func (db *DB) DeleteSession(id string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	return affected(res)
}

func scanSession(row scanner) (*models.ProcessingSession, error) {
	var s models.ProcessingSession
	var tags, phases, created, modified string
	err := row.Scan(&s.ID, &s.Title, &s.Date, &s.Transcript, &tags, &s.CurrentPhaseIndex, &phases, &created, &modified)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for session %s: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(phases), &s.Phases); err != nil {
		return nil, fmt.Errorf("decode phases for session %s: %w", s.ID, err)
	}
	s.Created = parseTimestamp(created)
	s.Modified = parseTimestamp(modified)
	return &s, nil
}

// nonNil keeps empty lists encoded as [] rather than null
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
