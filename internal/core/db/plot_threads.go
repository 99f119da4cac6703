package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neilberkman/chronicler/internal/core/models"
)

const threadColumns = `id, name, status, priority, summary, hooks, related_locations, sessions, raw_content, modified`

// SavePlotThread inserts or replaces a plot thread by id
func (db *DB) SavePlotThread(th *models.PlotThread) error {
	if th.ID == "" {
		th.ID = models.NewID()
	}
	th.Modified = time.Now()

	related, err := json.Marshal(nonNil(th.RelatedLocations))
	if err != nil {
		return fmt.Errorf("encode related locations: %w", err)
	}
	sessions, err := json.Marshal(nonNil(th.Sessions))
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO plot_threads (id, name, name_key, status, priority, summary, hooks, related_locations, sessions, raw_content, modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			name_key = excluded.name_key,
			status = excluded.status,
			priority = excluded.priority,
			summary = excluded.summary,
			hooks = excluded.hooks,
			related_locations = excluded.related_locations,
			sessions = excluded.sessions,
			raw_content = excluded.raw_content,
			modified = excluded.modified
	`, th.ID, th.Name, models.NameKey(th.Name), th.Status, th.Priority, th.Summary, th.Hooks,
		string(related), string(sessions), th.RawContent, formatTimestamp(th.Modified))
	if err != nil {
		return fmt.Errorf("save plot thread %q: %w", th.Name, err)
	}
	return nil
}

// GetPlotThread returns a plot thread by id, or nil if it does not exist
func (db *DB) GetPlotThread(id string) (*models.PlotThread, error) {
	th, err := scanPlotThread(db.conn.QueryRow(`SELECT `+threadColumns+` FROM plot_threads WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plot thread %s: %w", id, err)
	}
	return th, nil
}

// FindPlotThreadByName does a case-insensitive exact name lookup
func (db *DB) FindPlotThreadByName(name string) (*models.PlotThread, error) {
	th, err := scanPlotThread(db.conn.QueryRow(`SELECT `+threadColumns+` FROM plot_threads WHERE name_key = ?`, models.NameKey(name)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find plot thread %q: %w", name, err)
	}
	return th, nil
}

// ListPlotThreads returns all plot threads ordered by name
func (db *DB) ListPlotThreads() ([]*models.PlotThread, error) {
	rows, err := db.conn.Query(`SELECT ` + threadColumns + ` FROM plot_threads ORDER BY name_key`)
	if err != nil {
		return nil, fmt.Errorf("list plot threads: %w", err)
	}
	defer rows.Close()

	var threads []*models.PlotThread
	for rows.Next() {
		th, err := scanPlotThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, th)
	}
	return threads, rows.Err()
}

// DeletePlotThread removes a plot thread. It reports whether a row was deleted.
func (db *DB) DeletePlotThread(id string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM plot_threads WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete plot thread %s: %w", id, err)
	}
	return affected(res)
}

func scanPlotThread(row scanner) (*models.PlotThread, error) {
	var th models.PlotThread
	var related, sessions, modified string
	err := row.Scan(&th.ID, &th.Name, &th.Status, &th.Priority, &th.Summary, &th.Hooks,
		&related, &sessions, &th.RawContent, &modified)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(related), &th.RelatedLocations); err != nil {
		return nil, fmt.Errorf("decode related locations for %q: %w", th.Name, err)
	}
	if err := json.Unmarshal([]byte(sessions), &th.Sessions); err != nil {
		return nil, fmt.Errorf("decode sessions for %q: %w", th.Name, err)
	}
	th.Modified = parseTimestamp(modified)
	return &th, nil
}
