package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neilberkman/chronicler/internal/core/models"
)

const locationColumns = `id, name, type, region, overview, npcs, connections, sessions, raw_content, modified`

// SaveLocation inserts or replaces a location by id. A different location
// with the same case-insensitive name violates the name_key constraint.
func (db *DB) SaveLocation(loc *models.Location) error {
	if loc.ID == "" {
		loc.ID = models.NewID()
	}
	loc.Modified = time.Now()

	connections, err := json.Marshal(nonNil(loc.Connections))
	if err != nil {
		return fmt.Errorf("encode connections: %w", err)
	}
	sessions, err := json.Marshal(nonNil(loc.Sessions))
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO locations (id, name, name_key, type, region, overview, npcs, connections, sessions, raw_content, modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			name_key = excluded.name_key,
			type = excluded.type,
			region = excluded.region,
			overview = excluded.overview,
			npcs = excluded.npcs,
			connections = excluded.connections,
			sessions = excluded.sessions,
			raw_content = excluded.raw_content,
			modified = excluded.modified
	`, loc.ID, loc.Name, models.NameKey(loc.Name), loc.Type, loc.Region, loc.Overview, loc.NPCs,
		string(connections), string(sessions), loc.RawContent, formatTimestamp(loc.Modified))
	if err != nil {
		return fmt.Errorf("save location %q: %w", loc.Name, err)
	}
	return nil
}

// GetLocation returns a location by id, or nil if it does not exist
func (db *DB) GetLocation(id string) (*models.Location, error) {
	loc, err := scanLocation(db.conn.QueryRow(`SELECT `+locationColumns+` FROM locations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location %s: %w", id, err)
	}
	return loc, nil
}

// FindLocationByName does a case-insensitive exact name lookup.
// It returns nil when nothing matches.
func (db *DB) FindLocationByName(name string) (*models.Location, error) {
	loc, err := scanLocation(db.conn.QueryRow(`SELECT `+locationColumns+` FROM locations WHERE name_key = ?`, models.NameKey(name)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location %q: %w", name, err)
	}
	return loc, nil
}

// ListLocations returns all locations ordered by name
func (db *DB) ListLocations() ([]*models.Location, error) {
	rows, err := db.conn.Query(`SELECT ` + locationColumns + ` FROM locations ORDER BY name_key`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locs []*models.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

// DeleteLocation removes a location. It reports whether a row was deleted.
func (db *DB) DeleteLocation(id string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete location %s: %w", id, err)
	}
	return affected(res)
}

func scanLocation(row scanner) (*models.Location, error) {
	var loc models.Location
	var connections, sessions, modified string
	err := row.Scan(&loc.ID, &loc.Name, &loc.Type, &loc.Region, &loc.Overview, &loc.NPCs,
		&connections, &sessions, &loc.RawContent, &modified)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(connections), &loc.Connections); err != nil {
		return nil, fmt.Errorf("decode connections for %q: %w", loc.Name, err)
	}
	if err := json.Unmarshal([]byte(sessions), &loc.Sessions); err != nil {
		return nil, fmt.Errorf("decode sessions for %q: %w", loc.Name, err)
	}
	loc.Modified = parseTimestamp(modified)
	return &loc, nil
}
