package db

import (
	"database/sql"
	"time"
)

// Stats represents database statistics
type Stats struct {
	TotalSessions     int
	CompletedSessions int
	Locations         int
	PlotThreads       int
	ActiveThreads     int
	OldestSession     time.Time
	NewestSession     time.Time
	BusiestRegion     string
	BusiestRegionSize int
}

// GetStats returns counts across sessions and the knowledge base
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM sessions", &stats.TotalSessions},
		{"SELECT COUNT(*) FROM sessions WHERE complete = 1", &stats.CompletedSessions},
		{"SELECT COUNT(*) FROM locations", &stats.Locations},
		{"SELECT COUNT(*) FROM plot_threads", &stats.PlotThreads},
		{"SELECT COUNT(*) FROM plot_threads WHERE LOWER(status) = 'active'", &stats.ActiveThreads},
	}
	for _, c := range counts {
		if err := db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	// Date range uses creation time; session dates are free text
	if stats.TotalSessions > 0 {
		var oldest, newest sql.NullString
		err := db.QueryRow("SELECT MIN(created), MAX(created) FROM sessions").Scan(&oldest, &newest)
		if err != nil {
			return nil, err
		}
		if oldest.Valid {
			stats.OldestSession = parseTimestamp(oldest.String)
		}
		if newest.Valid {
			stats.NewestSession = parseTimestamp(newest.String)
		}
	}

	var region sql.NullString
	var size int
	err := db.QueryRow(`
		SELECT region, COUNT(*) as count
		FROM locations
		WHERE region != ''
		GROUP BY LOWER(region)
		ORDER BY count DESC
		LIMIT 1
	`).Scan(&region, &size)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if region.Valid {
		stats.BusiestRegion = region.String
		stats.BusiestRegionSize = size
	}

	return stats, nil
}
