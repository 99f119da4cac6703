package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/models"
)

// Result is a single knowledge base hit
type Result struct {
	Kind    models.EntityKind
	ID      string
	Name    string
	Snippet string
	Exact   bool // query equals the entity name
}

// DefaultLimit caps result sets for interactive callers
const DefaultLimit = 100

// Search performs a full-text search across locations and plot threads.
// An entity whose name equals the query is always returned first.
func Search(database *db.DB, query string) ([]Result, error) {
	return SearchKind(database, query, "", DefaultLimit)
}

// SearchKind restricts Search to one entity kind. An empty kind searches both.
func SearchKind(database *db.DB, query string, kind models.EntityKind, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	results, err := exactMatches(database, query, kind)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		seen[r.ID] = true
	}

	// FTS5 query syntax chokes on punctuation, so fall back to substring matching
	hasSpecialChars := strings.IndexFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
	}) >= 0

	var rows *sql.Rows
	if hasSpecialChars {
		rows, err = database.Query(`
			SELECT kind, id, name, raw_content FROM (
				SELECT 'location' AS kind, id, name, raw_content, name_key FROM locations
				UNION ALL
				SELECT 'plot-thread' AS kind, id, name, raw_content, name_key FROM plot_threads
			)
			WHERE (? = '' OR kind = ?)
			  AND (name LIKE '%' || ? || '%' OR raw_content LIKE '%' || ? || '%')
			ORDER BY name_key
			LIMIT ?
		`, string(kind), string(kind), query, query, limit)
	} else {
		rows, err = database.Query(`
			SELECT kind, entity_id, name, snippet(entities_fts, 3, '', '', '...', 32)
			FROM entities_fts
			WHERE entities_fts MATCH ?
			  AND (? = '' OR kind = ?)
			ORDER BY rank
			LIMIT ?
		`, ftsQuery(query), string(kind), string(kind), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r Result
		var k string
		if err := rows.Scan(&k, &r.ID, &r.Name, &r.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if seen[r.ID] {
			continue
		}
		r.Kind = models.EntityKind(k)
		if hasSpecialChars {
			r.Snippet = excerpt(r.Snippet, query, 64)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ftsQuery quotes each term so words like NOT or OR are matched literally
// instead of being read as FTS5 operators. Terms are still stemmed.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

func exactMatches(database *db.DB, query string, kind models.EntityKind) ([]Result, error) {
	var results []Result
	if kind == "" || kind == models.KindLocation {
		loc, err := database.FindLocationByName(query)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			results = append(results, Result{Kind: models.KindLocation, ID: loc.ID, Name: loc.Name, Snippet: excerpt(loc.Overview, "", 64), Exact: true})
		}
	}
	if kind == "" || kind == models.KindPlotThread {
		th, err := database.FindPlotThreadByName(query)
		if err != nil {
			return nil, err
		}
		if th != nil {
			results = append(results, Result{Kind: models.KindPlotThread, ID: th.ID, Name: th.Name, Snippet: excerpt(th.Summary, "", 64), Exact: true})
		}
	}
	return results, nil
}

// excerpt returns up to width runes of text centred on the first
// case-insensitive occurrence of term, collapsed to a single line.
func excerpt(text, term string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}

	start := 0
	if term != "" {
		if idx := strings.Index(strings.ToLower(text), strings.ToLower(term)); idx >= 0 && idx <= len(text) {
			start = len([]rune(text[:idx])) - width/4
		}
	}
	if start < 0 {
		start = 0
	}
	end := start + width
	if end > len(runes) {
		end = len(runes)
		start = max(0, end-width)
	}

	out := string(runes[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}
