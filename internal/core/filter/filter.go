// Package filter parses session list queries such as
// "tag:npc after:2-weeks-ago dragon" and applies them to sessions.
package filter

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/tags"
)

// SessionDateLayout is the layout session dates are compared in
const SessionDateLayout = "2006-01-02"

// Status values accepted by the status: filter
const (
	StatusComplete   = "complete"
	StatusInProgress = "pending"
)

// Filters represents parsed filters from a query
type Filters struct {
	Text      string    // Free text matched against title and transcript
	Tags      []string  // All must be present
	Status    string    // complete or pending, empty for any
	After     time.Time // Session date on or after this day
	Before    time.Time // Session date before this day
	HasAfter  bool
	HasBefore bool
}

// Empty reports whether the filters match everything
func (f Filters) Empty() bool {
	return f.Text == "" && len(f.Tags) == 0 && f.Status == "" && !f.HasAfter && !f.HasBefore
}

// ParseQuery extracts filters from a query string.
// Supports:
//   - tag:<name> (repeatable, or comma separated)
//   - status:complete, status:pending
//   - date:<when> (same as after:)
//   - after:yesterday, after:2-weeks-ago, before:2024-11-01
//
// Unparsable dates are dropped and everything else is free text.
func ParseQuery(query string) Filters {
	return ParseQueryAt(query, time.Now())
}

// ParseQueryAt is ParseQuery with relative dates resolved against now
func ParseQueryAt(query string, now time.Time) Filters {
	filters := Filters{}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	var textParts []string
	var tagParts []string
	for _, token := range strings.Fields(query) {
		key, value, ok := strings.Cut(token, ":")
		if !ok || value == "" {
			textParts = append(textParts, token)
			continue
		}

		switch strings.ToLower(key) {
		case "tag", "tags":
			tagParts = append(tagParts, value)
		case "status":
			switch strings.ToLower(value) {
			case "complete", "completed", "done":
				filters.Status = StatusComplete
			case "pending", "open", "incomplete":
				filters.Status = StatusInProgress
			}
		case "date", "after":
			if parsed, ok := parseDate(w, value, now); ok {
				filters.After = parsed
				filters.HasAfter = true
			}
		case "before":
			if parsed, ok := parseDate(w, value, now); ok {
				filters.Before = parsed
				filters.HasBefore = true
			}
		default:
			textParts = append(textParts, token)
		}
	}

	filters.Text = strings.Join(textParts, " ")
	if len(tagParts) > 0 {
		filters.Tags = tags.Normalize(strings.Join(tagParts, ","))
	}
	return filters
}

// parseDate tries fixed layouts first, then natural language.
// The result is truncated to the start of its day.
func parseDate(w *when.Parser, value string, now time.Time) (time.Time, bool) {
	formats := []string{
		SessionDateLayout,
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return startOfDay(t), true
		}
	}

	result, err := w.Parse(strings.ReplaceAll(value, "-", " "), now)
	if err == nil && result != nil {
		return startOfDay(result.Time), true
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Match reports whether a session satisfies every filter
func (f Filters) Match(s *models.ProcessingSession) bool {
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(s.Title), needle) &&
			!strings.Contains(strings.ToLower(s.Transcript), needle) {
			return false
		}
	}

	if len(f.Tags) > 0 && !tags.HasAll(s.Tags, f.Tags) {
		return false
	}

	switch f.Status {
	case StatusComplete:
		if s.CompletedCount() != len(s.Phases) {
			return false
		}
	case StatusInProgress:
		if s.CompletedCount() == len(s.Phases) {
			return false
		}
	}

	if f.HasAfter || f.HasBefore {
		date, err := time.Parse(SessionDateLayout, strings.TrimSpace(s.Date))
		if err != nil {
			return false
		}
		if f.HasAfter && date.Before(f.After) {
			return false
		}
		if f.HasBefore && !date.Before(f.Before) {
			return false
		}
	}

	return true
}

// Apply returns the sessions matching f, preserving order
func Apply(sessions []*models.ProcessingSession, f Filters) []*models.ProcessingSession {
	if f.Empty() {
		return sessions
	}
	var out []*models.ProcessingSession
	for _, s := range sessions {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}
