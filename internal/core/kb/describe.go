package kb

import (
	"fmt"
	"strings"

	"github.com/neilberkman/chronicler/internal/core/models"
)

// Entry is a looked-up entity of either kind
type Entry struct {
	Kind       models.EntityKind
	Location   *models.Location
	PlotThread *models.PlotThread
}

// Name returns the entity's display name
func (e *Entry) Name() string {
	if e.Location != nil {
		return e.Location.Name
	}
	return e.PlotThread.Name
}

// Sessions returns the entity's provenance
func (e *Entry) Sessions() models.Provenance {
	if e.Location != nil {
		return e.Location.Sessions
	}
	return e.PlotThread.Sessions
}

// Lookup finds an entity by case-insensitive name, locations first.
// It returns nil when neither kind matches.
func Lookup(store Store, name string) (*Entry, error) {
	loc, err := store.FindLocationByName(name)
	if err != nil {
		return nil, err
	}
	if loc != nil {
		return &Entry{Kind: models.KindLocation, Location: loc}, nil
	}
	th, err := store.FindPlotThreadByName(name)
	if err != nil {
		return nil, err
	}
	if th != nil {
		return &Entry{Kind: models.KindPlotThread, PlotThread: th}, nil
	}
	return nil, nil
}

// Describe renders an entry as Markdown: metadata, outgoing links marked
// when dangling, the sessions that contributed, then the raw pages.
func Describe(store Store, e *Entry) (string, error) {
	var b strings.Builder
	var links []string

	fmt.Fprintf(&b, "# %s\n\n", e.Name())
	switch e.Kind {
	case models.KindLocation:
		loc := e.Location
		writeField(&b, "Kind", "Location")
		writeField(&b, "Type", loc.Type)
		writeField(&b, "Region", loc.Region)
		writeField(&b, "Overview", loc.Overview)
		writeField(&b, "NPCs", loc.NPCs)
		links = loc.Connections
	case models.KindPlotThread:
		th := e.PlotThread
		writeField(&b, "Kind", "Plot thread")
		writeField(&b, "Status", th.Status)
		writeField(&b, "Priority", th.Priority)
		writeField(&b, "Summary", th.Summary)
		writeField(&b, "Hooks", th.Hooks)
		links = th.RelatedLocations
	}

	if len(links) > 0 {
		resolved, err := Resolve(store, links)
		if err != nil {
			return "", err
		}
		b.WriteString("\n## Links\n")
		for _, l := range resolved {
			if l.Found {
				fmt.Fprintf(&b, "- [[%s]] (%s)\n", l.Name, l.Kind)
			} else {
				fmt.Fprintf(&b, "- [[%s]] (missing)\n", l.Name)
			}
		}
	}

	if sessions := e.Sessions(); len(sessions) > 0 {
		b.WriteString("\n## Sessions\n")
		for _, ref := range sessions {
			if ref.Date != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", ref.Title, ref.Date)
			} else {
				fmt.Fprintf(&b, "- %s\n", ref.Title)
			}
		}
	}

	raw := e.rawContent()
	if strings.TrimSpace(raw) != "" {
		b.WriteString("\n## Pages\n\n")
		b.WriteString(strings.TrimSpace(raw))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (e *Entry) rawContent() string {
	if e.Location != nil {
		return e.Location.RawContent
	}
	return e.PlotThread.RawContent
}

func writeField(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if strings.Contains(value, "\n") {
		fmt.Fprintf(b, "**%s**:\n%s\n", label, value)
		return
	}
	fmt.Fprintf(b, "**%s**: %s\n", label, value)
}
