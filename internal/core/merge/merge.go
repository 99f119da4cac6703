// Package merge reconciles freshly parsed entities with the knowledge base.
//
// Entities are matched by case-insensitive exact name. A repeat encounter
// appends provenance and raw Markdown; plot thread status is overwritten by
// the latest value. Location metadata is kept from the first encounter.
package merge

import (
	"fmt"

	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/wiki"
)

// LocationStore is the storage surface the location merge needs.
// FindLocationByName returns nil, nil when nothing matches.
type LocationStore interface {
	FindLocationByName(name string) (*models.Location, error)
	SaveLocation(loc *models.Location) error
}

// PlotThreadStore is the storage surface the plot thread merge needs
type PlotThreadStore interface {
	FindPlotThreadByName(name string) (*models.PlotThread, error)
	SavePlotThread(thread *models.PlotThread) error
}

// Store covers both entity collections
type Store interface {
	LocationStore
	PlotThreadStore
}

// Counts reports what happened to one kind of entity
type Counts struct {
	Created   int
	Updated   int
	Unchanged int // already carried this session's provenance
}

// Result reports the outcome of merging one document
type Result struct {
	Locations   Counts
	PlotThreads Counts
}

// Document parses a final-phase document and merges both entity kinds
func Document(store Store, doc string, ref models.SessionRef) (*Result, error) {
	locs, err := Locations(store, wiki.ParseLocations(doc, ref))
	if err != nil {
		return nil, err
	}
	threads, err := PlotThreads(store, wiki.ParsePlotThreads(doc, ref))
	if err != nil {
		return nil, err
	}
	return &Result{Locations: locs, PlotThreads: threads}, nil
}

// Locations merges parsed locations in order
func Locations(store LocationStore, parsed []models.Location) (Counts, error) {
	var c Counts
	for i := range parsed {
		loc := parsed[i]

		existing, err := store.FindLocationByName(loc.Name)
		if err != nil {
			return c, fmt.Errorf("find location %q: %w", loc.Name, err)
		}

		if existing == nil {
			if loc.ID == "" {
				loc.ID = models.NewID()
			}
			if err := store.SaveLocation(&loc); err != nil {
				return c, fmt.Errorf("save location %q: %w", loc.Name, err)
			}
			c.Created++
			continue
		}

		if !appendProvenance(&existing.Sessions, &existing.RawContent, loc.Sessions, loc.RawContent) {
			c.Unchanged++
			continue
		}
		if err := store.SaveLocation(existing); err != nil {
			return c, fmt.Errorf("save location %q: %w", existing.Name, err)
		}
		c.Updated++
	}
	return c, nil
}

// PlotThreads merges parsed plot threads in order
func PlotThreads(store PlotThreadStore, parsed []models.PlotThread) (Counts, error) {
	var c Counts
	for i := range parsed {
		thread := parsed[i]

		existing, err := store.FindPlotThreadByName(thread.Name)
		if err != nil {
			return c, fmt.Errorf("find plot thread %q: %w", thread.Name, err)
		}

		if existing == nil {
			if thread.ID == "" {
				thread.ID = models.NewID()
			}
			if err := store.SavePlotThread(&thread); err != nil {
				return c, fmt.Errorf("save plot thread %q: %w", thread.Name, err)
			}
			c.Created++
			continue
		}

		if !appendProvenance(&existing.Sessions, &existing.RawContent, thread.Sessions, thread.RawContent) {
			c.Unchanged++
			continue
		}
		// Status is current state, so the latest session wins
		existing.Status = thread.Status
		if err := store.SavePlotThread(existing); err != nil {
			return c, fmt.Errorf("save plot thread %q: %w", existing.Name, err)
		}
		c.Updated++
	}
	return c, nil
}

// appendProvenance adds session refs not yet recorded and, if any were new,
// appends the raw block. It reports whether anything changed.
func appendProvenance(sessions *models.Provenance, raw *string, refs models.Provenance, content string) bool {
	changed := false
	for _, ref := range refs {
		if sessions.Contains(ref.ID) {
			continue
		}
		*sessions = append(*sessions, ref)
		changed = true
	}
	if !changed {
		return false
	}

	switch {
	case content == "":
	case *raw == "":
		*raw = content
	default:
		*raw += models.BlockDelimiter + content
	}
	return true
}
