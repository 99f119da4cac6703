package models

import (
	"strings"
	"time"
)

// BlockDelimiter separates raw Markdown blocks contributed by different sessions
const BlockDelimiter = "\n\n---\n\n"

// EntityKind identifies which collection an entity belongs to
type EntityKind string

const (
	KindLocation   EntityKind = "location"
	KindPlotThread EntityKind = "plot-thread"
)

// Plot thread status and priority vocabulary. Not enforced.
const (
	StatusActive   = "Active"
	StatusResolved = "Resolved"
	StatusDormant  = "Dormant"

	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// SessionRef records which processing session contributed to an entity
type SessionRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Provenance is the append-only list of contributing sessions
type Provenance []SessionRef

// Contains reports whether a session id is already recorded
func (p Provenance) Contains(sessionID string) bool {
	for _, ref := range p {
		if ref.ID == sessionID {
			return true
		}
	}
	return false
}

// Location is a place in the knowledge base
type Location struct {
	ID          string
	Name        string
	Type        string
	Region      string
	Overview    string
	NPCs        string
	Connections []string // Entity names, resolved at read time
	Sessions    Provenance
	RawContent  string
	Modified    time.Time
}

// PlotThread is a storyline tracked across sessions
type PlotThread struct {
	ID               string
	Name             string
	Status           string
	Priority         string
	Summary          string
	Hooks            string
	RelatedLocations []string
	Sessions         Provenance
	RawContent       string
	Modified         time.Time
}

// NameKey is the case-insensitive merge key for an entity name
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
