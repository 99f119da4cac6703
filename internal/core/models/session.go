package models

import (
	"errors"
	"strings"
	"time"
)

// PhaseRecord is one stage of a processing session's pipeline
type PhaseRecord struct {
	Number           int    `json:"number"`
	Name             string `json:"name"`
	ResponsibleAgent string `json:"responsibleAgent"`
	Description      string `json:"description"`
	Prompt           string `json:"prompt,omitempty"` // Derived, recomputed on demand
	Response         string `json:"response"`
	Completed        bool   `json:"completed"`
}

// ProcessingSession is one transcript's unit of work through the pipeline
type ProcessingSession struct {
	ID                string
	Title             string
	Date              string // Calendar date, YYYY-MM-DD by convention
	Transcript        string
	Tags              []string
	CurrentPhaseIndex int // 1-based
	Phases            []PhaseRecord
	Created           time.Time
	Modified          time.Time
}

// Validate checks if the session has required fields
func (s *ProcessingSession) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(s.Transcript) == "" {
		return errors.New("transcript is required")
	}
	return nil
}

// Phase returns the record for a 1-based phase number, or nil if out of range
func (s *ProcessingSession) Phase(number int) *PhaseRecord {
	if number < 1 || number > len(s.Phases) {
		return nil
	}
	return &s.Phases[number-1]
}

// CurrentPhase returns the record at CurrentPhaseIndex
func (s *ProcessingSession) CurrentPhase() *PhaseRecord {
	return s.Phase(s.CurrentPhaseIndex)
}

// CompletedCount returns how many phases are marked completed
func (s *ProcessingSession) CompletedCount() int {
	n := 0
	for _, p := range s.Phases {
		if p.Completed {
			n++
		}
	}
	return n
}

// Ref returns the provenance reference recorded on entities built from this session
func (s *ProcessingSession) Ref() SessionRef {
	return SessionRef{ID: s.ID, Title: s.Title, Date: s.Date}
}
