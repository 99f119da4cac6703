package models

import (
	"regexp"
	"testing"
)

func TestSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		session ProcessingSession
		wantErr bool
	}{
		{
			name: "valid session",
			session: ProcessingSession{
				Title:      "Session 12: The Rusty Dragon",
				Date:       "2025-03-14",
				Transcript: "The party arrived in Sandpoint.",
			},
			wantErr: false,
		},
		{
			name: "missing title",
			session: ProcessingSession{
				Transcript: "The party arrived in Sandpoint.",
			},
			wantErr: true,
		},
		{
			name: "whitespace transcript",
			session: ProcessingSession{
				Title:      "Session 12",
				Transcript: "  \n\t",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPhaseLookup(t *testing.T) {
	s := ProcessingSession{
		CurrentPhaseIndex: 2,
		Phases: []PhaseRecord{
			{Number: 1, Name: "Extract", Completed: true},
			{Number: 2, Name: "Summarize"},
			{Number: 3, Name: "Refine"},
		},
	}

	if p := s.CurrentPhase(); p == nil || p.Name != "Summarize" {
		t.Errorf("CurrentPhase() = %+v, want Summarize", p)
	}
	if s.Phase(0) != nil || s.Phase(4) != nil {
		t.Error("Phase() should return nil outside 1..3")
	}
	if got := s.CompletedCount(); got != 1 {
		t.Errorf("CompletedCount() = %d, want 1", got)
	}
}

func TestProvenanceContains(t *testing.T) {
	p := Provenance{{ID: "a"}, {ID: "b"}}
	if !p.Contains("b") {
		t.Error("Contains(b) = false, want true")
	}
	if p.Contains("c") {
		t.Error("Contains(c) = true, want false")
	}
}

func TestNewID(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+-[a-z0-9]{7}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if !pattern.MatchString(id) {
			t.Fatalf("NewID() = %q, does not match <timestamp>-<suffix>", id)
		}
		if seen[id] {
			t.Fatalf("NewID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestNameKey(t *testing.T) {
	if got := NameKey("  The Rusty Dragon "); got != "the rusty dragon" {
		t.Errorf("NameKey() = %q", got)
	}
}
