package workflow

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/tags"
)

// DefaultMinResponseLength is the shortest trimmed response accepted for any phase
const DefaultMinResponseLength = 100

// ErrInvalidInput is returned when a session is created without a title or transcript
var ErrInvalidInput = errors.New("invalid input")

// ValidationError explains why a phase response was rejected
type ValidationError struct {
	Phase  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("phase %d: %s", e.Phase, e.Reason)
}

// Machine drives sessions through the phase table
type Machine struct {
	phases            PhaseDefinitions
	templates         Templates
	MinResponseLength int
	now               func() time.Time
}

// New creates a state machine over the given phase table and prompt templates.
// Phases missing from templates fall back to the built-in defaults.
func New(phases PhaseDefinitions, templates Templates) *Machine {
	merged := DefaultTemplates()
	for n, t := range templates {
		if strings.TrimSpace(t) != "" {
			merged[n] = t
		}
	}
	return &Machine{
		phases:            phases,
		templates:         merged,
		MinResponseLength: DefaultMinResponseLength,
		now:               time.Now,
	}
}

// Phases returns the phase table
func (m *Machine) Phases() PhaseDefinitions {
	return m.phases
}

// CreateSession builds a fresh session at phase 1. Callers check for an empty
// title or transcript first; see models.ProcessingSession.Validate.
func (m *Machine) CreateSession(title, date, transcript string, tagList []string) *models.ProcessingSession {
	phases := make([]models.PhaseRecord, len(m.phases))
	for i, def := range m.phases {
		phases[i] = models.PhaseRecord{
			Number:           def.Number,
			Name:             def.Name,
			ResponsibleAgent: def.ResponsibleAgent,
			Description:      def.Description,
		}
	}

	now := m.now()
	return &models.ProcessingSession{
		ID:                models.NewID(),
		Title:             title,
		Date:              date,
		Transcript:        transcript,
		Tags:              tags.NormalizeList(tagList),
		CurrentPhaseIndex: 1,
		Phases:            phases,
		Created:           now,
		Modified:          now,
	}
}

// GeneratePrompt renders the prompt for the session's current phase.
// It has no side effects; the result is a function of session state only.
func (m *Machine) GeneratePrompt(s *models.ProcessingSession) (string, error) {
	data := map[string]string{
		"title":      s.Title,
		"date":       s.Date,
		"tags":       tags.Format(s.Tags),
		"transcript": s.Transcript,
	}
	if prev := s.Phase(s.CurrentPhaseIndex - 1); prev != nil {
		data["previous_response"] = prev.Response
	}
	return m.templates.render(s.CurrentPhaseIndex, data)
}

// ValidatePhase checks the current phase's response. It returns a
// *ValidationError when the response is missing or too short.
func (m *Machine) ValidatePhase(s *models.ProcessingSession) error {
	phase := s.CurrentPhase()
	if phase == nil {
		return &ValidationError{Phase: s.CurrentPhaseIndex, Reason: "no such phase"}
	}

	response := strings.TrimSpace(phase.Response)
	if response == "" {
		return &ValidationError{Phase: phase.Number, Reason: "response is empty, please provide the response"}
	}
	if n := len([]rune(response)); n < m.MinResponseLength {
		return &ValidationError{
			Phase:  phase.Number,
			Reason: fmt.Sprintf("response is too short (%d characters, need at least %d)", n, m.MinResponseLength),
		}
	}
	return nil
}

// AdvancePhase marks the current phase completed and moves to the next one.
// It does not validate; the index never passes the last phase.
func (m *Machine) AdvancePhase(s *models.ProcessingSession) {
	if phase := s.CurrentPhase(); phase != nil {
		phase.Completed = true
	}
	if s.CurrentPhaseIndex < len(s.Phases) {
		s.CurrentPhaseIndex++
	}
	s.Modified = m.now()
}

// IsComplete reports whether every phase is completed
func (m *Machine) IsComplete(s *models.ProcessingSession) bool {
	return len(s.Phases) > 0 && s.CompletedCount() == len(s.Phases)
}

// ProgressPercent returns completed phases as a rounded percentage
func (m *Machine) ProgressPercent(s *models.ProcessingSession) int {
	if len(s.Phases) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.CompletedCount()) / float64(len(s.Phases))))
}

// UpdateResponse overwrites the current phase's response
func (m *Machine) UpdateResponse(s *models.ProcessingSession, text string) {
	if phase := s.CurrentPhase(); phase != nil {
		phase.Response = text
		s.Modified = m.now()
	}
}

// FinalDocument returns the Markdown the entity parser should read once the
// session is complete. A Refine response that opens with NoChangesPhrase
// defers to the Summarize response.
func (m *Machine) FinalDocument(s *models.ProcessingSession) string {
	refine := s.Phase(len(s.Phases))
	if refine == nil {
		return ""
	}
	trimmed := strings.TrimSpace(refine.Response)
	n := len(NoChangesPhrase)
	if len(trimmed) >= n && strings.EqualFold(trimmed[:n], NoChangesPhrase) {
		body := strings.TrimSpace(trimmed[n:])
		if strings.Contains(body, "# ") {
			return body
		}
		if prev := s.Phase(len(s.Phases) - 1); prev != nil {
			return prev.Response
		}
	}
	return refine.Response
}
