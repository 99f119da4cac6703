// Package pipeline ties the phase state machine, storage and the merge
// engine together. Every operation is a synchronous call from the UI layer.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/filter"
	"github.com/neilberkman/chronicler/internal/core/merge"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/tags"
	"github.com/neilberkman/chronicler/internal/core/workflow"
	"github.com/neilberkman/chronicler/internal/pkg/logger"
)

const module = "pipeline"

var (
	// ErrSessionNotFound is returned for unknown session ids
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionComplete is returned when advancing a finished session
	ErrSessionComplete = errors.New("session already complete")
	// ErrSessionIncomplete is returned when reprocessing an unfinished session
	ErrSessionIncomplete = errors.New("session not complete")
)

// Service runs processing sessions against a database
type Service struct {
	db      *db.DB
	machine *workflow.Machine
	log     logger.Logger
}

// New creates a Service. A nil log discards messages.
func New(database *db.DB, machine *workflow.Machine, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{db: database, machine: machine, log: log}
}

// Machine returns the underlying state machine
func (s *Service) Machine() *workflow.Machine {
	return s.machine
}

// AdvanceResult describes what Advance did
type AdvanceResult struct {
	Session   *models.ProcessingSession
	Completed bool          // the session finished on this call
	Merge     *merge.Result // set when Completed
}

// Create validates input and stores a new session at phase 1
func (s *Service) Create(title, date, transcript string, tagList []string) (*models.ProcessingSession, error) {
	title = strings.TrimSpace(title)
	date = strings.TrimSpace(date)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", workflow.ErrInvalidInput)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("%w: transcript is required", workflow.ErrInvalidInput)
	}

	session := s.machine.CreateSession(title, date, transcript, tagList)
	if err := s.db.SaveSession(session); err != nil {
		return nil, err
	}

	s.log.Info(module, "session created", map[string]interface{}{
		"session_id": session.ID,
		"title":      session.Title,
		"chars":      len(transcript),
	})
	return session, nil
}

// Get returns a session or ErrSessionNotFound
func (s *Service) Get(id string) (*models.ProcessingSession, error) {
	session, err := s.db.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// List returns sessions matching f, newest first
func (s *Service) List(f filter.Filters) ([]*models.ProcessingSession, error) {
	sessions, err := s.db.ListSessions()
	if err != nil {
		return nil, err
	}
	return filter.Apply(sessions, f), nil
}

// Delete removes a session. Entities it contributed to keep their provenance.
func (s *Service) Delete(id string) error {
	deleted, err := s.db.DeleteSession(id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.log.Info(module, "session deleted", map[string]interface{}{"session_id": id})
	return nil
}

// SetTags replaces a session's tags with the normalized list
func (s *Service) SetTags(id string, tagList []string) (*models.ProcessingSession, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	session.Tags = tags.NormalizeList(tagList)
	if err := s.db.SaveSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Prompt renders the prompt for the session's current phase
func (s *Service) Prompt(id string) (string, *models.ProcessingSession, error) {
	session, err := s.Get(id)
	if err != nil {
		return "", nil, err
	}
	prompt, err := s.machine.GeneratePrompt(session)
	if err != nil {
		return "", nil, fmt.Errorf("render phase %d prompt: %w", session.CurrentPhaseIndex, err)
	}
	return prompt, session, nil
}

// SaveResponse stores text as the current phase's response
func (s *Service) SaveResponse(id, text string) (*models.ProcessingSession, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.machine.UpdateResponse(session, text)
	if err := s.db.SaveSession(session); err != nil {
		return nil, err
	}

	s.log.Debug(module, "response saved", map[string]interface{}{
		"session_id": id,
		"phase":      session.CurrentPhaseIndex,
		"chars":      len(text),
	})
	return session, nil
}

// Advance validates the current phase and moves the session on. A
// *workflow.ValidationError leaves the stored session untouched. When the
// last phase completes, its document is parsed and merged into the
// knowledge base.
func (s *Service) Advance(id string) (*AdvanceResult, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if s.machine.IsComplete(session) {
		return nil, fmt.Errorf("%w: %s", ErrSessionComplete, id)
	}

	if err := s.machine.ValidatePhase(session); err != nil {
		s.log.Warn(module, "phase validation failed", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	phase := session.CurrentPhaseIndex
	s.machine.AdvancePhase(session)
	if err := s.db.SaveSession(session); err != nil {
		return nil, err
	}
	s.log.Info(module, "phase completed", map[string]interface{}{
		"session_id": id,
		"phase":      phase,
		"progress":   s.machine.ProgressPercent(session),
	})

	result := &AdvanceResult{Session: session}
	if !s.machine.IsComplete(session) {
		return result, nil
	}

	result.Completed = true
	result.Merge, err = s.mergeSession(session)
	if err != nil {
		return result, err
	}
	return result, nil
}

// Reprocess parses and merges a completed session again. Provenance makes
// this a no-op for entities the session already contributed to.
func (s *Service) Reprocess(id string) (*merge.Result, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.machine.IsComplete(session) {
		return nil, fmt.Errorf("%w: %s", ErrSessionIncomplete, id)
	}
	return s.mergeSession(session)
}

func (s *Service) mergeSession(session *models.ProcessingSession) (*merge.Result, error) {
	doc := s.machine.FinalDocument(session)
	result, err := merge.Document(s.db, doc, session.Ref())
	if err != nil {
		s.log.Error(module, "merge failed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("merge session %s: %w", session.ID, err)
	}

	s.log.Info(module, "knowledge base updated", map[string]interface{}{
		"session_id":         session.ID,
		"locations_created":  result.Locations.Created,
		"locations_updated":  result.Locations.Updated,
		"threads_created":    result.PlotThreads.Created,
		"threads_updated":    result.PlotThreads.Updated,
		"entities_unchanged": result.Locations.Unchanged + result.PlotThreads.Unchanged,
	})
	return result, nil
}
