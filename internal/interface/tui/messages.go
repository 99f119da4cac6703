package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/filter"
	"github.com/neilberkman/chronicler/internal/core/kb"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/pipeline"
	"github.com/neilberkman/chronicler/internal/core/search"
	"github.com/neilberkman/chronicler/internal/core/workflow"
)

type errMsg struct {
	err error
}

type sessionsLoadedMsg struct {
	sessions []*models.ProcessingSession
}

type sessionLoadedMsg struct {
	session *models.ProcessingSession
	prompt  string
}

type advancedMsg struct {
	result *pipeline.AdvanceResult
}

type entitiesLoadedMsg struct {
	items []entityItem
}

type entityLoadedMsg struct {
	name string
	text string
}

type searchResultsMsg struct {
	query   string
	results []search.Result
}

// statusMsg reports the outcome of an action. reload refreshes the open session.
type statusMsg struct {
	text   string
	isErr  bool
	reload bool
}

func loadSessions(svc *pipeline.Service, f filter.Filters) tea.Cmd {
	return func() tea.Msg {
		sessions, err := svc.List(f)
		if err != nil {
			return errMsg{err}
		}
		return sessionsLoadedMsg{sessions: sessions}
	}
}

func loadSession(svc *pipeline.Service, id string) tea.Cmd {
	return func() tea.Msg {
		prompt, session, err := svc.Prompt(id)
		if err != nil {
			return errMsg{err}
		}
		return sessionLoadedMsg{session: session, prompt: prompt}
	}
}

func copyPrompt(prompt string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(prompt); err != nil {
			return statusMsg{text: fmt.Sprintf("Clipboard unavailable: %v", err), isErr: true}
		}
		return statusMsg{text: fmt.Sprintf("Prompt copied to clipboard (%d characters)", len([]rune(prompt)))}
	}
}

func pasteResponse(svc *pipeline.Service, id string) tea.Cmd {
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Clipboard unavailable: %v", err), isErr: true}
		}
		if strings.TrimSpace(text) == "" {
			return statusMsg{text: "Clipboard is empty", isErr: true}
		}
		session, err := svc.SaveResponse(id, text)
		if err != nil {
			return statusMsg{text: "Error: " + err.Error(), isErr: true}
		}
		return statusMsg{
			text:   fmt.Sprintf("Saved phase %d response (%d characters). Press a to advance.", session.CurrentPhaseIndex, len([]rune(text))),
			reload: true,
		}
	}
}

func advanceSession(svc *pipeline.Service, id string) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Advance(id)
		if err != nil {
			var verr *workflow.ValidationError
			if errors.As(err, &verr) {
				return statusMsg{text: "Validation failed: " + verr.Reason, isErr: true}
			}
			return statusMsg{text: "Error: " + err.Error(), isErr: true}
		}
		return advancedMsg{result: result}
	}
}

func advanceStatus(result *pipeline.AdvanceResult) string {
	if !result.Completed {
		phase := result.Session.CurrentPhase()
		return fmt.Sprintf("Now on phase %d: %s", phase.Number, phase.Name)
	}
	if result.Merge == nil {
		return "Session complete"
	}
	return fmt.Sprintf("Session complete: %d new / %d updated locations, %d new / %d updated plot threads",
		result.Merge.Locations.Created, result.Merge.Locations.Updated,
		result.Merge.PlotThreads.Created, result.Merge.PlotThreads.Updated)
}

func loadEntities(database *db.DB) tea.Cmd {
	return func() tea.Msg {
		locs, err := database.ListLocations()
		if err != nil {
			return errMsg{err}
		}
		threads, err := database.ListPlotThreads()
		if err != nil {
			return errMsg{err}
		}

		items := make([]entityItem, 0, len(locs)+len(threads))
		for _, loc := range locs {
			items = append(items, entityItem{
				name:     loc.Name,
				kind:     models.KindLocation,
				meta:     joinNonEmpty(" | ", loc.Type, loc.Region),
				sessions: len(loc.Sessions),
			})
		}
		for _, th := range threads {
			items = append(items, entityItem{
				name:     th.Name,
				kind:     models.KindPlotThread,
				meta:     joinNonEmpty(" | ", th.Status, th.Priority),
				sessions: len(th.Sessions),
			})
		}
		return entitiesLoadedMsg{items: items}
	}
}

func loadEntity(database *db.DB, name string) tea.Cmd {
	return func() tea.Msg {
		entry, err := kb.Lookup(database, name)
		if err != nil {
			return errMsg{err}
		}
		if entry == nil {
			return statusMsg{text: fmt.Sprintf("No entry named %q", name), isErr: true}
		}
		text, err := kb.Describe(database, entry)
		if err != nil {
			return errMsg{err}
		}
		return entityLoadedMsg{name: entry.Name(), text: text}
	}
}

func performSearch(database *db.DB, query string) tea.Cmd {
	return func() tea.Msg {
		// Minimum 2 characters to search (avoid useless single-char results)
		if len(strings.TrimSpace(query)) < 2 {
			return searchResultsMsg{query: query}
		}
		results, err := search.Search(database, query)
		if err != nil {
			return statusMsg{text: "Search failed: " + err.Error(), isErr: true}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
