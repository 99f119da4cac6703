package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/chronicler/internal/core/filter"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/pipeline"
	"github.com/neilberkman/chronicler/internal/core/tags"
)

type sessionListItem struct {
	session  *models.ProcessingSession
	progress int
	complete bool
}

func (i sessionListItem) FilterValue() string {
	return i.session.Title
}

func (i sessionListItem) Title() string {
	return i.session.Title
}

func (i sessionListItem) Description() string {
	status := fmt.Sprintf("phase %d/%d", i.session.CurrentPhaseIndex, len(i.session.Phases))
	if i.complete {
		status = "complete"
	}
	desc := fmt.Sprintf("%s | %d%% %s | Updated: %s", i.session.Date, i.progress, status, humanize.Time(i.session.Modified))
	if len(i.session.Tags) > 0 {
		desc += " | " + tags.Format(i.session.Tags)
	}
	return desc
}

// Custom delegate so completed sessions stand out
type sessionDelegate struct {
	list.DefaultDelegate
}

func (d sessionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	s, ok := item.(sessionListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := s.Title()
	desc := s.Description()

	switch {
	case index == m.Index():
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	case s.complete:
		title = completeItemStyle.Render(title)
		desc = itemStyle.Render(desc)
	default:
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createSessionList(sessions []*models.ProcessingSession, svc *pipeline.Service, width, height int) list.Model {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionListItem{
			session:  s,
			progress: svc.Machine().ProgressPercent(s),
			complete: svc.Machine().IsComplete(s),
		}
	}

	delegate := sessionDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(items, delegate, width, height)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false) // f opens the query filter instead
	return l
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if selected, ok := m.list.SelectedItem().(sessionListItem); ok {
			m.status = ""
			return m, loadSession(m.svc, selected.session.ID)
		}
		return m, nil

	case "f":
		m.filtering = true
		m.filterInput.SetValue(m.filterQuery)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()

	case "e", "tab":
		return m, loadEntities(m.db)

	case "/":
		m.mode = searchView
		return m, m.searchInput.Focus()

	case "r":
		return m, loadSessions(m.svc, filter.ParseQuery(m.filterQuery))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		m.filterQuery = m.filterInput.Value()
		return m, loadSessions(m.svc, filter.ParseQuery(m.filterQuery))
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m Model) viewList() string {
	helpText := "↑/k up • ↓/j down • enter open • f filter • e knowledge base • / search • q quit • ? more"
	if m.filtering {
		helpText = m.filterInput.View() + "\nenter apply • esc cancel"
	} else if m.filterQuery != "" {
		helpText = filterStyle.Render("Filter: "+m.filterQuery) + "\n" + helpText
	}

	if len(m.sessions) == 0 {
		if m.filterQuery != "" {
			return "No sessions match the filter.\n\n" + helpText + m.statusLine()
		}
		return "No sessions yet. Create one with 'chronicler new'.\n\n" + helpText + m.statusLine()
	}

	return m.list.View() + "\n" + helpText + m.statusLine()
}
