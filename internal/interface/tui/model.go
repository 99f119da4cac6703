package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/filter"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/pipeline"
	"github.com/neilberkman/chronicler/internal/core/search"
)

type viewMode int

const (
	listView viewMode = iota
	detailView
	entityListView
	entityView
	searchView
	helpView
)

// Model is the bubbletea model for the whole TUI
type Model struct {
	svc      *pipeline.Service
	db       *db.DB
	mode     viewMode
	prevMode viewMode
	list     list.Model
	viewport viewport.Model
	width    int
	height   int
	err      error

	// Status line shown under the current view
	status      string
	statusIsErr bool

	// Session list and filter
	sessions    []*models.ProcessingSession
	filterInput textinput.Model
	filtering   bool
	filterQuery string

	// Session detail
	current *models.ProcessingSession
	prompt  string

	// Knowledge base browsing
	entities    list.Model
	entityTitle string

	// Search
	searchInput       textinput.Model
	searchResults     []search.Result
	searchSelectedIdx int
	searchViewOffset  int
}

// New creates the TUI model
func New(svc *pipeline.Service, database *db.DB) Model {
	fi := textinput.New()
	fi.Placeholder = "tag:npc status:pending after:2024-01-01 text"
	fi.Prompt = "Filter: "

	si := textinput.New()
	si.Placeholder = "Search locations and plot threads..."
	si.Prompt = "/ "

	return Model{
		svc:         svc,
		db:          database,
		mode:        listView,
		list:        createSessionList(nil, svc, 0, 0),
		entities:    createEntityList(nil, 0, 0),
		viewport:    viewport.New(0, 0),
		filterInput: fi,
		searchInput: si,
	}
}

func (m Model) Init() tea.Cmd {
	return loadSessions(m.svc, filter.Filters{})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		m.entities.SetSize(msg.Width, msg.Height-2)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.filterInput.Width = msg.Width - 10
		m.searchInput.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		// Text inputs get every key except the ones that leave them
		if m.filtering {
			return m.updateFilter(msg)
		}
		if m.mode == entityListView && m.entities.FilterState() == list.Filtering {
			return m.updateEntityList(msg)
		}
		if m.mode == searchView {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m.updateSearch(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.mode == listView {
				return m, tea.Quit
			}
			m.mode = listView
			m.status = ""
			return m, nil
		case "?":
			if m.mode != helpView {
				m.prevMode = m.mode
				m.mode = helpView
				return m, nil
			}
		}

		switch m.mode {
		case listView:
			return m.updateList(msg)
		case detailView:
			return m.updateDetail(msg)
		case entityListView:
			return m.updateEntityList(msg)
		case entityView:
			return m.updateEntity(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case sessionsLoadedMsg:
		m.sessions = msg.sessions
		index := m.list.Index()
		m.list = createSessionList(msg.sessions, m.svc, m.width, m.height-2)
		if index < len(msg.sessions) {
			m.list.Select(index)
		}
		return m, nil

	case sessionLoadedMsg:
		m.current = msg.session
		m.prompt = msg.prompt
		m.viewport.SetContent(renderSession(m.svc.Machine(), msg.session, msg.prompt, m.width))
		if m.mode != detailView {
			m.viewport.GotoTop()
		}
		m.mode = detailView
		return m, nil

	case advancedMsg:
		m.setStatus(advanceStatus(msg.result), false)
		return m, tea.Batch(loadSession(m.svc, msg.result.Session.ID), loadSessions(m.svc, filter.ParseQuery(m.filterQuery)))

	case entitiesLoadedMsg:
		m.entities = createEntityList(msg.items, m.width, m.height-2)
		m.mode = entityListView
		return m, nil

	case entityLoadedMsg:
		m.entityTitle = msg.name
		m.viewport.SetContent(renderMarkdown(msg.text, m.width))
		m.viewport.GotoTop()
		m.prevMode = m.mode
		m.mode = entityView
		return m, nil

	case searchResultsMsg:
		if msg.query == m.searchInput.Value() {
			m.searchResults = msg.results
		}
		return m, nil

	case statusMsg:
		m.setStatus(msg.text, msg.isErr)
		if msg.reload && m.current != nil {
			return m, loadSession(m.svc, m.current.ID)
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusIsErr = isErr
}

func (m Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit"
	}

	switch m.mode {
	case listView:
		return m.viewList()
	case detailView:
		return m.viewDetail()
	case entityListView:
		return m.viewEntityList()
	case entityView:
		return m.viewEntity()
	case searchView:
		return m.viewSearch()
	case helpView:
		return m.viewHelp()
	}

	return ""
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsErr {
		return "\n" + errorStyle.Render(m.status)
	}
	return "\n" + statusStyle.Render(m.status)
}
