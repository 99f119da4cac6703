package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/chronicler/internal/core/models"
)

type entityItem struct {
	name     string
	kind     models.EntityKind
	meta     string
	sessions int
}

func (i entityItem) FilterValue() string { return i.name }
func (i entityItem) Title() string       { return i.name }

func (i entityItem) Description() string {
	kind := "Location"
	if i.kind == models.KindPlotThread {
		kind = "Plot thread"
	}
	desc := kind
	if i.meta != "" {
		desc += " | " + i.meta
	}
	return fmt.Sprintf("%s | %d session(s)", desc, i.sessions)
}

type entityDelegate struct {
	list.DefaultDelegate
}

func (d entityDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(entityItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := e.Title()
	desc := e.Description()
	switch {
	case index == m.Index():
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	case e.kind == models.KindPlotThread:
		title = threadItemStyle.Render(title)
		desc = itemStyle.Render(desc)
	default:
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}
	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createEntityList(items []entityItem, width, height int) list.Model {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}

	l := list.New(listItems, entityDelegate{DefaultDelegate: list.NewDefaultDelegate()}, width, height)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(true) // built-in fuzzy filter on names
	return l
}

func (m Model) updateEntityList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the built-in filter is typing, the list owns every key
	if m.entities.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.entities, cmd = m.entities.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter":
		if selected, ok := m.entities.SelectedItem().(entityItem); ok {
			return m, loadEntity(m.db, selected.name)
		}
		return m, nil
	case "esc", "e", "tab":
		m.mode = listView
		return m, nil
	}

	var cmd tea.Cmd
	m.entities, cmd = m.entities.Update(msg)
	return m, cmd
}

func (m Model) viewEntityList() string {
	help := "↑/k up • ↓/j down • enter open • / filter names • esc sessions • ? more"
	if len(m.entities.Items()) == 0 {
		return "The knowledge base is empty. Complete a session to populate it.\n\n" + help
	}
	return m.entities.View() + "\n" + help + m.statusLine()
}

func (m Model) updateEntity(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.prevMode == searchView {
			m.mode = searchView
			return m, m.searchInput.Focus()
		}
		m.mode = entityListView
		return m, nil
	}
	return m.scrollViewport(msg)
}

func (m Model) viewEntity() string {
	header := titleStyle.Render(m.entityTitle)
	footer := fmt.Sprintf("\n%3.f%%  j/k scroll • d/u half page • g/G top/bottom • esc back", m.viewport.ScrollPercent()*100)
	return header + "\n" + m.viewport.View() + footer + m.statusLine()
}
