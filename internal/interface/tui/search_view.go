package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/chronicler/internal/core/models"
)

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		m.mode = listView
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchResults = nil
		m.searchSelectedIdx = 0
		m.searchViewOffset = 0
		return m, nil

	case "enter":
		if len(m.searchResults) > 0 && m.searchSelectedIdx < len(m.searchResults) {
			m.searchInput.Blur()
			return m, loadEntity(m.db, m.searchResults[m.searchSelectedIdx].Name)
		}
		return m, nil

	// Arrow keys navigate so j/k can still be typed
	case "ctrl+j", "down":
		if len(m.searchResults) > 0 {
			m.searchSelectedIdx++
			if m.searchSelectedIdx >= len(m.searchResults) {
				m.searchSelectedIdx = len(m.searchResults) - 1
			}
			return adjustSearchViewport(m), nil
		}
		return m, nil

	case "up":
		if len(m.searchResults) > 0 {
			m.searchSelectedIdx--
			if m.searchSelectedIdx < 0 {
				m.searchSelectedIdx = 0
			}
			return adjustSearchViewport(m), nil
		}
		return m, nil
	}

	// Everything else edits the query
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live search on every keystroke
	query := m.searchInput.Value()
	m.searchSelectedIdx = 0
	m.searchViewOffset = 0
	return m, tea.Batch(cmd, performSearch(m.db, query))
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(searchHeaderStyle.Render("Search knowledge base"))
	b.WriteString("\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	query := strings.TrimSpace(m.searchInput.Value())
	switch {
	case len(query) < 2:
		b.WriteString(metaStyle.Render("Type at least 2 characters"))
	case len(m.searchResults) == 0:
		b.WriteString(metaStyle.Render("No matches"))
	default:
		end := m.searchViewOffset + visibleResults(m)
		if end > len(m.searchResults) {
			end = len(m.searchResults)
		}
		for i := m.searchViewOffset; i < end; i++ {
			r := m.searchResults[i]
			kind := "location"
			if r.Kind == models.KindPlotThread {
				kind = "plot thread"
			}
			name := fmt.Sprintf("%s (%s)", r.Name, kind)
			if i == m.searchSelectedIdx {
				b.WriteString(searchSelectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + name)
			}
			b.WriteString("\n")
			b.WriteString(metaStyle.Render("    " + r.Snippet))
			b.WriteString("\n\n")
		}
		b.WriteString(metaStyle.Render(fmt.Sprintf("%d result(s)", len(m.searchResults))))
	}

	b.WriteString("\n\n↑/↓ navigate • enter open • esc back")
	b.WriteString(m.statusLine())
	return b.String()
}
