package tui

import (
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var wikiLinkPattern = regexp.MustCompile(`\[\[[^\[\]]+\]\]`)

// scrollViewport applies the shared pager keys to the viewport
func (m Model) scrollViewport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.viewport.LineDown(1)
		return m, nil
	case "k", "up":
		m.viewport.LineUp(1)
		return m, nil
	case "d":
		m.viewport.HalfViewDown()
		return m, nil
	case "u":
		m.viewport.HalfViewUp()
		return m, nil
	case "g":
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// renderMarkdown styles headings and wiki links for the pager
func renderMarkdown(text string, width int) string {
	return wrap(highlightMarkdown(text), width)
}

// adjustSearchViewport ensures the selected search result is visible,
// scrolling the result window up or down as needed
func adjustSearchViewport(m Model) Model {
	maxVisible := visibleResults(m)

	if m.searchSelectedIdx >= m.searchViewOffset+maxVisible {
		m.searchViewOffset = m.searchSelectedIdx - maxVisible + 1
	}
	if m.searchSelectedIdx < m.searchViewOffset {
		m.searchViewOffset = m.searchSelectedIdx
	}
	return m
}

// visibleResults is how many search results fit on screen.
// Each result takes three lines; six are reserved for input, header and footer.
func visibleResults(m Model) int {
	n := (m.height - 6) / 3
	if n < 2 {
		n = 2
	}
	return n
}

// highlightMarkdown styles headings and [[wiki links]] line by line
func highlightMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "# "):
			lines[i] = titleStyle.Render(line)
		case strings.HasPrefix(line, "## "), strings.HasPrefix(line, "### "):
			lines[i] = sectionStyle.Render(line)
		default:
			lines[i] = wikiLinkPattern.ReplaceAllStringFunc(line, func(link string) string {
				return linkStyle.Render(link)
			})
		}
	}
	return strings.Join(lines, "\n")
}
