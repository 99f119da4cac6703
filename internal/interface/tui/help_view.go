package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key returns to the previous view
	m.mode = m.prevMode
	if m.mode == helpView {
		m.mode = listView
	}
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
Chronicler - Help
═════════════════

SESSION LIST
────────────
  ↑/↓, j/k     Navigate sessions
  Enter        Open session
  f            Filter (tag:npc status:pending after:2024-01-01 text)
  e, Tab       Browse knowledge base
  /            Search knowledge base
  r            Reload
  ?            Show this help
  q            Quit

SESSION
───────
  c            Copy current phase prompt to clipboard
  v            Paste clipboard as the phase response
  a            Accept the response and advance
  j/k          Scroll line by line
  d/u          Scroll half page
  g/G          Jump to top/bottom
  esc          Back to session list

KNOWLEDGE BASE
──────────────
  Enter        Open location or plot thread
  /            Filter by name
  esc          Back

SEARCH
──────
  Type         Enter search query (live)
  Enter        Open selected entry
  ↑/↓          Navigate results
  esc          Back to session list

Press any key to return
`

	return helpStyle.Render(help)
}
