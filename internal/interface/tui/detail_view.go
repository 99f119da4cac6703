package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/tags"
	"github.com/neilberkman/chronicler/internal/core/workflow"
)

// renderSession lays out progress, the phase checklist and either the
// current prompt or, once complete, the final document
func renderSession(machine *workflow.Machine, s *models.ProcessingSession, prompt string, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Title))
	b.WriteString("\n")
	meta := []string{s.Date, fmt.Sprintf("%d%% complete", machine.ProgressPercent(s)), "updated " + humanize.Time(s.Modified)}
	if len(s.Tags) > 0 {
		meta = append(meta, tags.Format(s.Tags))
	}
	b.WriteString(metaStyle.Render(joinNonEmpty(" | ", meta...)))
	b.WriteString("\n\n")

	for _, p := range s.Phases {
		var line string
		switch {
		case p.Completed:
			line = doneStyle.Render(fmt.Sprintf("[x] Phase %d: %s", p.Number, p.Name))
		case p.Number == s.CurrentPhaseIndex:
			line = currentStyle.Render(fmt.Sprintf("[>] Phase %d: %s", p.Number, p.Name))
		default:
			line = pendingStyle.Render(fmt.Sprintf("[ ] Phase %d: %s", p.Number, p.Name))
		}
		b.WriteString(line)
		b.WriteString(metaStyle.Render(fmt.Sprintf("  %s", p.ResponsibleAgent)))
		if n := len([]rune(strings.TrimSpace(p.Response))); n > 0 {
			b.WriteString(metaStyle.Render(fmt.Sprintf("  (%s chars)", humanize.Comma(int64(n)))))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if machine.IsComplete(s) {
		b.WriteString(sectionStyle.Render("Final document"))
		b.WriteString("\n\n")
		b.WriteString(wrap(machine.FinalDocument(s), width))
		return b.String()
	}

	phase := s.CurrentPhase()
	if phase != nil {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("Phase %d: %s", phase.Number, phase.Name)))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(phase.Description))
		b.WriteString("\n\n")
		if strings.TrimSpace(phase.Response) != "" {
			b.WriteString(sectionStyle.Render("Saved response"))
			b.WriteString("\n")
			b.WriteString(wrap(phase.Response, width))
			b.WriteString("\n\n")
		}
	}
	b.WriteString(sectionStyle.Render("Prompt"))
	b.WriteString("\n")
	b.WriteString(wrap(prompt, width))
	return b.String()
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.current == nil {
		m.mode = listView
		return m, nil
	}
	complete := m.svc.Machine().IsComplete(m.current)

	switch msg.String() {
	case "esc":
		m.mode = listView
		m.status = ""
		return m, nil

	case "c":
		if complete {
			m.setStatus("Session is complete; nothing to copy", true)
			return m, nil
		}
		return m, copyPrompt(m.prompt)

	case "v":
		if complete {
			m.setStatus("Session is complete", true)
			return m, nil
		}
		return m, pasteResponse(m.svc, m.current.ID)

	case "a":
		if complete {
			m.setStatus("Session is already complete", true)
			return m, nil
		}
		return m, advanceSession(m.svc, m.current.ID)
	}

	return m.scrollViewport(msg)
}

func (m Model) viewDetail() string {
	if m.current == nil {
		return "No session loaded"
	}

	footer := fmt.Sprintf("\n%3.f%%", m.viewport.ScrollPercent()*100)
	if m.svc.Machine().IsComplete(m.current) {
		footer += "  j/k scroll • esc back • q quit"
	} else {
		footer += "  c copy prompt • v paste response • a advance • j/k scroll • esc back • q quit"
	}
	return m.viewport.View() + footer + m.statusLine()
}
