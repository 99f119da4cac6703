package tui

import "github.com/charmbracelet/lipgloss"

// Global styles used across views
var (
	// List view styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("170")).
				Bold(true)

	completeItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("120")) // Light green

	threadItemStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(lipgloss.Color("214"))

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// Session view styles
	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")) // Lighter gray that works better in dark terminals

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Underline(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// Search view styles
	searchHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	searchSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	// Help view styles
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)
