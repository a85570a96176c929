package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/taskdeck/internal/model"
)

// Color palette
var (
	// Priority colors
	PriorityHigh   = lipgloss.Color("#FF6B6B") // Red
	PriorityMedium = lipgloss.Color("#FFE66D") // Yellow
	PriorityLow    = lipgloss.Color("#4ECDC4") // Blue

	// Status colors
	Completed = lipgloss.Color("#95E1A3") // Green
	Overdue   = lipgloss.Color("#FF6B6B") // Red

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Sidebar (tag list)
	SidebarStyle = lipgloss.NewStyle().
			Width(22).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Task list
	TaskListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Tag item
	TagItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TagItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	// Task item
	TaskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	// Priority badges
	PriorityHighStyle   = lipgloss.NewStyle().Foreground(PriorityHigh).Bold(true)
	PriorityMediumStyle = lipgloss.NewStyle().Foreground(PriorityMedium)
	PriorityLowStyle    = lipgloss.NewStyle().Foreground(PriorityLow)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	OverdueStyle = lipgloss.NewStyle().Foreground(Overdue).Bold(true)
	DueSoonStyle = lipgloss.NewStyle().Foreground(PriorityMedium)
)

// FormatPriority returns a styled priority badge
func FormatPriority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return PriorityHighStyle.Render("HI")
	case model.PriorityLow:
		return PriorityLowStyle.Render("LO")
	default:
		return PriorityMediumStyle.Render("MD")
	}
}
