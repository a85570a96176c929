package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/taskdeck/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	taskList := m.renderTaskList()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, taskList)

	if m.mode == ModeAddTask {
		modal := m.renderModal()
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			modal,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeConfirmDelete {
		modal := m.renderConfirmDelete()
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			modal,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) renderSidebar() string {
	sidebarWidth := 22
	var s string

	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("TaskDeck") + "\n"
	if m.session.IsAuthenticated() {
		s += HelpStyle.Render(truncate(m.session.User().Email, 18)) + "\n"
	} else {
		s += HelpStyle.Render("not signed in") + "\n"
	}
	s += lipgloss.NewStyle().Foreground(Border).Render("─────────────────") + "\n\n"

	s += HelpStyle.Render("TAGS") + "\n"
	if len(m.tags) == 0 {
		s += HelpStyle.Render("  (none)") + "\n"
	}
	for i, tag := range m.tags {
		cursor := "  "
		style := TagItemStyle
		if i == m.tagCursor {
			cursor = "❯ "
			if m.pane == PaneSidebar {
				style = TagItemSelectedStyle
			}
		}

		mark := "○"
		if m.engine.TagSelected(tag.ID) {
			mark = "●"
		}
		s += style.Render(fmt.Sprintf("%s%s #%s", cursor, mark, truncate(tag.Name, 12))) + "\n"
	}

	s += "\n" + lipgloss.NewStyle().Foreground(Border).Render("─────────────────") + "\n"
	s += HelpStyle.Render("space select  c clear")

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(s)
}

func (m Model) renderTaskList() string {
	width := m.width - 24
	var s string

	pending := 0
	for _, t := range m.tasks {
		if !t.Completed {
			pending++
		}
	}
	header := fmt.Sprintf("Tasks (%d pending)", pending)
	if n := len(m.engine.SelectedTags()); n > 0 {
		header = fmt.Sprintf("Tasks (%d pending, %d tag filters)", pending, n)
	}
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(header) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", max(width-4, 1))) + "\n\n"

	if m.loading && len(m.tasks) == 0 {
		s += HelpStyle.Render("  Loading tasks...")
	} else if len(m.tasks) == 0 {
		s += HelpStyle.Render("  No tasks. Press 'a' to add one.")
	}

	for i, t := range m.tasks {
		cursor := "  "
		style := TaskItemStyle
		if i == m.taskCursor && m.pane == PaneTaskList {
			cursor = "❯ "
			style = TaskItemSelectedStyle
		}

		line := cursor + taskLine(t, width-6)
		if t.Completed && !(i == m.taskCursor && m.pane == PaneTaskList) {
			s += TaskDoneStyle.Render(line) + "\n"
		} else {
			s += style.Render(line) + "\n"
		}
	}

	return TaskListStyle.Width(width).Height(m.height - 2).Render(s)
}

func taskLine(t model.Task, width int) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format("Jan 2")
		switch {
		case t.IsOverdue():
			due = OverdueStyle.Render(due + " !")
		case t.IsDue():
			due = DueSoonStyle.Render(due)
		}
	}

	var tags []string
	for _, tag := range t.Tags {
		tags = append(tags, "#"+tag.Name)
	}

	line := fmt.Sprintf("%s %s %s", check, FormatPriority(t.Priority), truncate(t.Title, max(width-20, 10)))
	if due != "" {
		line += "  " + due
	}
	if len(tags) > 0 {
		line += "  " + HelpStyle.Render(strings.Join(tags, " "))
	}
	return line
}

func (m Model) renderStatusBar() string {
	left := m.message
	if left == "" {
		left = time.Now().Format("15:04")
	}
	right := "?  help   q quit"

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return StatusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderModal() string {
	var s string
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("New task") + "\n\n"
	s += m.input.View() + "\n\n"
	s += HelpStyle.Render("enter save   esc cancel")
	return ModalStyle.Render(s)
}

func (m Model) renderConfirmDelete() string {
	var s string
	s += lipgloss.NewStyle().Bold(true).Foreground(Overdue).Render("Delete task?") + "\n\n"
	s += fmt.Sprintf("  %q\n\n", truncate(m.pendingDeleteTitle, 40))
	s += HelpStyle.Render("y/enter delete   esc cancel")
	return ModalStyle.Render(s)
}

func (m Model) renderHelp() string {
	rows := []struct{ key, desc string }{
		{"↑/k ↓/j", "move"},
		{"tab ←/→", "switch pane"},
		{"space", "select tag / toggle task"},
		{"x", "toggle task done"},
		{"a", "add task"},
		{"d", "delete task"},
		{"c", "clear tag filter"},
		{"r", "refresh from server"},
		{"q", "quit"},
	}

	var s string
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("Keys") + "\n\n"
	for _, r := range rows {
		s += fmt.Sprintf("  %-10s %s\n", r.key, HelpStyle.Render(r.desc))
	}
	s += "\n" + HelpStyle.Render("press any key to close")

	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		ModalStyle.Render(s),
		lipgloss.WithWhitespaceChars(" "),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
