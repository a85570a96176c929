package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/taskdeck/internal/engine"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
)

// tagsLoadedMsg carries the tag list fetched at startup or after a change
type tagsLoadedMsg struct {
	tags []model.Tag
	err  error
}

// tasksRefreshedMsg carries the outcome of a list fetch. applied is false
// when a newer filter change superseded this fetch before it landed.
type tasksRefreshedMsg struct {
	tasks   []model.Task
	applied bool
	err     error
}

type taskToggledMsg struct {
	task model.Task
	err  error
}

type taskDeletedMsg struct {
	title string
	err   error
}

type taskCreatedMsg struct {
	task model.Task
	err  error
}

// Init kicks off the initial tag and task loads
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTagsCmd(), m.refreshCmd())
}

func (m Model) loadTagsCmd() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		tags, err := eng.Tags(context.Background())
		return tagsLoadedMsg{tags: tags, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		applied, err := eng.Refresh(context.Background(), model.TaskFilters{})
		return tasksRefreshedMsg{tasks: eng.Tasks(), applied: applied, err: err}
	}
}

func (m Model) toggleTaskCmd(id string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		task, err := eng.ToggleCompletion(context.Background(), id)
		return taskToggledMsg{task: task, err: err}
	}
}

func (m Model) deleteTaskCmd(id, title string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		err := eng.Delete(context.Background(), id)
		return taskDeletedMsg{title: title, err: err}
	}
}

func (m Model) createTaskCmd(title string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		task, err := eng.Create(context.Background(), model.CreateTaskRequest{Title: title})
		return taskCreatedMsg{task: task, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tagsLoadedMsg:
		if msg.err != nil {
			m.message = friendly(msg.err)
			return m, nil
		}
		m.tags = msg.tags
		m.clampCursors()
		return m, nil

	case tasksRefreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.message = friendly(msg.err)
			return m, nil
		}
		if !msg.applied {
			logger.Debug("Ignoring superseded refresh result")
			return m, nil
		}
		m.tasks = msg.tasks
		m.clampCursors()
		return m, nil

	case taskToggledMsg:
		if msg.err != nil {
			m.message = friendly(msg.err)
			return m, nil
		}
		m.tasks = m.engine.Tasks()
		if msg.task.Completed {
			m.message = fmt.Sprintf("Completed %q", msg.task.Title)
		} else {
			m.message = fmt.Sprintf("Reopened %q", msg.task.Title)
		}
		m.clampCursors()
		return m, nil

	case taskDeletedMsg:
		if msg.err != nil {
			m.message = friendly(msg.err)
			return m, nil
		}
		m.tasks = m.engine.Tasks()
		m.message = fmt.Sprintf("Deleted %q", msg.title)
		m.clampCursors()
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			m.message = friendly(msg.err)
			return m, nil
		}
		m.message = fmt.Sprintf("Added %q", msg.task.Title)
		// The server owns list membership, so re-fetch instead of appending.
		return m, m.refreshCmd()

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask:
			return m.updateInput(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneSidebar {
			m.pane = PaneTaskList
		} else {
			m.pane = PaneSidebar
		}
		return m, nil

	case key.Matches(msg, keys.Left):
		m.pane = PaneSidebar
		return m, nil

	case key.Matches(msg, keys.Right):
		m.pane = PaneTaskList
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.pane == PaneSidebar && m.tagCursor > 0 {
			m.tagCursor--
		} else if m.pane == PaneTaskList && m.taskCursor > 0 {
			m.taskCursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.pane == PaneSidebar && m.tagCursor < len(m.tags)-1 {
			m.tagCursor++
		} else if m.pane == PaneTaskList && m.taskCursor < len(m.tasks)-1 {
			m.taskCursor++
		}
		return m, nil

	case key.Matches(msg, keys.Toggle):
		if m.pane == PaneSidebar {
			tag := m.currentTag()
			if tag == nil {
				return m, nil
			}
			if m.engine.ToggleTag(tag.ID) {
				m.message = fmt.Sprintf("Filtering on #%s", tag.Name)
			} else {
				m.message = fmt.Sprintf("Removed #%s from filter", tag.Name)
			}
			m.loading = true
			return m, m.refreshCmd()
		}
		if task := m.currentTask(); task != nil {
			return m, m.toggleTaskCmd(task.ID)
		}
		return m, nil

	case key.Matches(msg, keys.Done):
		if task := m.currentTask(); task != nil {
			return m, m.toggleTaskCmd(task.ID)
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		// Deletion fires only after the confirm step.
		if task := m.currentTask(); task != nil {
			m.mode = ModeConfirmDelete
			m.pendingDeleteID = task.ID
			m.pendingDeleteTitle = task.Title
		}
		return m, nil

	case key.Matches(msg, keys.Clear):
		m.engine.ClearTags()
		m.message = "Tag filter cleared"
		m.loading = true
		return m, m.refreshCmd()

	case key.Matches(msg, keys.Add):
		m.mode = ModeAddTask
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.Refresh):
		m.loading = true
		m.message = "Refreshing..."
		return m, tea.Batch(m.loadTagsCmd(), m.refreshCmd())
	}

	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id, title := m.pendingDeleteID, m.pendingDeleteTitle
	m.mode = ModeNormal
	m.pendingDeleteID = ""
	m.pendingDeleteTitle = ""

	switch {
	case msg.Type == tea.KeyEnter, msg.String() == "y", msg.String() == "Y":
		return m, m.deleteTaskCmd(id, title)
	default:
		m.message = "Cancelled."
		return m, nil
	}
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		m.mode = ModeNormal
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		return m, m.createTaskCmd(title)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func friendly(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, engine.ErrUnauthenticated) {
		return "Not signed in. Quit and run: taskdeck auth login"
	}
	if verr, ok := engine.IsValidation(err); ok {
		return verr.Message
	}
	return err.Error()
}
