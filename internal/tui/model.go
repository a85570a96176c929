package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/taskdeck/internal/engine"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/session"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneTaskList
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeConfirmDelete
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	engine  *engine.Engine
	session *session.Store

	tags  []model.Tag
	tasks []model.Task

	// UI state
	width      int
	height     int
	pane       Pane
	mode       Mode
	tagCursor  int
	taskCursor int
	loading    bool

	// Input
	input textinput.Model

	// Delete pending confirmation
	pendingDeleteID    string
	pendingDeleteTitle string

	message string
}

// NewModel creates the TUI model. Data arrives asynchronously via Init.
func NewModel(eng *engine.Engine, sess *session.Store) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Enter task title..."
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		engine:  eng,
		session: sess,
		pane:    PaneTaskList,
		mode:    ModeNormal,
		input:   ti,
		loading: true,
	}
}

func (m *Model) currentTag() *model.Tag {
	if m.tagCursor < len(m.tags) {
		return &m.tags[m.tagCursor]
	}
	return nil
}

func (m *Model) currentTask() *model.Task {
	if m.taskCursor < len(m.tasks) {
		return &m.tasks[m.taskCursor]
	}
	return nil
}

func (m *Model) clampCursors() {
	if m.taskCursor >= len(m.tasks) {
		m.taskCursor = len(m.tasks) - 1
	}
	if m.taskCursor < 0 {
		m.taskCursor = 0
	}
	if m.tagCursor >= len(m.tags) {
		m.tagCursor = len(m.tags) - 1
	}
	if m.tagCursor < 0 {
		m.tagCursor = 0
	}
}
