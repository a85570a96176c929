package model

import "time"

// Priority levels for tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Recurrence patterns for repeating tasks
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Valid reports whether r is one of the known recurrence patterns.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Task is a single todo item as served by the API
type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Completed         bool       `json:"completed"`
	Priority          Priority   `json:"priority"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	RecurrencePattern Recurrence `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
	OwnerID           string     `json:"owner_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Tags              []Tag      `json:"tags,omitempty"`
}

// TagIDs returns the ids of the task's tags.
func (t *Task) TagIDs() []string {
	ids := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

// IsDue returns true if the task is due today or overdue
func (t *Task) IsDue() bool {
	if t.DueDate == nil {
		return false
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return t.DueDate.Before(today.Add(24 * time.Hour))
}

// IsOverdue returns true if the task is past its due date
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(time.Now())
}

// CreateTaskRequest carries the fields for creating a task.
// Dates are strings as entered by the user; the engine validates
// them before anything is sent over the wire.
type CreateTaskRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Completed         bool       `json:"completed,omitempty"`
	Priority          Priority   `json:"priority,omitempty"`
	DueDate           string     `json:"due_date,omitempty"`
	RecurrencePattern Recurrence `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate string     `json:"recurrence_end_date,omitempty"`
	TagIDs            []string   `json:"tag_ids,omitempty"`
}

// UpdateTaskRequest carries a partial update. Nil fields are omitted
// from the request body and left untouched server-side.
type UpdateTaskRequest struct {
	Title             *string     `json:"title,omitempty"`
	Description       *string     `json:"description,omitempty"`
	Completed         *bool       `json:"completed,omitempty"`
	Priority          *Priority   `json:"priority,omitempty"`
	DueDate           *string     `json:"due_date,omitempty"`
	RecurrencePattern *Recurrence `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *string     `json:"recurrence_end_date,omitempty"`
	TagIDs            []string    `json:"tag_ids,omitempty"`
}
