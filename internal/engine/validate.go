package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/existflow/taskdeck/internal/model"
)

const (
	minTitleLen   = 3
	maxDescrLen   = 500
	maxTagNameLen = 50
)

// Date layouts accepted from user input, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func validateTitle(title string) *ValidationError {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(trimmed) < minTitleLen {
		return &ValidationError{Field: "title", Message: "Title must be at least 3 characters"}
	}
	return nil
}

func validateDescription(descr string) *ValidationError {
	if utf8.RuneCountInString(strings.TrimSpace(descr)) > maxDescrLen {
		return &ValidationError{Field: "description", Message: "Description must be less than 500 characters"}
	}
	return nil
}

// validateCreate checks every field of a create request.
func validateCreate(req model.CreateTaskRequest) error {
	if err := validateTitle(req.Title); err != nil {
		return err
	}
	if err := validateDescription(req.Description); err != nil {
		return err
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return &ValidationError{Field: "priority", Message: "Priority must be low, medium, or high"}
	}
	if req.DueDate != "" && !parseDate(req.DueDate) {
		return &ValidationError{Field: "due_date", Message: "Due date is not a valid date"}
	}
	if req.RecurrencePattern != "" && !req.RecurrencePattern.Valid() {
		return &ValidationError{Field: "recurrence_pattern", Message: "Recurrence must be daily, weekly, or monthly"}
	}
	if req.RecurrenceEndDate != "" && !parseDate(req.RecurrenceEndDate) {
		return &ValidationError{Field: "recurrence_end_date", Message: "Recurrence end date is not a valid date"}
	}
	return nil
}

// validateUpdate checks only the fields present in a partial update.
func validateUpdate(req model.UpdateTaskRequest) error {
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return err
		}
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return &ValidationError{Field: "priority", Message: "Priority must be low, medium, or high"}
	}
	if req.DueDate != nil && *req.DueDate != "" && !parseDate(*req.DueDate) {
		return &ValidationError{Field: "due_date", Message: "Due date is not a valid date"}
	}
	if req.RecurrencePattern != nil && *req.RecurrencePattern != "" && !req.RecurrencePattern.Valid() {
		return &ValidationError{Field: "recurrence_pattern", Message: "Recurrence must be daily, weekly, or monthly"}
	}
	if req.RecurrenceEndDate != nil && *req.RecurrenceEndDate != "" && !parseDate(*req.RecurrenceEndDate) {
		return &ValidationError{Field: "recurrence_end_date", Message: "Recurrence end date is not a valid date"}
	}
	return nil
}

func validateTagName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Field: "name", Message: "Tag name is required"}
	}
	if utf8.RuneCountInString(trimmed) > maxTagNameLen {
		return &ValidationError{Field: "name", Message: "Tag name must be less than 50 characters"}
	}
	return nil
}
