package model

import "net/url"

// Task list sort keys accepted by the API
const (
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"
	SortByTitle     = "title"
	SortByCreatedAt = "created_at"
)

// Task status filter values accepted by the API
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// TaskFilters narrows a task list request. Zero values mean
// "no constraint"; all provided filters are ANDed server-side.
type TaskFilters struct {
	Search    string
	Status    string
	Priority  Priority
	DateFrom  string
	DateTo    string
	SortBy    string
	SortOrder string
	TagIDs    []string
}

// Query encodes the filters as URL query parameters. An empty
// TagIDs set contributes nothing, i.e. no tag filter.
func (f TaskFilters) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	if f.SortBy != "" {
		q.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sort_order", f.SortOrder)
	}
	for _, id := range f.TagIDs {
		q.Add("tag_ids", id)
	}
	return q
}
