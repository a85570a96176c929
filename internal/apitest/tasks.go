package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/existflow/taskdeck/internal/model"
)

func (s *Server) handleListTasks(c echo.Context) error {
	ownerID := c.Get("user_id").(string)
	q := c.QueryParams()
	tagIDs := q["tag_ids"]

	if s.OnListTasks != nil {
		s.OnListTasks(tagIDs)
	}

	s.mu.Lock()
	if s.FailList {
		s.mu.Unlock()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "list rejected"})
	}
	var tasks []model.Task
	for _, t := range s.tasks {
		if t.OwnerID == ownerID && matchesFilters(t, q, tagIDs) {
			tasks = append(tasks, *t)
		}
	}
	s.mu.Unlock()

	sortTasks(tasks, q.Get("sort_by"), q.Get("sort_order"))
	if tasks == nil {
		tasks = []model.Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

func matchesFilters(t *model.Task, q map[string][]string, tagIDs []string) bool {
	get := func(key string) string {
		if v, ok := q[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	if search := get("search"); search != "" {
		needle := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	switch get("status") {
	case "completed":
		if !t.Completed {
			return false
		}
	case "pending":
		if t.Completed {
			return false
		}
	}
	if p := get("priority"); p != "" && string(t.Priority) != p {
		return false
	}
	if from := get("date_from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil && t.CreatedAt.Before(ts) {
			return false
		}
	}
	if to := get("date_to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil && t.CreatedAt.After(ts) {
			return false
		}
	}
	if len(tagIDs) > 0 {
		found := false
		for _, want := range tagIDs {
			for _, tag := range t.Tags {
				if tag.ID == want {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortTasks(tasks []model.Task, sortBy, order string) {
	less := func(a, b model.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch sortBy {
	case "due_date":
		less = func(a, b model.Task) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		}
	case "priority":
		rank := map[model.Priority]int{model.PriorityHigh: 0, model.PriorityMedium: 1, model.PriorityLow: 2}
		less = func(a, b model.Task) bool { return rank[a.Priority] < rank[b.Priority] }
	case "title":
		less = func(a, b model.Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if order == "desc" {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

func (s *Server) handleCreateTask(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	var req model.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "title required"})
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:                uuid.New().String(),
		Title:             req.Title,
		Description:       req.Description,
		Completed:         req.Completed,
		Priority:          priority,
		RecurrencePattern: req.RecurrencePattern,
		OwnerID:           ownerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.DueDate != "" {
		if ts, err := parseAnyDate(req.DueDate); err == nil {
			task.DueDate = &ts
		}
	}
	if req.RecurrenceEndDate != "" {
		if ts, err := parseAnyDate(req.RecurrenceEndDate); err == nil {
			task.RecurrenceEndDate = &ts
		}
	}

	s.mu.Lock()
	task.Tags = s.resolveTags(ownerID, req.TagIDs)
	s.tasks[task.ID] = &task
	s.mu.Unlock()

	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleGetTask(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	s.mu.Lock()
	t, ok := s.tasks[c.Param("id")]
	s.mu.Unlock()
	if !ok || t.OwnerID != ownerID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Task not found"})
	}
	return c.JSON(http.StatusOK, *t)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	var req model.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[c.Param("id")]
	if !ok || t.OwnerID != ownerID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Task not found"})
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			t.DueDate = nil
		} else if ts, err := parseAnyDate(*req.DueDate); err == nil {
			t.DueDate = &ts
		}
	}
	if req.RecurrencePattern != nil {
		t.RecurrencePattern = *req.RecurrencePattern
	}
	if req.RecurrenceEndDate != nil {
		if *req.RecurrenceEndDate == "" {
			t.RecurrenceEndDate = nil
		} else if ts, err := parseAnyDate(*req.RecurrenceEndDate); err == nil {
			t.RecurrenceEndDate = &ts
		}
	}
	if req.TagIDs != nil {
		t.Tags = s.resolveTags(ownerID, req.TagIDs)
	}
	t.UpdatedAt = time.Now().UTC()

	return c.JSON(http.StatusOK, *t)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[c.Param("id")]
	if !ok || t.OwnerID != ownerID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Task not found"})
	}
	delete(s.tasks, t.ID)
	return c.JSON(http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) handleToggleTask(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailToggle {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "toggle rejected"})
	}
	t, ok := s.tasks[c.Param("id")]
	if !ok || t.OwnerID != ownerID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Task not found"})
	}
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, *t)
}

func (s *Server) handleUpcoming(c echo.Context) error {
	ownerID := c.Get("user_id").(string)
	hours, err := strconv.Atoi(c.Param("hours"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	cutoff := time.Now().UTC().Add(time.Duration(hours) * time.Hour)

	s.mu.Lock()
	tasks := []model.Task{}
	for _, t := range s.tasks {
		if t.OwnerID != ownerID || t.Completed || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(cutoff) {
			tasks = append(tasks, *t)
		}
	}
	s.mu.Unlock()

	sortTasks(tasks, "due_date", "asc")
	return c.JSON(http.StatusOK, tasks)
}

// resolveTags maps tag ids to the owner's tags. Must be called with
// the mutex held.
func (s *Server) resolveTags(ownerID string, ids []string) []model.Tag {
	var tags []model.Tag
	for _, id := range ids {
		if tag, ok := s.tags[id]; ok && tag.OwnerID == ownerID {
			tags = append(tags, *tag)
		}
	}
	return tags
}

func parseAnyDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
