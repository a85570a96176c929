package apitest

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/existflow/taskdeck/internal/model"
)

func (s *Server) handleListTags(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	s.mu.Lock()
	tags := []model.Tag{}
	for _, tag := range s.tags {
		if tag.OwnerID == ownerID {
			tags = append(tags, *tag)
		}
	}
	s.mu.Unlock()

	sort.Slice(tags, func(i, j int) bool {
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
	return c.JSON(http.StatusOK, tags)
}

func (s *Server) handleGetTag(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	s.mu.Lock()
	tag, ok := s.tags[c.Param("id")]
	s.mu.Unlock()
	if !ok || tag.OwnerID != ownerID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Tag not found"})
	}
	return c.JSON(http.StatusOK, *tag)
}

func (s *Server) handleCreateTag(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	var req model.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "name required"})
	}

	now := time.Now().UTC()
	tag := model.Tag{
		ID:        uuid.New().String(),
		Name:      req.Name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.tags[tag.ID] = &tag
	s.mu.Unlock()

	return c.JSON(http.StatusOK, tag)
}

func (s *Server) handleUpdateTag(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	var req model.UpdateTagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tag, ok := s.tags[c.Param("id")]
	if !ok || tag.OwnerID != ownerID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Tag not found"})
	}
	if req.Name != nil {
		tag.Name = *req.Name
	}
	tag.UpdatedAt = time.Now().UTC()

	// Keep tag references embedded in tasks in step.
	for _, t := range s.tasks {
		for i := range t.Tags {
			if t.Tags[i].ID == tag.ID {
				t.Tags[i] = *tag
			}
		}
	}
	return c.JSON(http.StatusOK, *tag)
}

func (s *Server) handleDeleteTag(c echo.Context) error {
	ownerID := c.Get("user_id").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	tag, ok := s.tags[c.Param("id")]
	if !ok || tag.OwnerID != ownerID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Tag not found"})
	}
	delete(s.tags, tag.ID)

	for _, t := range s.tasks {
		for i := range t.Tags {
			if t.Tags[i].ID == tag.ID {
				t.Tags = append(t.Tags[:i], t.Tags[i+1:]...)
				break
			}
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Tag deleted successfully"})
}
