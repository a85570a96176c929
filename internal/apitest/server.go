// Package apitest runs an in-memory double of the remote task API
// for client, session, and engine tests. It speaks the same REST
// contract over real HTTP via httptest.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/taskdeck/internal/model"
)

type userRecord struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Server is the fake API. Exported hook fields let tests inject
// failures and observe traffic; set them before issuing requests.
type Server struct {
	mu   sync.Mutex
	http *httptest.Server

	users  map[string]*userRecord // by email
	tokens map[string]string      // token -> user id
	tasks  map[string]*model.Task // by id
	tags   map[string]*model.Tag  // by id

	requests int

	// FailToggle makes PATCH /tasks/{id}/complete return 500.
	FailToggle bool
	// FailList makes GET /tasks/ return 500.
	FailList bool
	// RejectLogins makes /auth/signin return 401 for everyone.
	RejectLogins bool
	// OnListTasks runs before a task list request is answered.
	OnListTasks func(tagIDs []string)
}

// New starts the fake server and registers its shutdown with t.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		users:  make(map[string]*userRecord),
		tokens: make(map[string]string),
		tasks:  make(map[string]*model.Task),
		tags:   make(map[string]*model.Tag),
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.mu.Lock()
			s.requests++
			s.mu.Unlock()
			return next(c)
		}
	})

	api := e.Group("/api/v1")
	api.POST("/auth/signin", s.handleSignIn)
	api.POST("/auth/", s.handleRegister)

	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/tasks/", s.handleListTasks)
	protected.POST("/tasks/", s.handleCreateTask)
	protected.GET("/tasks/upcoming/:hours", s.handleUpcoming)
	protected.GET("/tasks/:id", s.handleGetTask)
	protected.PUT("/tasks/:id", s.handleUpdateTask)
	protected.DELETE("/tasks/:id", s.handleDeleteTask)
	protected.PATCH("/tasks/:id/complete", s.handleToggleTask)
	protected.GET("/tags/", s.handleListTags)
	protected.POST("/tags/", s.handleCreateTag)
	protected.GET("/tags/:id", s.handleGetTag)
	protected.PUT("/tags/:id", s.handleUpdateTag)
	protected.DELETE("/tags/:id", s.handleDeleteTag)

	s.http = httptest.NewServer(e)
	t.Cleanup(s.http.Close)
	return s
}

// URL returns the base URL of the fake server.
func (s *Server) URL() string {
	return s.http.URL
}

// Requests returns the number of HTTP requests received so far.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// SeedUser registers an account directly and returns its id.
func (s *Server) SeedUser(t *testing.T, email, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &userRecord{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.users[email] = u
	return u.ID
}

// SeedToken issues a valid token for the given user id.
func (s *Server) SeedToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.New().String()
	s.tokens[token] = userID
	return token
}

// SeedTask inserts a task owned by the given user.
func (s *Server) SeedTask(ownerID string, task model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	now := time.Now().UTC()
	task.OwnerID = ownerID
	task.CreatedAt = now
	task.UpdatedAt = now
	copied := task
	s.tasks[task.ID] = &copied
	return copied
}

// SeedTag inserts a tag owned by the given user.
func (s *Server) SeedTag(ownerID, name string) model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	tag := model.Tag{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tags[tag.ID] = &tag
	return tag
}

// Task returns the server's copy of a task.
func (s *Server) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return *t, true
}

func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		}
		s.mu.Lock()
		userID, ok := s.tokens[strings.TrimPrefix(auth, "Bearer ")]
		s.mu.Unlock()
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
		c.Set("user_id", userID)
		return next(c)
	}
}

func (s *Server) handleSignIn(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	s.mu.Lock()
	reject := s.RejectLogins
	u := s.users[email]
	s.mu.Unlock()

	if reject || u == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	token := s.SeedToken(u.ID)
	return c.JSON(http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and password required"})
	}

	s.mu.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
	}
	s.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	u := &userRecord{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.mu.Lock()
	s.users[req.Email] = u
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{
		"id":         u.ID,
		"email":      u.Email,
		"created_at": u.CreatedAt.Format(time.RFC3339),
	})
}
