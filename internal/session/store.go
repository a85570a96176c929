// Package session owns the authentication token and user identity.
// Exactly one Store is shared by every component that issues
// authenticated requests; only the Store itself writes the token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/config"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
)

// State is the observable authentication state.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// persisted is the durable session record on disk.
type persisted struct {
	Token string     `json:"auth_token"`
	User  model.User `json:"user"`
}

// Store holds the session and persists it across runs.
type Store struct {
	mu    sync.Mutex
	api   *api.Client
	path  string
	state State
	token string
	user  model.User
}

// NewStore creates the store and hydrates any session persisted at
// ~/.taskdeck/session.json. No network call is made; a malformed
// record is treated as absent.
func NewStore(client *api.Client) (*Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(client, filepath.Join(dir, "session.json")), nil
}

// NewStoreAt creates a store backed by the given file path.
func NewStoreAt(client *api.Client, path string) *Store {
	s := &Store{api: client, path: path, state: Anonymous}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil || p.Token == "" {
		logger.Warn("Ignoring malformed session file", logger.F("path", s.path))
		return
	}
	s.token = p.Token
	s.user = p.User
	s.state = Authenticated
}

func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(persisted{Token: s.token, User: s.user}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Token returns the current token, empty when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current user profile.
func (s *Store) User() model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// State returns the current authentication state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// begin moves the store into Authenticating if it isn't mid-exchange.
func (s *Store) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Authenticating {
		return errors.New("credential exchange already in progress")
	}
	s.state = Authenticating
	return nil
}

// fail reverts to Anonymous without touching persisted state.
func (s *Store) fail() {
	s.mu.Lock()
	s.state = Anonymous
	s.mu.Unlock()
}

// complete stores the session and persists it.
func (s *Store) complete(token string, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.state = Authenticated
	if err := s.persist(); err != nil {
		logger.Error("Failed to persist session", logger.F("error", err))
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and persists the session.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.begin(); err != nil {
		return err
	}

	res := s.api.SignIn(ctx, email, password)
	if !res.Success {
		s.fail()
		logger.Info("Login failed", logger.F("status", res.Status))
		if res.Error != "" {
			return errors.New(res.Error)
		}
		return errors.New("Login failed")
	}

	logger.Info("Logged in", logger.F("email", email))
	return s.complete(res.Data.AccessToken, model.User{Email: email})
}

// Register creates an account, then signs in with the same
// credentials. Registration without a usable session is reported
// as a failure and leaves the store anonymous.
func (s *Store) Register(ctx context.Context, email, password string) error {
	if err := s.begin(); err != nil {
		return err
	}

	reg := s.api.Register(ctx, email, password)
	if !reg.Success {
		s.fail()
		logger.Info("Registration failed", logger.F("status", reg.Status))
		if reg.Error != "" {
			return errors.New(reg.Error)
		}
		return errors.New("Registration failed")
	}

	login := s.api.SignIn(ctx, email, password)
	if !login.Success {
		s.fail()
		logger.Warn("Post-registration sign-in failed", logger.F("status", login.Status))
		return errors.New("registration succeeded but sign-in failed")
	}

	logger.Info("Registered", logger.F("email", email))
	return s.complete(login.Data.AccessToken, model.User{ID: reg.Data.ID, Email: email})
}

// Logout clears the session and its persisted record. Safe to call
// when already anonymous.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = model.User{}
	s.state = Anonymous

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logger.Info("Logged out")
	return nil
}
