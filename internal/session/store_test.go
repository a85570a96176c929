package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/apitest"
)

func newTestStore(t *testing.T, srv *apitest.Server) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	return NewStoreAt(api.NewClient(srv.URL()), path), path
}

func TestLoginPersistsSession(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedUser(t, "dev@example.com", "secret")
	store, path := newTestStore(t, srv)

	if store.State() != Anonymous {
		t.Fatalf("expected anonymous before login, got %s", store.State())
	}

	if err := store.Login(context.Background(), "dev@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if store.State() != Authenticated {
		t.Errorf("expected authenticated, got %s", store.State())
	}
	if store.Token() == "" {
		t.Error("expected a token after login")
	}
	if store.User().Email != "dev@example.com" {
		t.Errorf("expected user email, got %q", store.User().Email)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 session file, got %v", info.Mode().Perm())
	}

	var p struct {
		Token string `json:"auth_token"`
	}
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &p); err != nil || p.Token != store.Token() {
		t.Errorf("persisted token mismatch: %q vs %q", p.Token, store.Token())
	}

	// A fresh store at the same path hydrates the session.
	again := NewStoreAt(api.NewClient(srv.URL()), path)
	if !again.IsAuthenticated() || again.Token() != store.Token() {
		t.Error("expected hydrated session from disk")
	}
	if again.User().Email != "dev@example.com" {
		t.Errorf("expected hydrated user, got %q", again.User().Email)
	}
}

func TestLoginFailureStaysAnonymous(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedUser(t, "dev@example.com", "secret")
	store, path := newTestStore(t, srv)

	err := store.Login(context.Background(), "dev@example.com", "wrong")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if store.State() != Anonymous || store.Token() != "" {
		t.Error("failed login must leave the store anonymous")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed login must not persist anything")
	}
}

func TestRegisterSignsInAutomatically(t *testing.T) {
	srv := apitest.New(t)
	store, path := newTestStore(t, srv)

	if err := store.Register(context.Background(), "new@example.com", "secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !store.IsAuthenticated() {
		t.Error("expected authenticated after register")
	}
	if store.User().ID == "" {
		t.Error("expected user id from registration")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected persisted session: %v", err)
	}
}

func TestRegisterWithFailingSignIn(t *testing.T) {
	srv := apitest.New(t)
	srv.RejectLogins = true
	store, path := newTestStore(t, srv)

	err := store.Register(context.Background(), "new@example.com", "secret")
	if err == nil {
		t.Fatal("expected failure when post-registration sign-in is rejected")
	}
	if err.Error() != "registration succeeded but sign-in failed" {
		t.Errorf("unexpected error text: %q", err.Error())
	}
	if store.State() != Anonymous || store.Token() != "" {
		t.Error("store must stay anonymous when sign-in fails")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("nothing may be persisted when sign-in fails")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedUser(t, "taken@example.com", "secret")
	store, _ := newTestStore(t, srv)

	err := store.Register(context.Background(), "taken@example.com", "secret")
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if store.State() != Anonymous {
		t.Error("store must stay anonymous")
	}
}

func TestHydrateIgnoresMalformedFile(t *testing.T) {
	srv := apitest.New(t)
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStoreAt(api.NewClient(srv.URL()), path)
	if store.State() != Anonymous || store.Token() != "" {
		t.Error("malformed session file must be treated as absent")
	}
}

func TestHydrateIgnoresEmptyToken(t *testing.T) {
	srv := apitest.New(t)
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"auth_token":"","user":{"email":"x@y.z"}}`), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStoreAt(api.NewClient(srv.URL()), path)
	if store.IsAuthenticated() {
		t.Error("a record without a token must not authenticate")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedUser(t, "dev@example.com", "secret")
	store, path := newTestStore(t, srv)

	if err := store.Login(context.Background(), "dev@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := store.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if store.State() != Anonymous || store.Token() != "" {
		t.Error("expected anonymous after logout")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file must be removed on logout")
	}

	// Logging out again is a no-op.
	if err := store.Logout(); err != nil {
		t.Errorf("repeat Logout: %v", err)
	}
}
