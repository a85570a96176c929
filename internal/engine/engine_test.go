package engine

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/apitest"
	"github.com/existflow/taskdeck/internal/cache"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/session"
)

// newTestEngine starts a fake server and returns an engine holding a
// valid session for a seeded user.
func newTestEngine(t *testing.T) (*Engine, *apitest.Server, string) {
	t.Helper()

	srv := apitest.New(t)
	userID := srv.SeedUser(t, "dev@example.com", "secret")
	token := srv.SeedToken(userID)

	client := api.NewClient(srv.URL())
	store := session.NewStoreAt(client, seedSessionFile(t, token, userID))
	if !store.IsAuthenticated() {
		t.Fatal("expected seeded session to be authenticated")
	}
	return New(client, store), srv, userID
}

func seedSessionFile(t *testing.T, token, userID string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	data, err := json.Marshal(map[string]any{
		"auth_token": token,
		"user":       map[string]string{"id": userID, "email": "dev@example.com"},
	})
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write session: %v", err)
	}
	return path
}

func TestCreateRejectsShortTitleBeforeNetwork(t *testing.T) {
	eng, srv, _ := newTestEngine(t)

	_, err := eng.Create(context.Background(), model.CreateTaskRequest{Title: "ab"})
	verr, ok := IsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "title" {
		t.Errorf("expected field title, got %q", verr.Field)
	}
	if got := srv.Requests(); got != 0 {
		t.Errorf("expected no HTTP requests for invalid input, got %d", got)
	}
}

func TestCreateRejectsBadDueDateBeforeNetwork(t *testing.T) {
	eng, srv, _ := newTestEngine(t)

	_, err := eng.Create(context.Background(), model.CreateTaskRequest{
		Title:   "buy milk",
		DueDate: "next tuesday",
	})
	verr, ok := IsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "due_date" {
		t.Errorf("expected field due_date, got %q", verr.Field)
	}
	if got := srv.Requests(); got != 0 {
		t.Errorf("expected no HTTP requests for invalid input, got %d", got)
	}
}

func TestUpdateValidatesOnlyProvidedFields(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	task := srv.SeedTask(userID, model.Task{Title: "write report"})

	// A partial update with no invalid fields goes through untouched.
	descr := "for the quarterly review"
	updated, err := eng.Update(context.Background(), task.ID, model.UpdateTaskRequest{Description: &descr})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "write report" {
		t.Errorf("expected title preserved, got %q", updated.Title)
	}
	if updated.Description != descr {
		t.Errorf("expected description %q, got %q", descr, updated.Description)
	}

	// A bad date in the partial update is caught before the wire.
	before := srv.Requests()
	bad := "not-a-date"
	_, err = eng.Update(context.Background(), task.ID, model.UpdateTaskRequest{DueDate: &bad})
	if verr, ok := IsValidation(err); !ok || verr.Field != "due_date" {
		t.Fatalf("expected due_date ValidationError, got %v", err)
	}
	if got := srv.Requests(); got != before {
		t.Errorf("expected no HTTP request for invalid update, got %d new", got-before)
	}
}

func TestToggleFailureLeavesListUntouched(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	task := srv.SeedTask(userID, model.Task{Title: "water plants"})
	srv.FailToggle = true

	if _, err := eng.Refresh(context.Background(), model.TaskFilters{}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	_, err := eng.ToggleCompletion(context.Background(), task.ID)
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if IsNotFound(err) {
		t.Error("a 500 must not look like a not-found")
	}

	held := eng.Tasks()
	if len(held) != 1 || held[0].Completed {
		t.Errorf("held list changed after rejected toggle: %+v", held)
	}
}

func TestToggleSuccessReplacesWithServerCopy(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	task := srv.SeedTask(userID, model.Task{Title: "water plants"})

	if _, err := eng.Refresh(context.Background(), model.TaskFilters{}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	toggled, err := eng.ToggleCompletion(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("ToggleCompletion: %v", err)
	}
	if !toggled.Completed {
		t.Fatal("expected task completed after toggle")
	}

	held := eng.Tasks()
	if len(held) != 1 || !held[0].Completed {
		t.Errorf("held list not updated with server copy: %+v", held)
	}

	// A second toggle flips it back.
	toggled, err = eng.ToggleCompletion(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("second ToggleCompletion: %v", err)
	}
	if toggled.Completed {
		t.Error("expected task reopened after second toggle")
	}
}

func TestTagFilterRoundTrip(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	work := srv.SeedTag(userID, "work")
	tagged := srv.SeedTask(userID, model.Task{Title: "file expenses", Tags: []model.Tag{work}})
	srv.SeedTask(userID, model.Task{Title: "walk the dog"})

	ctx := context.Background()

	if _, err := eng.Refresh(ctx, model.TaskFilters{}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := len(eng.Tasks()); got != 2 {
		t.Fatalf("expected 2 tasks unfiltered, got %d", got)
	}

	if !eng.ToggleTag(work.ID) {
		t.Fatal("expected tag selected after toggle")
	}
	if _, err := eng.Refresh(ctx, model.TaskFilters{}); err != nil {
		t.Fatalf("filtered Refresh: %v", err)
	}
	held := eng.Tasks()
	if len(held) != 1 || held[0].ID != tagged.ID {
		t.Fatalf("expected only the tagged task, got %+v", held)
	}

	// Deselecting restores the unfiltered list.
	if eng.ToggleTag(work.ID) {
		t.Fatal("expected tag deselected after second toggle")
	}
	if _, err := eng.Refresh(ctx, model.TaskFilters{}); err != nil {
		t.Fatalf("unfiltered Refresh: %v", err)
	}
	if got := len(eng.Tasks()); got != 2 {
		t.Errorf("expected 2 tasks after deselect, got %d", got)
	}
	if got := len(eng.SelectedTags()); got != 0 {
		t.Errorf("expected empty selection, got %v", eng.SelectedTags())
	}
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	work := srv.SeedTag(userID, "work")
	srv.SeedTask(userID, model.Task{Title: "file expenses", Tags: []model.Tag{work}})
	srv.SeedTask(userID, model.Task{Title: "walk the dog"})

	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	srv.OnListTasks = func([]string) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	// Start an unfiltered fetch and hold it server-side.
	done := make(chan struct{})
	var applied bool
	var err error
	go func() {
		applied, err = eng.Refresh(ctx, model.TaskFilters{})
		close(done)
	}()
	<-entered

	// The filter changes while the fetch is in flight.
	eng.ToggleTag(work.ID)
	close(release)
	<-done

	if err != nil {
		t.Fatalf("stale Refresh errored: %v", err)
	}
	if applied {
		t.Fatal("stale refresh must not be applied after a filter change")
	}
	if got := len(eng.Tasks()); got != 0 {
		t.Errorf("stale result leaked into held list: %d tasks", got)
	}

	// The refresh issued after the change lands normally.
	applied, err = eng.Refresh(ctx, model.TaskFilters{})
	if err != nil || !applied {
		t.Fatalf("post-change Refresh: applied=%v err=%v", applied, err)
	}
	if got := len(eng.Tasks()); got != 1 {
		t.Errorf("expected 1 task under tag filter, got %d", got)
	}
}

func TestStaleRefreshFailureIsDiscarded(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	work := srv.SeedTag(userID, "work")
	srv.FailList = true

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	srv.OnListTasks = func([]string) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	done := make(chan struct{})
	var applied bool
	var err error
	go func() {
		applied, err = eng.Refresh(context.Background(), model.TaskFilters{})
		close(done)
	}()
	<-entered

	eng.ToggleTag(work.ID)
	close(release)
	<-done

	// The 500 belongs to a fetch the filter change superseded; it must
	// be swallowed along with the stale result, not surfaced.
	if err != nil {
		t.Fatalf("superseded failure leaked: %v", err)
	}
	if applied {
		t.Fatal("superseded fetch must not be applied")
	}
}

func TestGetDistinguishesNotFound(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	task := srv.SeedTask(userID, model.Task{Title: "write report"})

	got, err := eng.Get(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != task.ID {
		t.Errorf("expected task %s, got %s", task.ID, got.ID)
	}

	_, err = eng.Get(context.Background(), "no-such-id")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	var serr *ServerError
	if errors.As(err, &serr) {
		t.Error("a 404 must not surface as ServerError")
	}
}

func TestUnauthenticatedShortCircuits(t *testing.T) {
	srv := apitest.New(t)
	client := api.NewClient(srv.URL())
	store := session.NewStoreAt(client, filepath.Join(t.TempDir(), "session.json"))
	eng := New(client, store)

	ctx := context.Background()
	if _, err := eng.Refresh(ctx, model.TaskFilters{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Refresh: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := eng.Create(ctx, model.CreateTaskRequest{Title: "buy milk"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Create: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := eng.Tags(ctx); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Tags: expected ErrUnauthenticated, got %v", err)
	}
	if got := srv.Requests(); got != 0 {
		t.Errorf("expected no HTTP requests while anonymous, got %d", got)
	}
}

func TestCreateDoesNotMergeIntoHeldList(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	srv.SeedTask(userID, model.Task{Title: "existing task"})

	ctx := context.Background()
	if _, err := eng.Refresh(ctx, model.TaskFilters{}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	created, err := eng.Create(ctx, model.CreateTaskRequest{Title: "brand new task"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if got := len(eng.Tasks()); got != 1 {
		t.Errorf("created task must not be merged into the held list, got %d entries", got)
	}

	// It shows up on the next refresh.
	if _, err := eng.Refresh(ctx, model.TaskFilters{}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := len(eng.Tasks()); got != 2 {
		t.Errorf("expected 2 tasks after refresh, got %d", got)
	}
}

func TestDeleteDropsFromHeldList(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	task := srv.SeedTask(userID, model.Task{Title: "old task"})
	keep := srv.SeedTask(userID, model.Task{Title: "keep me"})

	ctx := context.Background()
	if _, err := eng.Refresh(ctx, model.TaskFilters{}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := eng.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	held := eng.Tasks()
	if len(held) != 1 || held[0].ID != keep.ID {
		t.Errorf("expected only %s after delete, got %+v", keep.ID, held)
	}

	if err := eng.Delete(ctx, task.ID); !IsNotFound(err) {
		t.Errorf("expected NotFoundError deleting twice, got %v", err)
	}
}

func TestCachedTagsServeSnapshot(t *testing.T) {
	eng, srv, userID := newTestEngine(t)

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})
	eng.SetCache(c)

	srv.SeedTag(userID, "work")
	srv.SeedTag(userID, "home")

	ctx := context.Background()
	if _, err := eng.Tags(ctx); err != nil {
		t.Fatalf("Tags: %v", err)
	}

	cached, err := eng.CachedTags(ctx)
	if err != nil {
		t.Fatalf("CachedTags: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("expected 2 cached tags, got %d", len(cached))
	}
	// Name-sorted by the server, preserved by the snapshot.
	if cached[0].Name != "home" || cached[1].Name != "work" {
		t.Errorf("cached tags mismatch: %+v", cached)
	}
}

func TestCachedTagsWithoutCache(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	tags, err := eng.CachedTags(context.Background())
	if err != nil {
		t.Fatalf("CachedTags without a cache: %v", err)
	}
	if tags != nil {
		t.Errorf("expected nil snapshot without a cache, got %v", tags)
	}
}

func TestGetTagByID(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	work := srv.SeedTag(userID, "work")

	tag, err := eng.GetTag(context.Background(), work.ID)
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if tag.Name != "work" {
		t.Errorf("expected tag work, got %q", tag.Name)
	}

	if _, err := eng.GetTag(context.Background(), "no-such-id"); !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteTagLeavesFilterSelection(t *testing.T) {
	eng, srv, userID := newTestEngine(t)
	work := srv.SeedTag(userID, "work")

	eng.ToggleTag(work.ID)
	if !eng.TagSelected(work.ID) {
		t.Fatal("expected tag selected")
	}

	if err := eng.DeleteTag(context.Background(), work.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if eng.TagSelected(work.ID) {
		t.Error("deleted tag must leave the filter selection")
	}
}

func TestUpcomingReturnsOpenTasksInWindow(t *testing.T) {
	eng, srv, userID := newTestEngine(t)

	soon := timePtr(t, 2)
	later := timePtr(t, 72)
	srv.SeedTask(userID, model.Task{Title: "due soon", DueDate: soon})
	srv.SeedTask(userID, model.Task{Title: "due later", DueDate: later})
	srv.SeedTask(userID, model.Task{Title: "done already", DueDate: soon, Completed: true})
	srv.SeedTask(userID, model.Task{Title: "no due date"})

	tasks, err := eng.Upcoming(context.Background(), 24)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "due soon" {
		t.Errorf("expected only the open task due within 24h, got %+v", tasks)
	}
}

func timePtr(t *testing.T, hoursAhead int) *time.Time {
	t.Helper()
	v := time.Now().UTC().Add(time.Duration(hoursAhead) * time.Hour)
	return &v
}
