// Package engine mediates every task and tag operation against the
// remote API. It validates input before the network, converts HTTP
// failures into a typed error taxonomy, and reconciles the fetched
// task list with the tag filter selection so consumers never see a
// list that belongs to a superseded filter state.
package engine

import (
	"context"
	"net/http"
	"sync"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/cache"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/session"
)

// Engine is the task synchronization engine. One instance serves
// the whole process, sharing the session store's token.
type Engine struct {
	mu      sync.Mutex
	api     *api.Client
	session *session.Store
	filter  *FilterState
	cache   *cache.Cache

	// gen marks the newest list request. Results carrying an older
	// generation are discarded before being applied, so completion
	// order never beats initiation order.
	gen   uint64
	tasks []model.Task
}

// New creates an engine backed by the given client and session store.
func New(client *api.Client, store *session.Store) *Engine {
	return &Engine{
		api:     client,
		session: store,
		filter:  NewFilterState(),
	}
}

// SetCache attaches a local snapshot cache, written after each
// successfully applied list fetch.
func (e *Engine) SetCache(c *cache.Cache) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = c
}

// token returns the session token or ErrUnauthenticated.
func (e *Engine) token() (string, error) {
	t := e.session.Token()
	if t == "" {
		return "", ErrUnauthenticated
	}
	return t, nil
}

// remoteErr maps a failed API result onto the error taxonomy.
func remoteErr(resource, id string, status int, msg string) error {
	if status == http.StatusNotFound {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return &ServerError{Status: status, Message: msg}
}

// Tasks returns a snapshot of the last applied task list.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// ToggleTag flips a tag in the filter selection and invalidates the
// current list: any in-flight fetch started before the change will be
// discarded. The caller is expected to issue a Refresh next. Returns
// whether the tag is selected afterwards.
func (e *Engine) ToggleTag(tagID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	return e.filter.Toggle(tagID)
}

// ClearTags empties the filter selection and invalidates the list.
func (e *Engine) ClearTags() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.filter.Clear()
}

// SelectedTags returns the selected tag ids in stable order.
func (e *Engine) SelectedTags() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter.Selected()
}

// TagSelected reports whether the tag id is in the filter selection.
func (e *Engine) TagSelected(tagID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter.Has(tagID)
}

// Refresh fetches the task list for the given filters combined with
// the current tag selection, and replaces the engine's list with the
// server's collection. applied is false when the fetch was superseded
// by a newer filter change or refresh before it completed; the list
// is left untouched in that case.
func (e *Engine) Refresh(ctx context.Context, f model.TaskFilters) (applied bool, err error) {
	token, err := e.token()
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	e.gen++
	gen := e.gen
	f.TagIDs = e.filter.Selected()
	e.mu.Unlock()

	res := e.api.ListTasks(ctx, token, f)

	e.mu.Lock()
	defer e.mu.Unlock()
	// A superseded fetch is discarded whether it succeeded or failed;
	// a stale error is as wrong to surface as a stale list.
	if gen != e.gen {
		logger.Debug("Discarding superseded task list", logger.F("gen", gen), logger.F("current", e.gen))
		return false, nil
	}
	if !res.Success {
		return false, remoteErr("task list", "", res.Status, res.Error)
	}

	// Full replace, never an incremental merge.
	e.tasks = res.Data
	if e.cache != nil {
		if cerr := e.cache.SaveTasks(ctx, e.tasks); cerr != nil {
			logger.Warn("Failed to cache task snapshot", logger.F("error", cerr))
		}
	}
	return true, nil
}

// List performs a one-shot fetch with explicit filters, bypassing the
// engine's held list and tag selection.
func (e *Engine) List(ctx context.Context, f model.TaskFilters) ([]model.Task, error) {
	token, err := e.token()
	if err != nil {
		return nil, err
	}
	res := e.api.ListTasks(ctx, token, f)
	if !res.Success {
		return nil, remoteErr("task list", "", res.Status, res.Error)
	}
	return res.Data, nil
}

// Get fetches a single task. A 404 surfaces as NotFoundError.
func (e *Engine) Get(ctx context.Context, id string) (model.Task, error) {
	token, err := e.token()
	if err != nil {
		return model.Task{}, err
	}
	res := e.api.GetTask(ctx, token, id)
	if !res.Success {
		return model.Task{}, remoteErr("task", id, res.Status, res.Error)
	}
	return res.Data, nil
}

// Create validates the fields and creates the task. Invalid input
// never reaches the network. The created task is not merged into a
// previously fetched list; callers re-list or navigate away.
func (e *Engine) Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	token, err := e.token()
	if err != nil {
		return model.Task{}, err
	}
	if err := validateCreate(req); err != nil {
		return model.Task{}, err
	}
	res := e.api.CreateTask(ctx, token, req)
	if !res.Success {
		return model.Task{}, remoteErr("task", "", res.Status, res.Error)
	}
	logger.Info("Task created", logger.F("id", res.Data.ID))
	return res.Data, nil
}

// Update validates the changed fields and applies a partial update.
// Fields left nil are untouched server-side.
func (e *Engine) Update(ctx context.Context, id string, req model.UpdateTaskRequest) (model.Task, error) {
	token, err := e.token()
	if err != nil {
		return model.Task{}, err
	}
	if err := validateUpdate(req); err != nil {
		return model.Task{}, err
	}
	res := e.api.UpdateTask(ctx, token, id, req)
	if !res.Success {
		return model.Task{}, remoteErr("task", id, res.Status, res.Error)
	}
	e.replaceLocal(res.Data)
	return res.Data, nil
}

// ToggleCompletion flips the completed flag server-side and returns
// the server's copy. On failure the held list is left exactly as it
// was, so a rejected toggle never desyncs the displayed value.
func (e *Engine) ToggleCompletion(ctx context.Context, id string) (model.Task, error) {
	token, err := e.token()
	if err != nil {
		return model.Task{}, err
	}
	res := e.api.ToggleTask(ctx, token, id)
	if !res.Success {
		return model.Task{}, remoteErr("task", id, res.Status, res.Error)
	}
	e.replaceLocal(res.Data)
	return res.Data, nil
}

// Delete removes the task. Confirmation is the caller's business.
func (e *Engine) Delete(ctx context.Context, id string) error {
	token, err := e.token()
	if err != nil {
		return err
	}
	res := e.api.DeleteTask(ctx, token, id)
	if !res.Success {
		return remoteErr("task", id, res.Status, res.Error)
	}
	e.dropLocal(id)
	logger.Info("Task deleted", logger.F("id", id))
	return nil
}

// Upcoming fetches open tasks due within the given number of hours.
func (e *Engine) Upcoming(ctx context.Context, hours int) ([]model.Task, error) {
	token, err := e.token()
	if err != nil {
		return nil, err
	}
	res := e.api.UpcomingTasks(ctx, token, hours)
	if !res.Success {
		return nil, remoteErr("task list", "", res.Status, res.Error)
	}
	return res.Data, nil
}

// CachedTasks returns the last snapshot written to the local cache.
func (e *Engine) CachedTasks(ctx context.Context) ([]model.Task, error) {
	e.mu.Lock()
	c := e.cache
	e.mu.Unlock()
	if c == nil {
		return nil, nil
	}
	return c.LoadTasks(ctx)
}

// replaceLocal swaps the held copy of a task with server truth.
func (e *Engine) replaceLocal(task model.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.tasks {
		if e.tasks[i].ID == task.ID {
			e.tasks[i] = task
			return
		}
	}
}

// dropLocal removes a task from the held list.
func (e *Engine) dropLocal(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
			return
		}
	}
}
