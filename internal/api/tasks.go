package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/existflow/taskdeck/internal/model"
)

// ListTasks fetches the tasks matching the given filters.
func (c *Client) ListTasks(ctx context.Context, token string, f model.TaskFilters) Result[[]model.Task] {
	endpoint := "/tasks/"
	if q := f.Query().Encode(); q != "" {
		endpoint += "?" + q
	}
	return request[[]model.Task](c, ctx, http.MethodGet, endpoint, token, nil, "")
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, token, id string) Result[model.Task] {
	return request[model.Task](c, ctx, http.MethodGet, "/tasks/"+id, token, nil, "")
}

// CreateTask creates a task and returns the server's copy.
func (c *Client) CreateTask(ctx context.Context, token string, req model.CreateTaskRequest) Result[model.Task] {
	return request[model.Task](c, ctx, http.MethodPost, "/tasks/", token, jsonBody(req), "application/json")
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, token, id string, req model.UpdateTaskRequest) Result[model.Task] {
	return request[model.Task](c, ctx, http.MethodPut, "/tasks/"+id, token, jsonBody(req), "application/json")
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, token, id string) Result[struct{}] {
	return request[struct{}](c, ctx, http.MethodDelete, "/tasks/"+id, token, nil, "")
}

// ToggleTask flips a task's completed flag and returns the updated task.
func (c *Client) ToggleTask(ctx context.Context, token, id string) Result[model.Task] {
	return request[model.Task](c, ctx, http.MethodPatch, "/tasks/"+id+"/complete", token, nil, "")
}

// UpcomingTasks fetches open tasks due within the given number of hours.
func (c *Client) UpcomingTasks(ctx context.Context, token string, hours int) Result[[]model.Task] {
	return request[[]model.Task](c, ctx, http.MethodGet, fmt.Sprintf("/tasks/upcoming/%d", hours), token, nil, "")
}
