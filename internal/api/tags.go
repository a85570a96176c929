package api

import (
	"context"
	"net/http"

	"github.com/existflow/taskdeck/internal/model"
)

// ListTags fetches all tags owned by the session user.
func (c *Client) ListTags(ctx context.Context, token string) Result[[]model.Tag] {
	return request[[]model.Tag](c, ctx, http.MethodGet, "/tags/", token, nil, "")
}

// GetTag fetches a single tag by id.
func (c *Client) GetTag(ctx context.Context, token, id string) Result[model.Tag] {
	return request[model.Tag](c, ctx, http.MethodGet, "/tags/"+id, token, nil, "")
}

// CreateTag creates a tag and returns the server's copy.
func (c *Client) CreateTag(ctx context.Context, token string, req model.CreateTagRequest) Result[model.Tag] {
	return request[model.Tag](c, ctx, http.MethodPost, "/tags/", token, jsonBody(req), "application/json")
}

// UpdateTag applies a partial update to a tag.
func (c *Client) UpdateTag(ctx context.Context, token, id string, req model.UpdateTagRequest) Result[model.Tag] {
	return request[model.Tag](c, ctx, http.MethodPut, "/tags/"+id, token, jsonBody(req), "application/json")
}

// DeleteTag deletes a tag by id.
func (c *Client) DeleteTag(ctx context.Context, token, id string) Result[struct{}] {
	return request[struct{}](c, ctx, http.MethodDelete, "/tags/"+id, token, nil, "")
}
