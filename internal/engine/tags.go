package engine

import (
	"context"

	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
)

// Tags fetches all tags owned by the session user.
func (e *Engine) Tags(ctx context.Context) ([]model.Tag, error) {
	token, err := e.token()
	if err != nil {
		return nil, err
	}
	res := e.api.ListTags(ctx, token)
	if !res.Success {
		return nil, remoteErr("tag list", "", res.Status, res.Error)
	}
	if e.cache != nil {
		if cerr := e.cache.SaveTags(ctx, res.Data); cerr != nil {
			logger.Warn("Failed to cache tag snapshot", logger.F("error", cerr))
		}
	}
	return res.Data, nil
}

// CachedTags returns the last tag snapshot written to the local cache.
func (e *Engine) CachedTags(ctx context.Context) ([]model.Tag, error) {
	e.mu.Lock()
	c := e.cache
	e.mu.Unlock()
	if c == nil {
		return nil, nil
	}
	return c.LoadTags(ctx)
}

// GetTag fetches a single tag by id.
func (e *Engine) GetTag(ctx context.Context, id string) (model.Tag, error) {
	token, err := e.token()
	if err != nil {
		return model.Tag{}, err
	}
	res := e.api.GetTag(ctx, token, id)
	if !res.Success {
		return model.Tag{}, remoteErr("tag", id, res.Status, res.Error)
	}
	return res.Data, nil
}

// CreateTag creates a tag after validating the name.
func (e *Engine) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	token, err := e.token()
	if err != nil {
		return model.Tag{}, err
	}
	if err := validateTagName(name); err != nil {
		return model.Tag{}, err
	}
	res := e.api.CreateTag(ctx, token, model.CreateTagRequest{Name: name})
	if !res.Success {
		return model.Tag{}, remoteErr("tag", "", res.Status, res.Error)
	}
	logger.Info("Tag created", logger.F("id", res.Data.ID), logger.F("name", name))
	return res.Data, nil
}

// RenameTag updates a tag's name.
func (e *Engine) RenameTag(ctx context.Context, id, name string) (model.Tag, error) {
	token, err := e.token()
	if err != nil {
		return model.Tag{}, err
	}
	if err := validateTagName(name); err != nil {
		return model.Tag{}, err
	}
	res := e.api.UpdateTag(ctx, token, id, model.UpdateTagRequest{Name: &name})
	if !res.Success {
		return model.Tag{}, remoteErr("tag", id, res.Status, res.Error)
	}
	return res.Data, nil
}

// DeleteTag removes a tag. A deleted tag also leaves the filter
// selection so the next refresh can't reference it.
func (e *Engine) DeleteTag(ctx context.Context, id string) error {
	token, err := e.token()
	if err != nil {
		return err
	}
	res := e.api.DeleteTag(ctx, token, id)
	if !res.Success {
		return remoteErr("tag", id, res.Status, res.Error)
	}

	e.mu.Lock()
	if e.filter.Has(id) {
		e.filter.Toggle(id)
		e.gen++
	}
	e.mu.Unlock()
	logger.Info("Tag deleted", logger.F("id", id))
	return nil
}
