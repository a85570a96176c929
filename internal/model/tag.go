package model

import "time"

// Tag is a user-owned label attached to tasks
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTagRequest carries the fields for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// UpdateTagRequest carries a partial tag update.
type UpdateTagRequest struct {
	Name *string `json:"name,omitempty"`
}
