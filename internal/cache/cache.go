// Package cache keeps the last fetched task and tag snapshot in a
// local SQLite database so listing works offline. The remote API is
// always the source of truth; the cache is replaced wholesale after
// each successful fetch.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/existflow/taskdeck/internal/model"
)

// Cache wraps the SQLite snapshot database
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the default cache path (~/.taskdeck/cache.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".taskdeck", "cache.db"), nil
}

// Open opens or creates the snapshot database
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return c, nil
}

// OpenDefault opens the cache at the default path
func OpenDefault() (*Cache, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close closes the database connection
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveTasks replaces the task snapshot
func (c *Cache) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return c.replace(ctx, "tasks", func(tx *sql.Tx) error {
		now := time.Now().Format(time.RFC3339)
		for _, t := range tasks {
			payload, err := json.Marshal(t)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tasks (id, payload, fetched_at) VALUES (?, ?, ?)`,
				t.ID, string(payload), now,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadTasks returns the task snapshot, oldest-fetched ordering as stored
func (c *Cache) LoadTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT payload FROM tasks ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var tasks []model.Task
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var t model.Task
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("corrupt cache entry: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SaveTags replaces the tag snapshot
func (c *Cache) SaveTags(ctx context.Context, tags []model.Tag) error {
	return c.replace(ctx, "tags", func(tx *sql.Tx) error {
		now := time.Now().Format(time.RFC3339)
		for _, t := range tags {
			payload, err := json.Marshal(t)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tags (id, payload, fetched_at) VALUES (?, ?, ?)`,
				t.ID, string(payload), now,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadTags returns the tag snapshot
func (c *Cache) LoadTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT payload FROM tags ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var tags []model.Tag
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var t model.Tag
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("corrupt cache entry: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// replace clears a snapshot table and refills it in one transaction
func (c *Cache) replace(ctx context.Context, table string, fill func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return err
	}
	if err := fill(tx); err != nil {
		return err
	}
	return tx.Commit()
}
