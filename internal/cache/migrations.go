package cache

import "fmt"

// migrate runs all snapshot schema migrations
func (c *Cache) migrate() error {
	migrations := []string{
		migrationCreateTasks,
		migrationCreateTags,
	}

	for i, m := range migrations {
		if _, err := c.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateTasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);
`

const migrationCreateTags = `
CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);
`
