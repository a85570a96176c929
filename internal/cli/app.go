package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/cache"
	"github.com/existflow/taskdeck/internal/config"
	"github.com/existflow/taskdeck/internal/engine"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/session"
)

// activeConfig is set by the root command before subcommands run.
var activeConfig *config.Config

// App bundles the wired-up core for a command invocation.
type App struct {
	Config  *config.Config
	API     *api.Client
	Session *session.Store
	Engine  *engine.Engine
	cache   *cache.Cache
}

// buildApp constructs the client, session store, and engine from the
// loaded config. The cache is best-effort: a broken cache file only
// disables offline listing.
func buildApp() (*App, error) {
	cfg := activeConfig
	if cfg == nil {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return nil, err
		}
	}

	client := api.NewClient(cfg.ServerURL)
	store, err := session.NewStore(client)
	if err != nil {
		return nil, err
	}
	eng := engine.New(client, store)

	app := &App{Config: cfg, API: client, Session: store, Engine: eng}
	if c, err := cache.OpenDefault(); err == nil {
		app.cache = c
		eng.SetCache(c)
	} else {
		logger.Warn("Cache unavailable", logger.F("error", err))
	}
	return app, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

// friendlyError rewrites engine errors for terminal output.
func friendlyError(err error) error {
	if errors.Is(err, engine.ErrUnauthenticated) {
		return fmt.Errorf("not signed in; run 'taskdeck auth login' first")
	}
	if ve, ok := engine.IsValidation(err); ok {
		return fmt.Errorf("invalid %s: %s", ve.Field, ve.Message)
	}
	return err
}

// printTasks renders a task table like the TUI's list pane.
func printTasks(tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found. Add one with: taskdeck add \"Your task\"")
		return
	}

	pending := 0
	for _, t := range tasks {
		if !t.Completed {
			pending++
		}
	}
	fmt.Printf("\n📋 Tasks (%d pending)\n", pending)
	fmt.Println(strings.Repeat("─", 72))
	for _, t := range tasks {
		printTask(t)
	}
	fmt.Println()
}

func printTask(t model.Task) {
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}

	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format("Jan 2")
		if t.IsOverdue() && !t.Completed {
			due += "!"
		}
	}

	title := t.Title
	if len(title) > 40 {
		title = title[:37] + "..."
	}

	shortID := t.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	tags := ""
	if len(t.Tags) > 0 {
		names := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			names = append(names, "#"+tag.Name)
		}
		tags = strings.Join(names, " ")
	}

	fmt.Printf("  %s  %-8s  %-40s  %-7s  %-8s  %s\n", icon, shortID, title, t.Priority, due, tags)
}

func printTaskDetail(t model.Task) {
	fmt.Printf("ID:        %s\n", t.ID)
	fmt.Printf("Title:     %s\n", t.Title)
	if t.Description != "" {
		fmt.Printf("Notes:     %s\n", t.Description)
	}
	fmt.Printf("Status:    %s\n", statusLabel(t.Completed))
	fmt.Printf("Priority:  %s\n", t.Priority)
	if t.DueDate != nil {
		fmt.Printf("Due:       %s\n", t.DueDate.Format(time.RFC1123))
	}
	if t.RecurrencePattern != "" {
		fmt.Printf("Repeats:   %s", t.RecurrencePattern)
		if t.RecurrenceEndDate != nil {
			fmt.Printf(" until %s", t.RecurrenceEndDate.Format("2006-01-02"))
		}
		fmt.Println()
	}
	if len(t.Tags) > 0 {
		names := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			names = append(names, tag.Name)
		}
		fmt.Printf("Tags:      %s\n", strings.Join(names, ", "))
	}
	fmt.Printf("Created:   %s\n", t.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Updated:   %s\n", t.UpdatedAt.Format(time.RFC1123))
}

func statusLabel(completed bool) string {
	if completed {
		return "completed"
	}
	return "pending"
}
