package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/engine"
	"github.com/existflow/taskdeck/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Create a new task on the server.

Examples:
  taskdeck add "Buy groceries"
  taskdeck add "Quarterly report" -p high -d 2026-09-15
  taskdeck add "Water plants" --recur weekly --tag home`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addPriority    string
	addDue         string
	addRecur       string
	addRecurEnd    string
	addTags        []string
)

func init() {
	addCmd.Flags().StringVarP(&addDescription, "desc", "D", "", "Task description")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority (low, medium, high)")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (e.g. 2026-09-15 or RFC3339)")
	addCmd.Flags().StringVar(&addRecur, "recur", "", "Recurrence (daily, weekly, monthly)")
	addCmd.Flags().StringVar(&addRecurEnd, "recur-end", "", "Recurrence end date")
	addCmd.Flags().StringArrayVarP(&addTags, "tag", "t", nil, "Attach tag by name (repeatable)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()

	req := model.CreateTaskRequest{
		Title:             strings.Join(args, " "),
		Description:       addDescription,
		Priority:          model.Priority(addPriority),
		DueDate:           addDue,
		RecurrencePattern: model.Recurrence(addRecur),
		RecurrenceEndDate: addRecurEnd,
	}

	if len(addTags) > 0 {
		ids, err := resolveTagNames(ctx, app, addTags)
		if err != nil {
			return friendlyError(err)
		}
		req.TagIDs = ids
	}

	task, err := app.Engine.Create(ctx, req)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Printf("✓ Added: \"%s\" (%s)\n", task.Title, task.Priority)
	return nil
}

// resolveTagNames maps tag names (case-insensitive) to ids, fetching
// the tag list once.
func resolveTagNames(ctx context.Context, app *App, names []string) ([]string, error) {
	tags, err := app.Engine.Tags(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(tags))
	for _, t := range tags {
		byName[strings.ToLower(t.Name)] = t.ID
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, &engine.NotFoundError{Resource: "tag", ID: name}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
