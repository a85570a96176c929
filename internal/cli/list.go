package cli

import (
	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks from the server, optionally filtered and sorted.

Examples:
  taskdeck list
  taskdeck list --status pending --priority high
  taskdeck list --tag work --tag urgent
  taskdeck list --search groceries --sort due_date
  taskdeck list --cached`,
	RunE: runList,
}

var (
	listSearch   string
	listStatus   string
	listPriority string
	listFrom     string
	listTo       string
	listSort     string
	listOrder    string
	listTags     []string
	listCached   bool
)

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Keyword search in title or description")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (completed, pending)")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Filter by priority (low, medium, high)")
	listCmd.Flags().StringVar(&listFrom, "from", "", "Filter by creation date from (RFC3339)")
	listCmd.Flags().StringVar(&listTo, "to", "", "Filter by creation date to (RFC3339)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort by (due_date, priority, title, created_at)")
	listCmd.Flags().StringVar(&listOrder, "order", "", "Sort order (asc, desc)")
	listCmd.Flags().StringArrayVarP(&listTags, "tag", "t", nil, "Filter by tag name (repeatable)")
	listCmd.Flags().BoolVar(&listCached, "cached", false, "Show the last fetched snapshot without contacting the server")
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()

	if listCached {
		tasks, err := app.Engine.CachedTasks(ctx)
		if err != nil {
			return err
		}
		printTasks(tasks)
		return nil
	}

	filters := model.TaskFilters{
		Search:    listSearch,
		Status:    listStatus,
		Priority:  model.Priority(listPriority),
		DateFrom:  listFrom,
		DateTo:    listTo,
		SortBy:    listSort,
		SortOrder: listOrder,
	}

	if len(listTags) > 0 {
		ids, err := resolveTagNames(ctx, app, listTags)
		if err != nil {
			return friendlyError(err)
		}
		filters.TagIDs = ids
	}

	tasks, err := app.Engine.List(ctx, filters)
	if err != nil {
		return friendlyError(err)
	}

	printTasks(tasks)
	return nil
}
