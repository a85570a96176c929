package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/model"
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task",
	Long: `Update fields of an existing task. Only the flags you pass are
changed; everything else keeps its server-side value.

Examples:
  taskdeck edit abc123 --title "New title"
  taskdeck edit abc123 -p low --due ""`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
	editPriority    string
	editDue         string
	editRecur       string
	editRecurEnd    string
	editTags        []string
)

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "desc", "D", "", "New description")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority (low, medium, high)")
	editCmd.Flags().StringVarP(&editDue, "due", "d", "", "New due date (empty string clears it)")
	editCmd.Flags().StringVar(&editRecur, "recur", "", "New recurrence (daily, weekly, monthly)")
	editCmd.Flags().StringVar(&editRecurEnd, "recur-end", "", "New recurrence end date")
	editCmd.Flags().StringArrayVarP(&editTags, "tag", "t", nil, "Replace tags with these names (repeatable)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()

	var req model.UpdateTaskRequest
	changed := false
	for _, name := range []string{"title", "desc", "priority", "due", "recur", "recur-end", "tag"} {
		if cmd.Flags().Changed(name) {
			changed = true
		}
	}
	if !changed {
		return fmt.Errorf("nothing to change; pass at least one field flag")
	}

	if cmd.Flags().Changed("title") {
		req.Title = &editTitle
	}
	if cmd.Flags().Changed("desc") {
		req.Description = &editDescription
	}
	if cmd.Flags().Changed("priority") {
		p := model.Priority(editPriority)
		req.Priority = &p
	}
	if cmd.Flags().Changed("due") {
		req.DueDate = &editDue
	}
	if cmd.Flags().Changed("recur") {
		r := model.Recurrence(editRecur)
		req.RecurrencePattern = &r
	}
	if cmd.Flags().Changed("recur-end") {
		req.RecurrenceEndDate = &editRecurEnd
	}
	if cmd.Flags().Changed("tag") {
		ids, err := resolveTagNames(ctx, app, editTags)
		if err != nil {
			return friendlyError(err)
		}
		req.TagIDs = ids
	}

	task, err := app.Engine.Update(ctx, args[0], req)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Printf("✓ Updated: \"%s\"\n", task.Title)
	return nil
}
