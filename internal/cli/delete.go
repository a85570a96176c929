package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/engine"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID.

Examples:
  taskdeck delete abc123
  taskdeck rm abc123 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	taskID := args[0]

	task, err := app.Engine.Get(ctx, taskID)
	if err != nil {
		if engine.IsNotFound(err) {
			return fmt.Errorf("task not found: %s", taskID)
		}
		return friendlyError(err)
	}

	if app.Config.ConfirmDelete && !deleteYes {
		fmt.Printf("About to delete: \"%s\" (ID: %s)\n", task.Title, task.ID)
		fmt.Print("Are you sure? [y/N]: ")
		var confirm string
		_, _ = fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := app.Engine.Delete(ctx, task.ID); err != nil {
		return friendlyError(err)
	}

	fmt.Printf("🗑️  Deleted: \"%s\"\n", task.Title)
	return nil
}
