package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task's completion",
	Long: `Flip a task between completed and pending. The printed state is
the server's answer, not a local guess.

Examples:
  taskdeck done abc123`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	task, err := app.Engine.ToggleCompletion(cmd.Context(), args[0])
	if err != nil {
		return friendlyError(err)
	}

	if task.Completed {
		fmt.Printf("✓ Completed: \"%s\"\n", task.Title)
	} else {
		fmt.Printf("○ Reopened: \"%s\"\n", task.Title)
	}
	return nil
}
