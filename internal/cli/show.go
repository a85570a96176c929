package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/engine"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show a single task",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	task, err := app.Engine.Get(cmd.Context(), args[0])
	if err != nil {
		if engine.IsNotFound(err) {
			return fmt.Errorf("task not found: %s", args[0])
		}
		return friendlyError(err)
	}

	printTaskDetail(task)
	return nil
}
