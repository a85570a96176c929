package cli

import (
	"github.com/spf13/cobra"
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List open tasks due soon",
	Long: `List tasks that are not completed and due within a time window.

Examples:
  taskdeck upcoming
  taskdeck upcoming --hours 72`,
	RunE: runUpcoming,
}

var upcomingHours int

func init() {
	upcomingCmd.Flags().IntVar(&upcomingHours, "hours", 24, "Look-ahead window in hours")
}

func runUpcoming(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	tasks, err := app.Engine.Upcoming(cmd.Context(), upcomingHours)
	if err != nil {
		return friendlyError(err)
	}

	printTasks(tasks)
	return nil
}
