package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/engine"
	"github.com/existflow/taskdeck/internal/model"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	Long:  `List, show, create, rename, and delete the tags used to label tasks.`,
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tags",
	RunE:    runTagList,
}

var tagShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a single tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagShow,
}

var tagAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagAdd,
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename [name] [new-name]",
	Short: "Rename a tag",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagRename,
}

var tagDeleteCmd = &cobra.Command{
	Use:     "delete [name]",
	Aliases: []string{"rm"},
	Short:   "Delete a tag",
	Args:    cobra.ExactArgs(1),
	RunE:    runTagDelete,
}

var tagListCached bool

func init() {
	tagListCmd.Flags().BoolVar(&tagListCached, "cached", false, "Show the last fetched snapshot without contacting the server")

	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagShowCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRenameCmd)
	tagCmd.AddCommand(tagDeleteCmd)
}

func runTagList(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var tags []model.Tag
	if tagListCached {
		tags, err = app.Engine.CachedTags(cmd.Context())
	} else {
		tags, err = app.Engine.Tags(cmd.Context())
	}
	if err != nil {
		return friendlyError(err)
	}

	if len(tags) == 0 {
		fmt.Println("No tags yet. Add one with: taskdeck tag add \"work\"")
		return nil
	}
	for _, tag := range tags {
		fmt.Printf("  #%s\n", tag.Name)
	}
	return nil
}

func runTagShow(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	ids, err := resolveTagNames(ctx, app, args[:1])
	if err != nil {
		if engine.IsNotFound(err) {
			return fmt.Errorf("tag not found: %s", args[0])
		}
		return friendlyError(err)
	}

	tag, err := app.Engine.GetTag(ctx, ids[0])
	if err != nil {
		return friendlyError(err)
	}

	fmt.Printf("Name:      #%s\n", tag.Name)
	fmt.Printf("ID:        %s\n", tag.ID)
	fmt.Printf("Created:   %s\n", tag.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Updated:   %s\n", tag.UpdatedAt.Format(time.RFC1123))
	return nil
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	tag, err := app.Engine.CreateTag(cmd.Context(), args[0])
	if err != nil {
		return friendlyError(err)
	}

	fmt.Printf("✓ Created tag #%s\n", tag.Name)
	return nil
}

func runTagRename(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	ids, err := resolveTagNames(ctx, app, args[:1])
	if err != nil {
		if engine.IsNotFound(err) {
			return fmt.Errorf("tag not found: %s", args[0])
		}
		return friendlyError(err)
	}

	tag, err := app.Engine.RenameTag(ctx, ids[0], args[1])
	if err != nil {
		return friendlyError(err)
	}

	fmt.Printf("✓ Renamed tag to #%s\n", tag.Name)
	return nil
}

func runTagDelete(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	ids, err := resolveTagNames(ctx, app, args[:1])
	if err != nil {
		if engine.IsNotFound(err) {
			return fmt.Errorf("tag not found: %s", args[0])
		}
		return friendlyError(err)
	}

	if err := app.Engine.DeleteTag(ctx, ids[0]); err != nil {
		return friendlyError(err)
	}

	fmt.Printf("🗑️  Deleted tag #%s\n", args[0])
	return nil
}
