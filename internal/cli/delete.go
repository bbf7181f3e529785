package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its id.

Examples:
  focusboard delete 1736000000123
  focusboard rm 0123`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	task, err := findTask(a.Store.Tasks(), args[0])
	if err != nil {
		return err
	}

	if !a.Store.DeleteTask(task.ID) {
		return fmt.Errorf("task not found: %s", args[0])
	}

	fmt.Printf("🗑  Deleted: \"%s\"\n", task.Text)
	return nil
}
