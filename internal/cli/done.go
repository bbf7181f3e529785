package cli

import (
	"fmt"
	"time"

	"github.com/existflow/focusboard/internal/store"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Long: `Mark a task as completed. The id may be shortened to its last digits.

With auto-delete enabled the task is removed once the grace period passes.

Examples:
  focusboard done 1736000000123
  focusboard done 0123 --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var doneUndo bool

func init() {
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Mark task as not done")
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	task, err := findTask(a.Store.Tasks(), args[0])
	if err != nil {
		return err
	}

	done := !doneUndo
	if task.Completed != done {
		a.Store.ToggleTask(task.ID)
	}

	if !done {
		fmt.Printf("○ Reopened: \"%s\"\n", task.Text)
		return nil
	}
	fmt.Printf("✓ Completed: \"%s\"\n", task.Text)

	// Let the grace timer run so the removal is persisted before exit.
	if a.Store.PendingRemovals() > 0 {
		deadline := time.Now().Add(store.DefaultGraceDelay + time.Second)
		for a.Store.PendingRemovals() > 0 && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
		}
		if _, still := a.Store.Task(task.ID); !still {
			fmt.Println("🗑  Removed completed task")
		}
	}
	return nil
}
