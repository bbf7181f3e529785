package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/focusboard/internal/store"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task",
	Long: `Change a task's text, category, due date or reminder.

Pass an empty value to clear the category or due date. Clearing the due
date also turns the reminder off.

Examples:
  focusboard edit 0123 --text "Buy oat milk"
  focusboard edit 0123 --due 2025-01-20T09:00 --remind
  focusboard edit 0123 --due "" --category ""`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editText     string
	editCategory string
	editDue      string
	editRemind   bool
)

func init() {
	editCmd.Flags().StringVarP(&editText, "text", "t", "", "New task text")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "Category id or name (empty clears)")
	editCmd.Flags().StringVarP(&editDue, "due", "d", "", "Due date (empty clears)")
	editCmd.Flags().BoolVarP(&editRemind, "remind", "r", false, "Remind before the task is due")
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	task, err := findTask(a.Store.Tasks(), args[0])
	if err != nil {
		return err
	}

	var patch store.TaskPatch
	flags := cmd.Flags()
	if flags.Changed("text") {
		if strings.TrimSpace(editText) == "" {
			return fmt.Errorf("task text cannot be empty")
		}
		patch.Text = &editText
	}
	if flags.Changed("category") {
		id := ""
		if editCategory != "" {
			c, ok := findCategory(a.Store.Categories(), editCategory)
			if !ok {
				return fmt.Errorf("category not found: %s", editCategory)
			}
			id = c.ID
		}
		patch.CategoryID = &id
	}
	if flags.Changed("due") {
		due, err := normalizeDue(editDue)
		if err != nil {
			return err
		}
		patch.DueDate = &due
	}
	if flags.Changed("remind") {
		patch.HasReminder = &editRemind
	}

	updated, ok := a.Store.UpdateTask(task.ID, patch)
	if !ok {
		return fmt.Errorf("failed to update task: %s", args[0])
	}

	fmt.Printf("✓ Updated: \"%s\"\n", updated.Text)
	if editRemind && !updated.HasReminder {
		fmt.Println("⚠️  Reminder ignored: set a due date to get reminded")
	}
	return nil
}
