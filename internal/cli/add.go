package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/focusboard/internal/model"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a new task",
	Long: `Add a new task, optionally in a category and with a due date.

A reminder is only kept when the task has a due date.

Examples:
  focusboard add "Buy groceries"
  focusboard add "Write report" --category work --due 2025-01-15
  focusboard add "Call dentist" --due 2025-01-15T14:30 --remind`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addCategory string
	addDue      string
	addRemind   bool
)

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category id or name")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (today, tomorrow, YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	addCmd.Flags().BoolVarP(&addRemind, "remind", "r", false, "Remind before the task is due")
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	due, err := normalizeDue(addDue)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	var categoryID *string
	categoryName := "No category"
	if addCategory != "" {
		c, ok := findCategory(a.Store.Categories(), addCategory)
		if !ok {
			return fmt.Errorf("category not found: %s", addCategory)
		}
		categoryID = &c.ID
		categoryName = c.Name
	}

	task, ok := a.Store.AddTask(text, categoryID, model.StringPtr(due), addRemind)
	if !ok {
		return fmt.Errorf("task text cannot be empty")
	}

	fmt.Printf("✓ Added to [%s]: \"%s\" (#%d)\n", categoryName, task.Text, task.ID)
	if addRemind && !task.HasReminder {
		fmt.Println("⚠️  Reminder ignored: set a due date to get reminded")
	}
	return nil
}
