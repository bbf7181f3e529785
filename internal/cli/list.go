package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, optionally filtered by category and due date.

Due filters: all, today, tomorrow, upcoming, overdue, no-date.

Examples:
  focusboard list
  focusboard list --category work
  focusboard list --due overdue
  focusboard list --done`,
	RunE: runList,
}

var (
	listCategory    string
	listDue         string
	listIncludeDone bool
)

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by category id or name")
	listCmd.Flags().StringVarP(&listDue, "due", "d", "all", "Filter by due date")
	listCmd.Flags().BoolVar(&listIncludeDone, "done", false, "Include completed tasks")
}

func runList(cmd *cobra.Command, args []string) error {
	due, err := store.ParseDueFilter(listDue)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	categories := a.Store.Categories()
	var categoryID *string
	if listCategory != "" {
		c, ok := findCategory(categories, listCategory)
		if !ok {
			return fmt.Errorf("category not found: %s", listCategory)
		}
		categoryID = &c.ID
	}

	tasks := a.Store.FilterTasks(categoryID, due)
	if !listIncludeDone {
		open := tasks[:0]
		for _, t := range tasks {
			if !t.Completed {
				open = append(open, t)
			}
		}
		tasks = open
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found. Add one with: focusboard add \"Your task\"")
		return nil
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	printTasksByCategory(tasks, names, a.Store.Now())
	return nil
}

func printTasksByCategory(tasks []model.Task, names map[string]string, now time.Time) {
	// Group tasks by category, keeping first-seen order
	var order []string
	byCategory := make(map[string][]model.Task)
	for _, t := range tasks {
		key := ""
		if t.CategoryID != nil {
			key = *t.CategoryID
		}
		if _, seen := byCategory[key]; !seen {
			order = append(order, key)
		}
		byCategory[key] = append(byCategory[key], t)
	}

	for _, key := range order {
		name := names[key]
		if name == "" {
			name = "No category"
		}
		printTasks(name, byCategory[key], now)
	}
}

func printTasks(categoryName string, tasks []model.Task, now time.Time) {
	pending := 0
	for _, t := range tasks {
		if !t.Completed {
			pending++
		}
	}

	fmt.Printf("\n📁 %s (%d pending)\n", categoryName, pending)
	fmt.Println(strings.Repeat("─", 60))

	for _, t := range tasks {
		printTask(t, now)
	}
	fmt.Println()
}

func printTask(t model.Task, now time.Time) {
	// Status icon
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}

	// Due date
	due := ""
	if d, ok := t.Due(now.Location()); ok {
		due = d.Format("Jan 2")
		if d.Hour() != 0 || d.Minute() != 0 {
			due = d.Format("Jan 2 15:04")
		}
		if !t.Completed && t.IsOverdue(now) {
			due = "! " + due
		}
	}

	bell := ""
	if t.HasReminder {
		bell = "🔔"
	}

	fmt.Printf("  %s  %-13d  %-40s  %-13s %s\n", icon, t.ID, truncate(t.Text, 40), due, bell)
}
