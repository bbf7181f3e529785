package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
	Long:    `Create, list, and delete the categories tasks are grouped under.`,
}

var categoryAddCmd = &cobra.Command{
	Use:     "add [name]",
	Aliases: []string{"new"},
	Short:   "Create a new category",
	Long: `Create a new category for organizing tasks.

Examples:
  focusboard category add "Work"
  focusboard category add "Personal" --color "#FF6B6B"`,
	Args: cobra.ExactArgs(1),
	RunE: runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all categories",
	RunE:    runCategoryList,
}

var categoryDeleteCmd = &cobra.Command{
	Use:     "rm [category]",
	Aliases: []string{"delete"},
	Short:   "Delete a category",
	Long:    `Delete a category by id or name. Its tasks are kept without a category.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCategoryDelete,
}

var categoryColor string

func init() {
	categoryAddCmd.Flags().StringVarP(&categoryColor, "color", "c", "#4ECDC4", "Category color (hex)")

	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	c, ok := a.Store.AddCategory(args[0], categoryColor)
	if !ok {
		return fmt.Errorf("category name cannot be empty")
	}

	fmt.Printf("📁 Created category: %s (%s)\n", c.Name, c.ID)
	return nil
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	categories := a.Store.Categories()
	if len(categories) == 0 {
		fmt.Println("No categories yet. Create one with: focusboard category add \"Work\"")
		return nil
	}

	counts := make(map[string][2]int)
	for _, t := range a.Store.Tasks() {
		if t.CategoryID == nil {
			continue
		}
		c := counts[*t.CategoryID]
		if t.Completed {
			c[1]++
		} else {
			c[0]++
		}
		counts[*t.CategoryID] = c
	}

	fmt.Println()
	for _, c := range categories {
		n := counts[c.ID]
		fmt.Printf("  %-36s  %-20s  %-8s  %d open, %d done\n", c.ID, c.Name, c.Color, n[0], n[1])
	}
	fmt.Println()
	return nil
}

func runCategoryDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	c, ok := findCategory(a.Store.Categories(), args[0])
	if !ok {
		return fmt.Errorf("category not found: %s", args[0])
	}
	a.Store.DeleteCategory(c.ID)

	fmt.Printf("🗑  Deleted category: %s\n", c.Name)
	return nil
}
