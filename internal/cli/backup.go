package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/storage"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import board data",
	Long:  `Export all tasks, categories, events and settings to a JSON file, or replace the board with one.`,
}

var backupExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a JSON backup",
	Long: `Write a JSON backup. The file name defaults to focusboard-backup-YYYY-MM-DD.json.

Examples:
  focusboard backup export
  focusboard backup export board.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the board with a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupImport,
}

func init() {
	backupImportCmd.Flags().Bool("force", false, "Do not ask for confirmation")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	path := storage.BackupFileName(time.Now())
	if len(args) == 1 {
		path = args[0]
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	data := a.Store.Snapshot()
	if err := storage.Export(f, data); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("💾 Exported %d tasks, %d categories, %d events to %s\n",
		len(data.Tasks), len(data.Categories), len(data.Events), path)
	return nil
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	data, err := storage.Import(f)
	if err != nil {
		return err
	}

	if !force {
		fmt.Printf("Replace the board with %d tasks, %d categories and %d events? (y/N): ",
			len(data.Tasks), len(data.Categories), len(data.Events))
		var response string
		_, _ = fmt.Scanln(&response)
		if strings.ToLower(response) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	a.Store.Load(data)
	fmt.Println("✓ Backup imported")
	return nil
}
