package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/focusboard/internal/reminder"
	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Check task reminders",
	Long: `Show tasks that are due within the reminder window, or keep watching
and print a notification when one comes up.`,
}

var remindCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show reminders due now",
	RunE:  runRemindCheck,
}

var remindWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for reminders until interrupted",
	Long: `Scan tasks on an interval and print a notification for each task entering
the reminder window. Each task is announced once per due date.

Examples:
  focusboard remind watch
  focusboard remind watch --interval 30s --bell`,
	RunE: runRemindWatch,
}

var (
	remindInterval time.Duration
	remindBell     bool
)

func init() {
	remindWatchCmd.Flags().DurationVar(&remindInterval, "interval", 0, "Scan interval (default from config)")
	remindWatchCmd.Flags().BoolVar(&remindBell, "bell", false, "Ring the terminal bell")

	remindCmd.AddCommand(remindCheckCmd)
	remindCmd.AddCommand(remindWatchCmd)
}

func runRemindCheck(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	settings := a.Store.ReminderSettings()
	if !settings.Enabled {
		fmt.Println("🔕 Reminders are disabled. Enable with: focusboard settings set reminders on")
		return nil
	}

	due := reminder.Scan(a.Store.Tasks(), settings, a.Store.Now())
	if len(due) == 0 {
		fmt.Printf("✓ Nothing due in the next %s\n", reminder.FormatDuration(settings.ReminderTime))
		return nil
	}

	for _, d := range due {
		_, body := reminder.Message(d)
		fmt.Printf("🔔 %s\n", body)
	}
	return nil
}

func runRemindWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	interval := remindInterval
	if interval <= 0 {
		interval = cfg.ReminderInterval
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := reminder.Multi{reminder.NewWriterNotifier(os.Stdout, remindBell), reminder.LogNotifier{}}
	fmt.Printf("👀 Watching reminders every %s (Ctrl+C to stop)\n", interval)
	a.Reminders(n, interval).Run(ctx)
	return nil
}
