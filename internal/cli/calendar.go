package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/existflow/focusboard/internal/calendar"
	"github.com/existflow/focusboard/internal/sync"
	"github.com/spf13/cobra"
)

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Connect and sync a calendar",
	Long: `Connect Google Calendar or a read-only ICS feed and sync events.

Commands:
  focusboard calendar connect google    # Store an OAuth access token
  focusboard calendar connect ics URL   # Subscribe to an ICS feed
  focusboard calendar sync              # Pull events now
  focusboard calendar status            # Show connection status
  focusboard calendar export            # Write events as .ics`,
}

var calendarConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a calendar provider",
}

var calendarConnectGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Connect Google Calendar",
	Long: `Connect Google Calendar with an OAuth access token.

The token is encrypted with a passphrase before it is written to
~/.focusboard/calendar.json. Set FOCUSBOARD_PASSPHRASE to skip the prompt.

Examples:
  focusboard calendar connect google
  focusboard calendar connect google --token ya29... --calendar-id work@group.calendar.google.com`,
	Args: cobra.NoArgs,
	RunE: runConnectGoogle,
}

var calendarConnectICSCmd = &cobra.Command{
	Use:   "ics [url]",
	Short: "Subscribe to a read-only ICS feed",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectICS,
}

var calendarDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the connected calendar",
	RunE:  runDisconnect,
}

var calendarStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show calendar connection status",
	RunE:  runCalendarStatus,
}

var calendarSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull events for the next month",
	RunE:  runCalendarSync,
}

var calendarExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events as iCalendar",
	Long: `Write all events as an .ics file, or to stdout with --out -.

Examples:
  focusboard calendar export
  focusboard calendar export --out events.ics`,
	RunE: runCalendarExport,
}

var (
	googleToken      string
	googleRefresh    string
	googleExpiresIn  time.Duration
	googleCalendarID string
	exportOut        string
)

func init() {
	calendarConnectGoogleCmd.Flags().StringVar(&googleToken, "token", "", "OAuth access token (prompted when empty)")
	calendarConnectGoogleCmd.Flags().StringVar(&googleRefresh, "refresh-token", "", "OAuth refresh token")
	calendarConnectGoogleCmd.Flags().DurationVar(&googleExpiresIn, "expires-in", time.Hour, "Access token lifetime")
	calendarConnectGoogleCmd.Flags().StringVar(&googleCalendarID, "calendar-id", "", "Calendar id (default primary)")

	calendarExportCmd.Flags().StringVarP(&exportOut, "out", "o", "focusboard.ics", "Output file, - for stdout")

	calendarConnectCmd.AddCommand(calendarConnectGoogleCmd)
	calendarConnectCmd.AddCommand(calendarConnectICSCmd)

	calendarCmd.AddCommand(calendarConnectCmd)
	calendarCmd.AddCommand(calendarDisconnectCmd)
	calendarCmd.AddCommand(calendarStatusCmd)
	calendarCmd.AddCommand(calendarSyncCmd)
	calendarCmd.AddCommand(calendarExportCmd)
}

func runConnectGoogle(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient(sync.DefaultPath())
	if err != nil {
		return err
	}

	token := googleToken
	if token == "" {
		if token, err = promptSecret("Access token: "); err != nil {
			return err
		}
	}
	if token == "" {
		return fmt.Errorf("access token is required")
	}

	passphrase := os.Getenv(sync.PassphraseEnv)
	if passphrase == "" {
		if passphrase, err = promptSecret("Passphrase to encrypt the token: "); err != nil {
			return err
		}
		confirm, err := promptSecret("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}
	}
	if len(passphrase) < 8 {
		return fmt.Errorf("passphrase must be at least 8 characters")
	}

	tok := calendar.Token{
		AccessToken:  token,
		RefreshToken: googleRefresh,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(googleExpiresIn),
	}
	if err := client.ConnectGoogle(tok, googleCalendarID, passphrase); err != nil {
		return err
	}
	fmt.Println("✅ Google Calendar connected")

	p, err := client.Provider(passphrase)
	if err != nil {
		return err
	}
	verifyProvider(cmd.Context(), p)
	return nil
}

func runConnectICS(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient(sync.DefaultPath())
	if err != nil {
		return err
	}
	if err := client.ConnectICS(args[0]); err != nil {
		return err
	}
	fmt.Printf("✅ Subscribed to %s (read-only)\n", args[0])

	p, err := client.Provider("")
	if err != nil {
		return err
	}
	verifyProvider(cmd.Context(), p)
	return nil
}

// verifyProvider lists upcoming events once so a bad token or URL shows up
// right away.
func verifyProvider(ctx context.Context, p calendar.Provider) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	now := time.Now()
	events, err := p.ListEvents(ctx, now, now.AddDate(0, 1, 0))
	if err != nil {
		fmt.Printf("⚠️  Could not reach the calendar: %v\n", err)
		return
	}
	fmt.Printf("✓ Found %d events in the next month\n", len(events))
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient(sync.DefaultPath())
	if err != nil {
		return err
	}

	if client.Kind() == sync.ProviderNone {
		fmt.Println("No calendar connected.")
		return nil
	}
	if err := client.Disconnect(); err != nil {
		return err
	}
	fmt.Println("✅ Calendar disconnected. Synced events stay on the board.")
	return nil
}

func runCalendarStatus(cmd *cobra.Command, args []string) error {
	client, err := sync.NewClient(sync.DefaultPath())
	if err != nil {
		return err
	}

	kind, url, lastSync := client.GetStatus()
	switch kind {
	case sync.ProviderGoogle:
		fmt.Println("Provider:  Google Calendar")
	case sync.ProviderICS:
		fmt.Println("Provider:  ICS feed (read-only)")
		fmt.Printf("Feed:      %s\n", url)
	default:
		if cfg.ICSURL != "" {
			fmt.Println("Provider:  ICS feed from config (read-only)")
			fmt.Printf("Feed:      %s\n", cfg.ICSURL)
		} else {
			fmt.Println("Status:    Not connected")
			return nil
		}
	}

	if lastSync.IsZero() {
		fmt.Println("Last Sync: never")
	} else {
		fmt.Printf("Last Sync: %s\n", lastSync.In(cfg.Location()).Format("2006-01-02 15:04"))
	}
	fmt.Printf("Schedule:  %s\n", cfg.SyncCron)
	return nil
}

func runCalendarSync(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer closeApp(a)

	fmt.Println("🔄 Syncing calendar...")
	result, err := a.Sync(cmd.Context())
	if errors.Is(err, calendar.ErrNotConnected) {
		fmt.Println("No calendar connected. Use: focusboard calendar connect")
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("✓ Sync complete! Fetched: %d, Added: %d", result.Fetched, result.Added)
	if result.Rejected > 0 {
		fmt.Printf(", Skipped: %d", result.Rejected)
	}
	fmt.Println()
	return nil
}

func runCalendarExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	w := os.Stdout
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	events := a.Store.Events()
	skipped, err := calendar.ExportICS(w, events, cfg.Location(), time.Now())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if exportOut != "-" {
		fmt.Printf("✓ Exported %d events to %s\n", len(events)-skipped, exportOut)
	}
	return nil
}
