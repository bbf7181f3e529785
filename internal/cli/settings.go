package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/existflow/focusboard/internal/app"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change board settings",
	Long: `Show or change the settings stored with your board data.

Keys:
  reminders       on|off
  reminder-time   minutes before the due date
  auto-delete     on|off   remove tasks shortly after completing them
  auto-sync       on|off   push new events to the connected calendar
  theme           dark|light
  background      image path or URL, optional fit mode (cover, contain, fill)`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a setting.

Examples:
  focusboard settings set reminders off
  focusboard settings set reminder-time 15
  focusboard settings set auto-delete on
  focusboard settings set background ~/Pictures/desk.jpg contain`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	data := a.Store.Snapshot()
	rs := a.Store.ReminderSettings()

	fmt.Printf("Reminders:     %s (%d minutes before due)\n", onOff(rs.Enabled), rs.ReminderTime)
	fmt.Printf("Auto-delete:   %s\n", onOff(data.AutoDeleteCompleted))
	fmt.Printf("Auto-sync:     %s\n", onOff(a.Store.AutoSync()))
	fmt.Printf("Theme:         %s\n", data.Theme)
	if data.CustomBackgroundImage != "" {
		fmt.Printf("Background:    %s (%s)\n", data.CustomBackgroundImage, data.BackgroundFitMode)
	}
	fmt.Printf("Storage:       %s\n", cfg.Storage)
	if cfg.Fallback != "" {
		fmt.Printf("Fallback:      %s\n", cfg.Fallback)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if err := applySetting(a, args[0], args[1:]); err != nil {
		return err
	}
	fmt.Printf("✓ %s set to %s\n", args[0], strings.Join(args[1:], " "))
	return nil
}

func applySetting(a *app.App, key string, values []string) error {
	value := values[0]
	switch strings.ToLower(key) {
	case "reminders":
		on, err := parseOnOff(value)
		if err != nil {
			return err
		}
		rs := a.Store.ReminderSettings()
		rs.Enabled = on
		a.Store.SetReminderSettings(rs)
	case "reminder-time":
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 {
			return fmt.Errorf("reminder-time must be a positive number of minutes")
		}
		rs := a.Store.ReminderSettings()
		rs.ReminderTime = minutes
		a.Store.SetReminderSettings(rs)
	case "auto-delete":
		on, err := parseOnOff(value)
		if err != nil {
			return err
		}
		a.Store.SetAutoDelete(on)
	case "auto-sync":
		on, err := parseOnOff(value)
		if err != nil {
			return err
		}
		a.Store.SetAutoSync(on)
	case "theme":
		if value != "dark" && value != "light" {
			return fmt.Errorf("theme must be dark or light")
		}
		a.Store.SetTheme(value)
	case "background":
		fit := ""
		if len(values) > 1 {
			fit = values[1]
		}
		a.Store.SetBackground(value, fit)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
