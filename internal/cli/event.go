package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/model"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:     "event",
	Aliases: []string{"ev"},
	Short:   "Manage calendar events",
	Long: `Add, list, and delete calendar events.

New events are pushed to the connected calendar when auto-sync is on.`,
}

var eventAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add an event",
	Long: `Add a calendar event.

Examples:
  focusboard event add "Standup" --start 09:00 --end 09:15
  focusboard event add "Design review" --date 2025-01-15 --start 14:00 --end 15:00 --status video`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEventAdd,
}

var eventListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List events",
	Long:    `List events for a day (today by default), or every event with --all.`,
	RunE:    runEventList,
}

var eventDeleteCmd = &cobra.Command{
	Use:     "rm [event-id]",
	Aliases: []string{"delete"},
	Short:   "Delete an event",
	Args:    cobra.ExactArgs(1),
	RunE:    runEventDelete,
}

var (
	eventDate   string
	eventStart  string
	eventEnd    string
	eventStatus string
	eventAll    bool
)

func init() {
	eventAddCmd.Flags().StringVar(&eventDate, "date", "", "Date (YYYY-MM-DD, default today)")
	eventAddCmd.Flags().StringVar(&eventStart, "start", "", "Start time (HH:MM)")
	eventAddCmd.Flags().StringVar(&eventEnd, "end", "", "End time (HH:MM)")
	eventAddCmd.Flags().StringVar(&eventStatus, "status", string(model.StatusOnline), "Attendance (online, video, offline)")
	_ = eventAddCmd.MarkFlagRequired("start")
	_ = eventAddCmd.MarkFlagRequired("end")

	eventListCmd.Flags().StringVar(&eventDate, "date", "", "Date (YYYY-MM-DD, default today)")
	eventListCmd.Flags().BoolVarP(&eventAll, "all", "a", false, "Show all events")

	eventCmd.AddCommand(eventAddCmd)
	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventDeleteCmd)
}

func parseEventDay(s string) (time.Time, error) {
	if s == "" {
		return time.Now().In(cfg.Location()), nil
	}
	day, err := time.ParseInLocation(model.DateLayout, s, cfg.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return day, nil
}

func runEventAdd(cmd *cobra.Command, args []string) error {
	day, err := parseEventDay(eventDate)
	if err != nil {
		return err
	}
	status := model.EventStatus(strings.ToLower(eventStatus))
	if !status.Valid() {
		return fmt.Errorf("invalid status %q (use online, video or offline)", eventStatus)
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer closeApp(a)

	e, err := a.AddEvent(cmd.Context(), model.CalendarEvent{
		Title:     strings.Join(args, " "),
		Date:      day.Format(model.DateLayout),
		StartTime: eventStart,
		EndTime:   eventEnd,
		Status:    status,
	})
	if e.ID == "" {
		return err
	}

	fmt.Printf("📅 Added: \"%s\" %s %s-%s (%s)\n", e.Title, e.Date, e.StartTime, e.EndTime, e.ID)
	if err != nil {
		fmt.Printf("⚠️  Saved locally, calendar push failed: %v\n", err)
	}
	return nil
}

func runEventList(cmd *cobra.Command, args []string) error {
	day, err := parseEventDay(eventDate)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	var events []model.CalendarEvent
	if eventAll {
		events = a.Store.Events()
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].Date != events[j].Date {
				return events[i].Date < events[j].Date
			}
			return events[i].StartTime < events[j].StartTime
		})
	} else {
		events = a.Store.EventsOn(day)
	}

	if len(events) == 0 {
		fmt.Println("No events. Add one with: focusboard event add \"Standup\" --start 09:00 --end 09:15")
		return nil
	}

	fmt.Println()
	for _, e := range events {
		fmt.Printf("  %s  %s-%s  %-7s  %-36s  %s\n", e.Date, e.StartTime, e.EndTime, e.Status, truncate(e.Title, 36), e.ID)
	}
	fmt.Println()
	return nil
}

func runEventDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if !a.Store.DeleteEvent(args[0]) {
		return fmt.Errorf("event not found: %s", args[0])
	}
	fmt.Printf("🗑  Deleted event: %s\n", args[0])
	return nil
}
