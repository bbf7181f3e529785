package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/app"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/sync"
	"golang.org/x/term"
)

// openApp opens the board. With calendar set, a connected Google account
// is unlocked from $FOCUSBOARD_PASSPHRASE or an interactive prompt.
func openApp(ctx context.Context, calendar bool) (*app.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := app.Options{}
	if calendar {
		pass, err := calendarPassphrase()
		if err != nil {
			return nil, err
		}
		opts.Passphrase = pass
	}

	a, err := app.Open(ctx, cfg, opts)
	if err != nil {
		logger.Error("Failed to open board", logger.Err(err))
		return nil, fmt.Errorf("failed to open board: %w", err)
	}
	return a, nil
}

// closeApp flushes pending writes.
func closeApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		fmt.Printf("⚠️  Failed to save changes: %v\n", err)
	}
}

func calendarPassphrase() (string, error) {
	if p := os.Getenv(sync.PassphraseEnv); p != "" {
		return p, nil
	}
	client, err := sync.NewClient(sync.DefaultPath())
	if err != nil || !client.NeedsPassphrase() {
		return "", nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", nil
	}
	return promptSecret("Calendar passphrase: ")
}

func promptSecret(label string) (string, error) {
	fmt.Print(label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// findTask resolves a task by full id or by a unique id suffix, so the
// last few digits shown by 'list' are enough.
func findTask(tasks []model.Task, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if _, err := strconv.ParseInt(ref, 10, 64); err != nil {
		return model.Task{}, fmt.Errorf("invalid task id: %s", ref)
	}

	var matches []model.Task
	for _, t := range tasks {
		id := strconv.FormatInt(t.ID, 10)
		if id == ref {
			return t, nil
		}
		if strings.HasSuffix(id, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task not found: %s", ref)
	case 1:
		return matches[0], nil
	}
	return model.Task{}, fmt.Errorf("task id %s is ambiguous (%d matches)", ref, len(matches))
}

// findCategory matches a category by id, then case-insensitively by name.
func findCategory(categories []model.Category, ref string) (model.Category, bool) {
	for _, c := range categories {
		if c.ID == ref {
			return c, true
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, ref) {
			return c, true
		}
	}
	return model.Category{}, false
}

// normalizeDue validates a due date flag and returns it in storage form.
func normalizeDue(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "today":
		return time.Now().Format(model.DateLayout), nil
	case "tomorrow":
		return time.Now().AddDate(0, 0, 1).Format(model.DateLayout), nil
	}
	if _, err := model.ParseDue(s, cfg.Location()); err != nil {
		return "", fmt.Errorf("invalid due date %q (use YYYY-MM-DD or YYYY-MM-DDTHH:MM)", s)
	}
	return s, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
