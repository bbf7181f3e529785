package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/existflow/focusboard/internal/logger"
)

// GoogleAPIBase is the Google Calendar v3 REST root.
const GoogleAPIBase = "https://www.googleapis.com/calendar/v3"

// Token is an OAuth access token obtained out of band.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Valid reports whether the token can be used at now.
func (t Token) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return t.Expiry.IsZero() || now.Before(t.Expiry)
}

// GoogleProvider talks to the Google Calendar REST API.
type GoogleProvider struct {
	baseURL    string
	calendarID string
	token      Token
	httpClient *http.Client
	now        func() time.Time
}

// GoogleOption configures a GoogleProvider
type GoogleOption func(*GoogleProvider)

// WithBaseURL points the provider at another API root (tests).
func WithBaseURL(u string) GoogleOption {
	return func(g *GoogleProvider) { g.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *GoogleProvider) { g.httpClient = c }
}

// WithCalendarID selects a calendar other than "primary".
func WithCalendarID(id string) GoogleOption {
	return func(g *GoogleProvider) { g.calendarID = id }
}

// NewGoogleProvider creates a provider using token.
func NewGoogleProvider(token Token, opts ...GoogleOption) *GoogleProvider {
	g := &GoogleProvider{
		baseURL:    GoogleAPIBase,
		calendarID: "primary",
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GoogleProvider) Name() string { return "google" }

// IsConnected is true while the access token is present and unexpired.
func (g *GoogleProvider) IsConnected() bool {
	return g.token.Valid(g.now())
}

func (g *GoogleProvider) eventsURL() string {
	return fmt.Sprintf("%s/calendars/%s/events", g.baseURL, url.PathEscape(g.calendarID))
}

// ListEvents returns single (expanded) events in [start, end] ordered by
// start time, following pagination.
func (g *GoogleProvider) ListEvents(ctx context.Context, start, end time.Time) ([]ProviderEvent, error) {
	if !g.IsConnected() {
		return nil, ErrNotConnected
	}

	var all []ProviderEvent
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("timeMin", start.UTC().Format(time.RFC3339))
		q.Set("timeMax", end.UTC().Format(time.RFC3339))
		q.Set("singleEvents", "true")
		q.Set("orderBy", "startTime")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		body, err := g.do(ctx, http.MethodGet, g.eventsURL()+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}

		events, rejected, err := ParseProviderEvents(body)
		if err != nil {
			return nil, err
		}
		if rejected > 0 {
			logger.Warn("Dropped invalid provider events", logger.F("count", rejected))
		}
		all = append(all, events...)

		var page struct {
			NextPageToken string `json:"nextPageToken"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, err
		}
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreateEvent inserts e and returns the stored event with its new id.
func (g *GoogleProvider) CreateEvent(ctx context.Context, e ProviderEvent) (ProviderEvent, error) {
	if !g.IsConnected() {
		return ProviderEvent{}, ErrNotConnected
	}
	e.ID = ""
	payload, err := json.Marshal(e)
	if err != nil {
		return ProviderEvent{}, err
	}

	body, err := g.do(ctx, http.MethodPost, g.eventsURL(), payload)
	if err != nil {
		return ProviderEvent{}, err
	}
	return ParseProviderEvent(body)
}

func (g *GoogleProvider) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, string(body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("google calendar %s failed (%d): %s", method, resp.StatusCode, string(body))
	}
	return body, nil
}
