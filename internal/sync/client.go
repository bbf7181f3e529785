// Package sync manages the calendar provider connection and background
// synchronization.
package sync

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/existflow/focusboard/internal/calendar"
	"github.com/existflow/focusboard/internal/config"
)

// Provider kinds stored in the connection file.
const (
	ProviderNone   = ""
	ProviderGoogle = "google"
	ProviderICS    = "ics"
)

// PassphraseEnv supplies the token passphrase non-interactively.
const PassphraseEnv = "FOCUSBOARD_PASSPHRASE"

// Config holds the calendar connection
type Config struct {
	Provider    string `json:"provider"`
	CalendarID  string `json:"calendar_id,omitempty"`
	ICSURL      string `json:"ics_url,omitempty"`
	SealedToken string `json:"sealed_token,omitempty"` // Vault-encrypted OAuth token
	Salt        string `json:"salt,omitempty"`         // Base64 encoded salt for key derivation
	LastSync    int64  `json:"last_sync"`
}

// Client owns the connection file (~/.focusboard/calendar.json).
type Client struct {
	config     *Config
	configPath string

	// googleOpts are passed to every GoogleProvider built (tests).
	googleOpts []calendar.GoogleOption
}

// DefaultPath returns ~/.focusboard/calendar.json
func DefaultPath() string {
	return filepath.Join(config.HomeDir(), "calendar.json")
}

// NewClient loads the connection file at path; a missing file means no
// provider is connected.
func NewClient(path string, opts ...calendar.GoogleOption) (*Client, error) {
	c := &Client{configPath: path, googleOpts: opts}
	if err := c.loadConfig(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewDisconnectedClient returns a client with no provider for path. A
// later connect overwrites whatever is stored there.
func NewDisconnectedClient(path string, opts ...calendar.GoogleOption) *Client {
	return &Client{config: &Config{}, configPath: path, googleOpts: opts}
}

func (c *Client) loadConfig() error {
	c.config = &Config{}
	data, err := os.ReadFile(c.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, c.config); err != nil {
		return fmt.Errorf("corrupt calendar config %s: %w", c.configPath, err)
	}
	return nil
}

func (c *Client) saveConfig() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// ConnectGoogle stores token sealed with passphrase.
func (c *Client) ConnectGoogle(token calendar.Token, calendarID, passphrase string) error {
	if token.AccessToken == "" {
		return errors.New("access token is required")
	}
	if passphrase == "" {
		return errors.New("passphrase is required to protect the token")
	}

	salt, err := GenerateSalt()
	if err != nil {
		return err
	}
	sealed, err := NewVault(passphrase, salt).SealToken(token)
	if err != nil {
		return err
	}

	c.config = &Config{
		Provider:    ProviderGoogle,
		CalendarID:  calendarID,
		SealedToken: sealed,
		Salt:        base64.StdEncoding.EncodeToString(salt),
	}
	return c.saveConfig()
}

// ConnectICS subscribes to a read-only feed.
func (c *Client) ConnectICS(url string) error {
	if url == "" {
		return errors.New("feed url is required")
	}
	c.config = &Config{Provider: ProviderICS, ICSURL: url}
	return c.saveConfig()
}

// Disconnect forgets the provider and its token.
func (c *Client) Disconnect() error {
	c.config = &Config{}
	return c.saveConfig()
}

// Kind returns the connected provider kind, or ProviderNone.
func (c *Client) Kind() string { return c.config.Provider }

// NeedsPassphrase reports whether Provider needs a passphrase.
func (c *Client) NeedsPassphrase() bool { return c.config.Provider == ProviderGoogle }

// Provider builds the connected provider. It returns (nil, nil) when none
// is configured.
func (c *Client) Provider(passphrase string) (calendar.Provider, error) {
	switch c.config.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderICS:
		return calendar.NewICSProvider(c.config.ICSURL), nil
	case ProviderGoogle:
		salt, err := base64.StdEncoding.DecodeString(c.config.Salt)
		if err != nil {
			return nil, fmt.Errorf("corrupt salt: %w", err)
		}
		token, err := NewVault(passphrase, salt).OpenToken(c.config.SealedToken)
		if err != nil {
			return nil, err
		}
		opts := c.googleOpts
		if c.config.CalendarID != "" {
			opts = append([]calendar.GoogleOption{calendar.WithCalendarID(c.config.CalendarID)}, opts...)
		}
		return calendar.NewGoogleProvider(token, opts...), nil
	}
	return nil, fmt.Errorf("unknown provider %q", c.config.Provider)
}

// MarkSynced records a successful sync.
func (c *Client) MarkSynced(t time.Time) error {
	c.config.LastSync = t.Unix()
	return c.saveConfig()
}

// GetStatus returns the provider kind, feed url and last sync time.
func (c *Client) GetStatus() (string, string, time.Time) {
	var last time.Time
	if c.config.LastSync > 0 {
		last = time.Unix(c.config.LastSync, 0)
	}
	return c.config.Provider, c.config.ICSURL, last
}
