package supabase

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config holds the Supabase project coordinates.
type Config struct {
	// URL is the project base URL (e.g. "https://xyzcompany.supabase.co").
	URL string

	// AnonKey is the project's public anon API key. Sent as the apikey header
	// on every request and as the bearer token before a user signs in.
	AnonKey string

	// HTTPClient overrides the client used for all calls.
	// Default: 10 second timeout.
	HTTPClient *http.Client

	// RefreshLeeway is how long before expiry a session is refreshed when it
	// is read back through GetCurrentSession.
	// Default: 30 seconds.
	RefreshLeeway time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(url, anonKey string) Config {
	return Config{
		URL:           url,
		AnonKey:       anonKey,
		RefreshLeeway: 30 * time.Second,
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("supabase: project URL is required")
	}
	if strings.TrimSpace(c.AnonKey) == "" {
		return fmt.Errorf("supabase: anon key is required")
	}
	return nil
}

func (c Config) baseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(c.URL), "/")
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c Config) refreshLeeway() time.Duration {
	if c.RefreshLeeway > 0 {
		return c.RefreshLeeway
	}
	return 30 * time.Second
}
