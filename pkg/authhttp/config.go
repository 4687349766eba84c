package authhttp

import (
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// PlaceholderCredential marks a deliberately unauthenticated session. The
	// attacher never sends it.
	PlaceholderCredential = "token"

	DefaultRefreshPath = "/api/auth/refresh"
	DefaultEntryRoute  = "/"

	DefaultAPITimeout   = 80 * time.Second
	DefaultLoginTimeout = 50 * time.Second
)

// Config describes one authenticated client. The attacher and recovery logic
// are shared; only these values differ between clients.
type Config struct {
	Name     string // shows up in logs, e.g. "api"
	BaseURL  string // scheme and host, e.g. "https://quill.example.com"
	BasePath string // prefix for every request path, may be empty
	Timeout  time.Duration

	// AttachCredential enables the credential attacher.
	AttachCredential bool

	// RecoverExpiry enables the 401 recovery in Do.
	RecoverExpiry bool

	// RefreshPath is joined to BaseURL, not BasePath.
	RefreshPath string

	// EntryRoute is where the user is sent when renewal fails.
	EntryRoute string

	// RateLimit caps requests per second; zero disables limiting.
	RateLimit rate.Limit
	RateBurst int

	// Headers are set on every request built by NewRequest.
	Headers map[string]string
}

// APIConfig is the general purpose client: long timeout for slow backend
// work, credential attached, expiry recovered.
func APIConfig(baseURL string) Config {
	return Config{
		Name:             "api",
		BaseURL:          baseURL,
		Timeout:          DefaultAPITimeout,
		AttachCredential: true,
		RecoverExpiry:    true,
		RefreshPath:      DefaultRefreshPath,
		EntryRoute:       DefaultEntryRoute,
		Headers:          map[string]string{"Content-Type": "application/json"},
	}
}

// LoginConfig is the client for the login exchange. The handshake is
// expected to be fast, and a 401 there means bad credentials, not expiry.
func LoginConfig(baseURL string) Config {
	return Config{
		Name:             "login",
		BaseURL:          baseURL,
		Timeout:          DefaultLoginTimeout,
		AttachCredential: true,
		RecoverExpiry:    false,
		RefreshPath:      DefaultRefreshPath,
		EntryRoute:       DefaultEntryRoute,
	}
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	c.BasePath = strings.TrimSuffix(c.BasePath, "/")
	if c.RefreshPath == "" {
		c.RefreshPath = DefaultRefreshPath
	}
	if c.EntryRoute == "" {
		c.EntryRoute = DefaultEntryRoute
	}
	if c.Name == "" {
		c.Name = "http"
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}
