package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// APIBaseURL is the question source endpoint. A question count is
	// appended as the final path segment, e.g. {APIBaseURL}/1.
	APIBaseURL string

	// FlashcardsURL is the flashcard source endpoint, same shape as
	// APIBaseURL.
	FlashcardsURL string

	// HTTPTimeout is the maximum duration for a single question fetch.
	HTTPTimeout time.Duration

	// DBPath is the SQLite key-value store location. Empty means the
	// default XDG data path.
	DBPath string

	// RebindDebounce coalesces rapid storage-key changes (exam switches)
	// into a single re-read.
	RebindDebounce time.Duration

	// WatchInterval is how often the store is polled for writes made by
	// another process.
	WatchInterval time.Duration

	// UnlockTTL is how long a freshly unlocked achievement stays in the
	// newly-unlocked set for celebration display.
	UnlockTTL time.Duration

	// Debug enables verbose console logging.
	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "https://quientecrea.pythonanywhere.com/api/v1/questions",
		FlashcardsURL:  "https://quientecrea.pythonanywhere.com/api/v1/flashcards",
		HTTPTimeout:    15 * time.Second,
		RebindDebounce: 150 * time.Millisecond,
		WatchInterval:  time.Second,
		UnlockTTL:      5 * time.Second,
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("EXAMLY_API_URL"); u != "" {
		cfg.APIBaseURL = u
	}
	if u := os.Getenv("EXAMLY_FLASHCARDS_URL"); u != "" {
		cfg.FlashcardsURL = u
	}
	if p := os.Getenv("EXAMLY_DB"); p != "" {
		cfg.DBPath = p
	}
	if t := os.Getenv("EXAMLY_HTTP_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if d := os.Getenv("EXAMLY_DEBUG"); d != "" {
		if v, err := strconv.ParseBool(d); err == nil {
			cfg.Debug = v
		}
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("EXAMLY_API_URL must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}
