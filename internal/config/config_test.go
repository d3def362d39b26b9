package config

import (
	"testing"
	"time"
)

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("EXAMLY_API_URL", "http://localhost:9999/api/questions")
	t.Setenv("EXAMLY_FLASHCARDS_URL", "http://localhost:9999/api/flashcards")
	t.Setenv("EXAMLY_DB", "/tmp/examly-test.db")
	t.Setenv("EXAMLY_HTTP_TIMEOUT", "3s")
	t.Setenv("EXAMLY_DEBUG", "true")

	cfg := FromEnv()
	if cfg.APIBaseURL != "http://localhost:9999/api/questions" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.FlashcardsURL != "http://localhost:9999/api/flashcards" {
		t.Errorf("FlashcardsURL = %q", cfg.FlashcardsURL)
	}
	if cfg.DBPath != "/tmp/examly-test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if !cfg.Debug {
		t.Error("Debug = false")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("EXAMLY_API_URL", "")
	t.Setenv("EXAMLY_HTTP_TIMEOUT", "not-a-duration")

	cfg := FromEnv()
	def := DefaultConfig()
	if cfg.APIBaseURL != def.APIBaseURL {
		t.Errorf("APIBaseURL = %q, want default", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != def.HTTPTimeout {
		t.Errorf("HTTPTimeout = %s, want default", cfg.HTTPTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.APIBaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty API URL passed validation")
	}

	cfg = DefaultConfig()
	cfg.HTTPTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero timeout passed validation")
	}
}
