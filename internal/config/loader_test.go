package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"BOOKING_HTTP_PORT",
			"BOOKING_SQLITE_DSN",
			"BOOKING_SESSION_TTL",
			"BOOKING_GRID_CACHE_TTL",
			"BOOKING_DATE_WINDOW",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		t.Setenv("BOOKING_SEMESTER_START", "2025-09-01")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:booking.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.GridCacheTTL != 15*time.Second {
			t.Fatalf("expected default grid cache TTL 15s, got %s", cfg.GridCacheTTL)
		}
		if cfg.DateWindow != 14 {
			t.Fatalf("expected default date window 14, got %d", cfg.DateWindow)
		}
		want := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
		if !cfg.SemesterStart.Equal(want) {
			t.Fatalf("unexpected semester start: %v", cfg.SemesterStart)
		}
	})

	t.Run("errors when the semester start is missing", func(t *testing.T) {
		if err := os.Unsetenv("BOOKING_SEMESTER_START"); err != nil {
			t.Fatalf("failed to unset BOOKING_SEMESTER_START: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: BOOKING_SEMESTER_START"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("BOOKING_SEMESTER_START", "2025-09-01")
		t.Setenv("BOOKING_HTTP_PORT", "9090")
		t.Setenv("BOOKING_SQLITE_DSN", "file:/tmp/booking.db")
		t.Setenv("BOOKING_SESSION_TTL", "12h")
		t.Setenv("BOOKING_GRID_CACHE_TTL", "30s")
		t.Setenv("BOOKING_DATE_WINDOW", "7")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/booking.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.GridCacheTTL != 30*time.Second {
			t.Fatalf("expected grid cache TTL 30s, got %s", cfg.GridCacheTTL)
		}
		if cfg.DateWindow != 7 {
			t.Fatalf("expected date window 7, got %d", cfg.DateWindow)
		}
	})

	t.Run("reports invalid values", func(t *testing.T) {
		t.Setenv("BOOKING_SEMESTER_START", "2025-09-01")
		t.Setenv("BOOKING_HTTP_PORT", "-1")
		t.Setenv("BOOKING_DATE_WINDOW", "zero")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "invalid environment variable values: BOOKING_HTTP_PORT, BOOKING_DATE_WINDOW"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("rejects malformed semester start dates", func(t *testing.T) {
		t.Setenv("BOOKING_SEMESTER_START", "01/09/2025")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed semester start")
		}
		expected := "invalid environment variable values: BOOKING_SEMESTER_START"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
