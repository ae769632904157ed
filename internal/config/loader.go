package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionTTL    time.Duration
	SemesterStart time.Time
	GridCacheTTL  time.Duration
	DateWindow    int
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting every offending variable at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		SQLiteDSN:    "file:booking.db?_foreign_keys=on",
		SessionTTL:   24 * time.Hour,
		GridCacheTTL: 15 * time.Second,
		DateWindow:   14,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if startValue := strings.TrimSpace(os.Getenv("BOOKING_SEMESTER_START")); startValue == "" {
		missing = append(missing, "BOOKING_SEMESTER_START")
	} else {
		start, err := time.Parse("2006-01-02", startValue)
		if err != nil {
			invalid = append(invalid, "BOOKING_SEMESTER_START")
		} else {
			cfg.SemesterStart = start
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_GRID_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_GRID_CACHE_TTL")
		} else {
			cfg.GridCacheTTL = ttl
		}
	}

	if windowValue := strings.TrimSpace(os.Getenv("BOOKING_DATE_WINDOW")); windowValue != "" {
		window, err := strconv.Atoi(windowValue)
		if err != nil || window <= 0 {
			invalid = append(invalid, "BOOKING_DATE_WINDOW")
		} else {
			cfg.DateWindow = window
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
