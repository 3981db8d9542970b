package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds server settings read from the environment. Command-line
// flags take precedence over these values.
type Settings struct {
	Host          string        `env:"SOKOBAN_HOST"           envDefault:"localhost"`
	Port          int           `env:"SOKOBAN_PORT"           envDefault:"8080"`
	LevelDir      string        `env:"SOKOBAN_LEVEL_DIR"      envDefault:"levels"`
	DefaultLevel  string        `env:"SOKOBAN_DEFAULT_LEVEL"`
	RecordsDriver string        `env:"SOKOBAN_RECORDS_DRIVER" envDefault:"memory"`
	RecordsDSN    string        `env:"SOKOBAN_RECORDS_DSN"`
	JournalDir    string        `env:"SOKOBAN_JOURNAL_DIR"`
	SessionTTL    time.Duration `env:"SOKOBAN_SESSION_TTL"    envDefault:"24h"`
	OTelEndpoint  string        `env:"SOKOBAN_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings returns the server settings with defaults applied
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	switch s.RecordsDriver {
	case "memory", "sqlite", "postgres":
	default:
		return Settings{}, fmt.Errorf("parse env: unknown records driver %q", s.RecordsDriver)
	}
	return s, nil
}
