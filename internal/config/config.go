package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config is the process-wide configuration, loaded once from the
// environment at startup.
type Config struct {
	Port               string
	JWTSecret          string
	SQLitePath         string
	DefaultTurnSeconds int
}

var (
	cfg      *Config
	loadOnce sync.Once
	loadErr  error
)

// Load reads the environment once and caches the result; subsequent
// calls return the same *Config regardless of environment changes.
func Load() (*Config, error) {
	loadOnce.Do(func() {
		c := &Config{
			Port:               getEnv("PORT", "8080"),
			JWTSecret:          os.Getenv("JWT_SECRET"),
			SQLitePath:         getEnv("SQLITE_PATH", "cockroachpoker.db"),
			DefaultTurnSeconds: 60,
		}
		if c.JWTSecret == "" {
			loadErr = fmt.Errorf("JWT_SECRET must be set")
			return
		}
		if raw := os.Getenv("DEFAULT_TURN_SECONDS"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				loadErr = fmt.Errorf("DEFAULT_TURN_SECONDS: %w", err)
				return
			}
			c.DefaultTurnSeconds = n
		}
		cfg = c
	})
	return cfg, loadErr
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
