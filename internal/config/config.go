package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the process configuration, populated from environment
// variables at startup.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Store struct {
		// Path is the directory handle of the backing result store.
		// Required unless InMemory is set; its absence is a fatal
		// startup error, never a per-request one.
		Path     string `env:"STORE_PATH"`
		InMemory bool   `env:"STORE_IN_MEMORY" envDefault:"false"`
	}
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	if !cfg.Store.InMemory && cfg.Store.Path == "" {
		return nil, errors.New("config: STORE_PATH is required (or set STORE_IN_MEMORY=true)")
	}

	return cfg, nil
}
