package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SERVER_ADDR points at a running instance, e.g. "localhost:8080".
	// The suite is skipped when it is empty.
	ServerAddr string `envconfig:"SERVER_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_TOKEN_DURATION is the lifetime of the tokens minted for the run
	TokenDuration time.Duration `envconfig:"E2E_TOKEN_DURATION" default:"1h"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
