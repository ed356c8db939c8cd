package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_COLOURS enables colorized step headers for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_LOG_LEVEL is the level of the application logger under test
	LogLevel string `envconfig:"E2E_LOG_LEVEL" default:"WARN"`
	// E2E_SNAPSHOT_TIMEOUT bounds the wait for the assistant to see a write
	SnapshotTimeout time.Duration `envconfig:"E2E_SNAPSHOT_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
