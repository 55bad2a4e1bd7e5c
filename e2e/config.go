// Package e2e drives a running chat room over HTTP.
// Tests are skipped unless E2E_BASE_URL points at a server.
package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL string `envconfig:"E2E_BASE_URL"`
	// E2E_STALE_WAIT is how long to stay silent before expecting an eviction,
	// it must exceed the server's REAP_INTERVAL plus STALE_THRESHOLD. Zero skips that scenario.
	StaleWait time.Duration `envconfig:"E2E_STALE_WAIT" default:"0s"`
	Timeout   time.Duration `envconfig:"E2E_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
