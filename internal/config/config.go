// Package config reads process-wide tunables from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime defaults of the tool. Command-line flags
// override individual fields.
type Config struct {
	// Workers is the search worker count; 0 means one per CPU.
	Workers int `envconfig:"TONSHARD_WORKERS" default:"0"`

	// DefaultDepth is the subdivision depth used by shard lookups
	// when no explicit depth is given.
	DefaultDepth uint8 `envconfig:"TONSHARD_DEPTH" default:"2"`

	// NetConfigURL points at the global network config used to dial
	// liteservers for --net operations.
	NetConfigURL string `envconfig:"TONSHARD_NET_CONFIG" default:"https://ton.org/global.config.json"`

	// ProgressInterval is how often the search logs attempt rates.
	ProgressInterval time.Duration `envconfig:"TONSHARD_PROGRESS_INTERVAL" default:"5s"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	return cfg, nil
}
