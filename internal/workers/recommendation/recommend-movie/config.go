// internal/workers/recommendation/recommend-movie/config.go
package recommendmovie

import (
	"time"

	"cinema-sage/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// ConfigFrom takes the job timeout from the worker's settings, keeping the
// default when none is set.
func ConfigFrom(wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
