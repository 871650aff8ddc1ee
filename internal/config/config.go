// Package config binds the engine's runtime tunables (mode-selection
// threshold, worker chunk count, partition degree-weight alpha) to
// environment-variable overrides via viper, so a deployment can adjust
// them without recompiling, the way perf-analysis/pkg/config does for
// its own service tunables.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Tunables holds every engine knob that can be overridden outside the
// CLI flags that normally set them.
type Tunables struct {
	DenseThreshold int    `mapstructure:"dense_threshold"`
	Sockets        int    `mapstructure:"sockets"`
	DegreeAlpha    int    `mapstructure:"degree_alpha"`
	LogLevel       string `mapstructure:"log_level"`
}

// Load reads Tunables from environment variables prefixed GEMINIGO_
// (e.g. GEMINIGO_DENSE_THRESHOLD), falling back to the given defaults
// for anything unset.
func Load(defaults Tunables) (*Tunables, error) {
	v := viper.New()
	v.SetEnvPrefix("geminigo")
	v.AutomaticEnv()

	v.SetDefault("dense_threshold", defaults.DenseThreshold)
	v.SetDefault("sockets", defaults.Sockets)
	v.SetDefault("degree_alpha", defaults.DegreeAlpha)
	v.SetDefault("log_level", defaults.LogLevel)

	for _, key := range []string{"dense_threshold", "sockets", "degree_alpha", "log_level"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind env %q: %w", key, err)
		}
	}

	cfg := Tunables{
		DenseThreshold: v.GetInt("dense_threshold"),
		Sockets:        v.GetInt("sockets"),
		DegreeAlpha:    v.GetInt("degree_alpha"),
		LogLevel:       v.GetString("log_level"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Tunables) validate() error {
	if c.DenseThreshold <= 0 {
		return fmt.Errorf("config: dense_threshold must be > 0, got %d", c.DenseThreshold)
	}
	if c.Sockets < 0 {
		return fmt.Errorf("config: sockets must be >= 0, got %d", c.Sockets)
	}
	if c.DegreeAlpha <= 0 {
		return fmt.Errorf("config: degree_alpha must be > 0, got %d", c.DegreeAlpha)
	}
	return nil
}
