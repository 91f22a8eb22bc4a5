// Package config loads the bridgegen project configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tickforge/bridgegen/internal/bridge"
)

// DefaultEnginePath is the import path of the bundled engine package.
const DefaultEnginePath = "github.com/tickforge/bridgegen/pkg/engine"

// Config represents the bridgegen configuration.
type Config struct {
	// Packages are the go/packages patterns scanned for candidates.
	Packages []string `mapstructure:"packages"`
	// OutputRoot anchors the {root}/{namespace}/Generated tree.
	OutputRoot string `mapstructure:"output_root"`
	// EnginePath is the engine package import path. It doubles as the
	// reserved namespace: candidates under it default to excluded.
	EnginePath string `mapstructure:"engine_path"`
	// SelectionFile persists curated inclusion flags between runs.
	SelectionFile string `mapstructure:"selection_file"`
	// Units carries per-candidate overrides keyed by qualified name.
	Units map[string]UnitConfig `mapstructure:"units"`
}

// UnitConfig is the per-candidate configuration block.
type UnitConfig struct {
	// Name overrides the {candidate}_System naming convention.
	Name string `mapstructure:"name"`
	// FastPath overrides the strategy's optimized-path default when set.
	FastPath *bool `mapstructure:"fast_path"`
	// Order positions the bridge within its tick stage.
	Order int `mapstructure:"order"`
}

// Load loads bridgegen.yml or bridgegen.yaml from the working directory.
// A missing file is fine: defaults apply.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("packages", []string{"./..."})
	v.SetDefault("output_root", "generated")
	v.SetDefault("engine_path", DefaultEnginePath)
	v.SetDefault("selection_file", "bridgegen.selection.json")

	v.SetConfigName("bridgegen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.OutputRoot == "" {
		return nil, fmt.Errorf("output_root cannot be empty")
	}
	return &cfg, nil
}

// BridgeOptions converts the per-unit blocks into builder options.
func (c *Config) BridgeOptions() map[string]bridge.Options {
	opts := make(map[string]bridge.Options, len(c.Units))
	for name, u := range c.Units {
		opts[name] = bridge.Options{
			NameOverride: u.Name,
			FastPath:     u.FastPath,
			Order:        u.Order,
		}
	}
	return opts
}
