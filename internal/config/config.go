// Package config loads the daemon configuration from its config file,
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultSocket   = "/run/corral/corrald.sock"
	DefaultStateDir = "/var/lib/corral/containers"
)

type Config struct {
	// Socket is the unix control socket the daemon listens on.
	Socket string `mapstructure:"socket"`

	// StateDir holds the persisted entity snapshots.
	StateDir string `mapstructure:"state_dir"`

	// LogFile receives daemon logs; empty means stderr.
	LogFile string `mapstructure:"log_file"`

	Debug bool `mapstructure:"debug"`

	// Enforce applies resource properties to cgroups as they are set.
	Enforce bool `mapstructure:"enforce"`
}

// Load reads the configuration from path, or from /etc/corral/corrald.yaml
// if path is empty (missing file is fine in that case). CORRALD_* env vars
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("socket", DefaultSocket)
	v.SetDefault("state_dir", DefaultStateDir)
	v.SetDefault("log_file", "")
	v.SetDefault("debug", false)
	v.SetDefault("enforce", false)

	v.SetEnvPrefix("corrald")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("corrald")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/corral")

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
