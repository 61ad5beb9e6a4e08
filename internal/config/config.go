package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the compilerd service's configuration (spec.md §9 "Hosting"
// is silent on transport, so we carry the teacher's viper-backed
// config layer, scoped down to what a stateless compiler needs: a
// listen port and the default compile Options applied when a request
// doesn't override them).
type Config struct {
	Server         ServerConfig  `mapstructure:"server"`
	DefaultOptions OptionsConfig `mapstructure:"default_options"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// OptionsConfig mirrors schema.Options so it can be read straight out of
// app.yaml / env vars without importing internal/schema from config.
type OptionsConfig struct {
	InlineParams   bool `mapstructure:"inline_params"`
	InlineDefaults bool `mapstructure:"inline_defaults"`
	ExpandColumns  bool `mapstructure:"expand_columns"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("default_options.inline_params", false)
	viper.SetDefault("default_options.inline_defaults", false)
	viper.SetDefault("default_options.expand_columns", false)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
