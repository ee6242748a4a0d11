// Package config assembles the process configuration from defaults, an
// optional YAML/JSON/TOML file, an optional .env file and PHARMAFLOW_*
// environment variables, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/raysh454/pharmaflow/internal/app"
	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/server"
)

// EnvPrefix prefixes every environment variable, e.g. PHARMAFLOW_AGENTS_MODE.
const EnvPrefix = "PHARMAFLOW"

type Config struct {
	Log    logging.Config `mapstructure:"log" envconfig:"LOG"`
	Server server.Config  `mapstructure:"server" envconfig:"SERVER"`

	app.Config `mapstructure:",squash"`
}

// Options points Load at optional files. Empty paths are skipped, except
// that a ./.env file is picked up when EnvFile is empty.
type Options struct {
	ConfigFile string
	EnvFile    string
}

func Default() *Config {
	return &Config{
		Log:    logging.DefaultConfig(),
		Server: server.DefaultConfig(),
		Config: *app.DefaultConfig(),
	}
}

// Load returns the defaults overlaid with opts.ConfigFile, then the
// environment (after exporting opts.EnvFile into it).
func Load(opts Options) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		v := viper.New()
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", opts.ConfigFile, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.EnvFile != "" {
		if err := exportEnvironment(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := exportEnvironmentIfExists(".env"); err != nil {
		return nil, fmt.Errorf("failed to load default env file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

func exportEnvironmentIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(path)
}

// exportEnvironment copies every KEY=value of a dotenv file into the
// process environment.
func exportEnvironment(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		if err := os.Setenv(strings.ToUpper(k), fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}
