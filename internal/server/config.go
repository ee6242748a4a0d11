package server

import "time"

type Config struct {
	// ListenAddr is the HTTP listen address for the API server (the CLI's
	// discover command uses the orchestrator in-process and does not
	// require the network).
	ListenAddr string `mapstructure:"listen_addr" envconfig:"LISTEN_ADDR"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`

	// Version is reported by the root banner.
	Version string `mapstructure:"version" envconfig:"VERSION"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8000",
		ReadTimeout:     15 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Version:         "1.0.0",
	}
}
