// Package cli is the pharmaflow command line: an HTTP server plus one-shot
// helpers that drive the orchestrator in-process.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/pharmaflow/internal/config"
	"github.com/raysh454/pharmaflow/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type rootFlags struct {
	configFile string
	envFile    string
}

func (f *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(config.Options{ConfigFile: f.configFile, EnvFile: f.envFile})
	if err != nil {
		return nil, err
	}
	// Stdout carries command output; logs go to stderr.
	logging.Init(cfg.Log, os.Stderr)
	return cfg, nil
}

// NewRootCommand builds the command tree. Each call returns a fresh tree so
// tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "pharmaflow",
		Short: "Multi-agent discovery orchestration for pharmaceutical research",
		Long: "pharmaflow fans a molecule out to market, clinical trial, patent and\n" +
			"literature agents, combines their findings and renders a report.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      Version,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "path to a YAML/JSON/TOML config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env", "", "path to a .env file (defaults to ./.env when present)")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newDiscoverCmd(flags))
	root.AddCommand(newAgentsCmd(flags))
	return root
}
