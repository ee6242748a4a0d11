// Command demoproviders serves fake market, clinical trial, patent and
// literature APIs so live agent mode can run offline.
// Usage: go run ./cmd/demoproviders [--port 9999] [--fail patents]
// Then start pharmaflow with PHARMAFLOW_AGENTS_MODE=live.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/pharmaflow/internal/demoprov"
)

func main() {
	cfg := demoprov.DefaultConfig()

	cmd := &cobra.Command{
		Use:          "demoproviders",
		Short:        "Serve fake upstream data providers for live agent mode",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Port < 1 || cfg.Port > 65535 {
				return fmt.Errorf("invalid port: %d", cfg.Port)
			}

			fmt.Println("===========================================")
			fmt.Println("   Pharmaflow Demo Providers")
			fmt.Println("===========================================")
			fmt.Println()
			fmt.Println("Providers mounted:")
			fmt.Println("  - /iqvia       market size, sales trends, competitors")
			fmt.Println("  - /ctgov       clinical trial registry (v2 studies)")
			fmt.Println("  - /patents     patent search results page")
			fmt.Println("  - /eutils      literature esearch / esummary")
			if len(cfg.Fail) > 0 {
				fmt.Printf("Failing from start: %s\n", strings.Join(cfg.Fail, ", "))
			}
			fmt.Println()

			server, err := demoprov.NewServer(cfg)
			if err != nil {
				return err
			}
			return server.Start()
		},
	}
	cmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	cmd.Flags().DurationVar(&cfg.Latency, "latency", cfg.Latency, "delay added to every provider response")
	cmd.Flags().StringVar(&cfg.APIKey, "api-key", "", "bearer token required by the market and patent providers")
	cmd.Flags().StringSliceVar(&cfg.Fail, "fail", nil, "providers that answer 503 from start ("+strings.Join(demoprov.Providers, ", ")+")")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
