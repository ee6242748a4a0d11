// Command pharmaflow runs the discovery orchestration service.
// Usage: pharmaflow serve | discover MOLECULE | agents
package main

import (
	"os"

	"github.com/raysh454/pharmaflow/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
