package app

import (
	"time"

	"github.com/raysh454/pharmaflow/internal/agents"
	"github.com/raysh454/pharmaflow/internal/ledger"
	"github.com/raysh454/pharmaflow/internal/model"
	"github.com/raysh454/pharmaflow/internal/report"
)

// Config holds everything the orchestrator needs to build its components.
type Config struct {
	// MaxSubjectLength bounds molecule_name (and indication) in characters.
	MaxSubjectLength int `mapstructure:"max_subject_length" envconfig:"MAX_SUBJECT_LENGTH"`

	// EstimatedTime is echoed in every receipt.
	EstimatedTime string `mapstructure:"estimated_time" envconfig:"ESTIMATED_TIME"`

	Agents agents.Config `mapstructure:"agents" envconfig:"AGENTS"`
	Report report.Config `mapstructure:"report" envconfig:"REPORT"`
	Ledger ledger.Config `mapstructure:"ledger" envconfig:"LEDGER"`
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxSubjectLength: model.DefaultMaxSubjectLength,
		EstimatedTime:    "2-5 minutes",
		Agents:           agents.DefaultConfig(),
		Report:           report.DefaultConfig(),
		Ledger: ledger.Config{
			SweepInterval: time.Minute,
			WatchBuffer:   8,
		},
	}
}
