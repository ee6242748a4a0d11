package app

import (
	"errors"
	"fmt"

	"github.com/raysh454/pharmaflow/internal/agents"
	"github.com/raysh454/pharmaflow/internal/ledger"
	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/report"
)

// Components are the long-lived parts the orchestrator drives.
type Components struct {
	Ledger   *ledger.Ledger
	Registry *agents.Registry

	// Producer is nil when reports are disabled. Store backs it and serves
	// artifacts back out; it may be set without a Producer.
	Producer report.Producer
	Store    *report.Store
}

// NewComponents builds the ledger, the worker registry and, when enabled,
// the report producer with its SQLite store.
func NewComponents(cfg *Config, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	reg, err := agents.NewRegistry(cfg.Agents, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("new agent registry: %w", err)
	}

	comps := &Components{
		Ledger:   ledger.New(cfg.Ledger, logger),
		Registry: reg,
	}

	if cfg.Report.Enabled {
		store, err := report.OpenStore(cfg.Report.StorePath, logger)
		if err != nil {
			_ = comps.Close()
			return nil, fmt.Errorf("open report store: %w", err)
		}
		comps.Store = store

		renderer, err := report.NewRenderer(cfg.Report.Format)
		if err != nil {
			_ = comps.Close()
			return nil, err
		}
		prod, err := report.NewDocumentProducer(renderer, store, cfg.Report.PublicBaseURL, logger)
		if err != nil {
			_ = comps.Close()
			return nil, fmt.Errorf("new report producer: %w", err)
		}
		comps.Producer = prod
	}
	return comps, nil
}

// Close releases every component. Any in-flight run will fail to record its
// outcome after this.
func (c *Components) Close() error {
	var errs []error
	if c.Ledger != nil {
		if err := c.Ledger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ledger: %w", err))
		}
	}
	if c.Registry != nil {
		if err := c.Registry.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close registry: %w", err))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close report store: %w", err))
		}
	}
	return errors.Join(errs...)
}
