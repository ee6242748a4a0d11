package agents

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/webclient"
)

// DefaultUnits is the fan-out order used for every request.
var DefaultUnits = []string{UnitMarketData, UnitClinicalTrials, UnitPatents, UnitLiterature}

// Registry is the fixed, ordered set of units fanned out per request.
// It is built once at startup and never mutated.
type Registry struct {
	agents []Agent
	byName map[string]Agent
	owned  webclient.WebClient
}

// NewRegistry builds the configured units. In live mode a nil wc is
// replaced by one built from cfg.WebClient and closed by Close.
func NewRegistry(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Registry, error) {
	switch cfg.Mode {
	case ModeMock, "":
		return newMockRegistry(cfg, logger)
	case ModeLive:
	default:
		return nil, fmt.Errorf("unknown agents mode %q", cfg.Mode)
	}

	var owned webclient.WebClient
	if wc == nil {
		var err error
		if wc, err = webclient.NewWebClient(cfg.WebClient, logger); err != nil {
			return nil, err
		}
		owned = wc
	}

	r, err := NewStaticRegistry(
		NewMarketDataAgent(cfg.Market, wc, cfg.Timeout),
		NewClinicalTrialsAgent(cfg.Trials, wc, cfg.Timeout, cfg.TrialsPageSize),
		NewPatentAgent(cfg.Patents, wc, cfg.Timeout),
		NewLiteratureAgent(cfg.Literature, wc, cfg.Timeout, cfg.MaxArticles),
	)
	if err != nil {
		return nil, err
	}
	r.owned = owned
	logger.Info("agents registered", logging.Field{Key: "mode", Value: string(ModeLive)}, logging.Field{Key: "units", Value: r.Names()})
	return r, nil
}

func newMockRegistry(cfg Config, logger logging.Logger) (*Registry, error) {
	fixtures, err := LoadFixtures()
	if err != nil {
		return nil, err
	}
	latency := map[string]time.Duration{
		UnitMarketData:     cfg.Mock.MarketLatency,
		UnitClinicalTrials: cfg.Mock.TrialsLatency,
		UnitPatents:        cfg.Mock.PatentsLatency,
		UnitLiterature:     cfg.Mock.LiteratureLatency,
	}

	for _, u := range cfg.Mock.FailUnits {
		if !slices.Contains(DefaultUnits, u) {
			return nil, fmt.Errorf("mock fail unit %q is not a known unit", u)
		}
	}

	agents := make([]Agent, 0, len(DefaultUnits))
	for _, u := range DefaultUnits {
		fail := slices.Contains(cfg.Mock.FailUnits, u)
		agents = append(agents, NewMockAgent(u, latency[u], fixtures[u], fail))
	}
	r, err := NewStaticRegistry(agents...)
	if err != nil {
		return nil, err
	}
	logger.Info("agents registered", logging.Field{Key: "mode", Value: string(ModeMock)}, logging.Field{Key: "units", Value: r.Names()})
	return r, nil
}

// NewStaticRegistry wraps an explicit unit list. Names must be unique and
// non-empty.
func NewStaticRegistry(agents ...Agent) (*Registry, error) {
	if len(agents) == 0 {
		return nil, errors.New("registry needs at least one agent")
	}
	r := &Registry{byName: make(map[string]Agent, len(agents))}
	for _, a := range agents {
		if a == nil || a.Name() == "" {
			return nil, errors.New("agent with empty name")
		}
		if _, dup := r.byName[a.Name()]; dup {
			return nil, fmt.Errorf("duplicate agent %q", a.Name())
		}
		r.byName[a.Name()] = a
		r.agents = append(r.agents, a)
	}
	return r, nil
}

// Agents returns the units in registration order.
func (r *Registry) Agents() []Agent {
	return slices.Clone(r.agents)
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.agents))
	for i, a := range r.agents {
		out[i] = a.Name()
	}
	return out
}

func (r *Registry) Get(name string) (Agent, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Close releases the web client the registry built for itself, if any.
func (r *Registry) Close() error {
	if r.owned == nil {
		return nil
	}
	return r.owned.Close()
}
