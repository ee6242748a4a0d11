package agents

import (
	"time"

	"github.com/raysh454/pharmaflow/internal/webclient"
)

type Mode string

const (
	ModeMock Mode = "mock"
	ModeLive Mode = "live"
)

// ProviderConfig points a live unit at its upstream API.
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url" envconfig:"BASE_URL"`
	APIKey  string `mapstructure:"api_key" envconfig:"API_KEY"`
}

// MockConfig tunes the fixed-latency mock units.
type MockConfig struct {
	MarketLatency     time.Duration `mapstructure:"market_latency" envconfig:"MARKET_LATENCY"`
	TrialsLatency     time.Duration `mapstructure:"trials_latency" envconfig:"TRIALS_LATENCY"`
	PatentsLatency    time.Duration `mapstructure:"patents_latency" envconfig:"PATENTS_LATENCY"`
	LiteratureLatency time.Duration `mapstructure:"literature_latency" envconfig:"LITERATURE_LATENCY"`

	// FailUnits names units that always fail, for demos.
	FailUnits []string `mapstructure:"fail_units" envconfig:"FAIL_UNITS"`
}

// Config selects mock or live units and configures them.
type Config struct {
	Mode Mode `mapstructure:"mode" envconfig:"MODE"`

	// Timeout bounds one live unit's whole fetch. Each unit enforces its
	// own deadline; the aggregator never cancels a unit.
	Timeout time.Duration `mapstructure:"timeout" envconfig:"TIMEOUT"`

	WebClient webclient.Config `mapstructure:"webclient" envconfig:"WEBCLIENT"`
	Mock      MockConfig       `mapstructure:"mock" envconfig:"MOCK"`

	Market     ProviderConfig `mapstructure:"market" envconfig:"MARKET"`
	Trials     ProviderConfig `mapstructure:"trials" envconfig:"TRIALS"`
	Patents    ProviderConfig `mapstructure:"patents" envconfig:"PATENTS"`
	Literature ProviderConfig `mapstructure:"literature" envconfig:"LITERATURE"`

	// TrialsPageSize is the number of studies requested per search.
	TrialsPageSize int `mapstructure:"trials_page_size" envconfig:"TRIALS_PAGE_SIZE"`
	// MaxArticles caps the literature summaries fetched per request.
	MaxArticles int `mapstructure:"max_articles" envconfig:"MAX_ARTICLES"`
}

// DefaultConfig returns mock mode with the reference latencies. Live mode
// defaults to the local demo providers (cmd/demoproviders); point the base
// URLs at clinicaltrials.gov/api/v2, eutils.ncbi.nlm.nih.gov/entrez/eutils
// and the licensed market/patent APIs for real data.
func DefaultConfig() Config {
	return Config{
		Mode:    ModeMock,
		Timeout: 60 * time.Second,
		WebClient: webclient.Config{
			Client:    webclient.ClientNetHTTP,
			Timeout:   30 * time.Second,
			UserAgent: "pharmaflow/1.0",
		},
		Mock: MockConfig{
			MarketLatency:     500 * time.Millisecond,
			TrialsLatency:     600 * time.Millisecond,
			PatentsLatency:    400 * time.Millisecond,
			LiteratureLatency: 700 * time.Millisecond,
		},
		Market:         ProviderConfig{BaseURL: "http://localhost:9999/iqvia"},
		Trials:         ProviderConfig{BaseURL: "http://localhost:9999/ctgov/api/v2"},
		Patents:        ProviderConfig{BaseURL: "http://localhost:9999/patents"},
		Literature:     ProviderConfig{BaseURL: "http://localhost:9999/eutils"},
		TrialsPageSize: 50,
		MaxArticles:    10,
	}
}
