package demoprov

import "time"

// Provider names accepted by the failure switches.
const (
	ProviderMarket     = "iqvia"
	ProviderTrials     = "ctgov"
	ProviderPatents    = "patents"
	ProviderLiterature = "eutils"
)

// Providers lists every fake upstream in mount order.
var Providers = []string{ProviderMarket, ProviderTrials, ProviderPatents, ProviderLiterature}

// Config holds configuration for the demo provider server.
type Config struct {
	// Port is the port on which the demo providers listen.
	Port int

	// APIKey, when set, is required as a bearer token by the market and
	// patent providers.
	APIKey string

	// Latency is added to every provider response.
	Latency time.Duration

	// Fail names providers that start out answering 503.
	Fail []string

	// Now anchors generated dates. Zero means time.Now.
	Now func() time.Time
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:    9999,
		Latency: 150 * time.Millisecond,
	}
}
