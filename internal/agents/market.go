package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/raysh454/pharmaflow/internal/webclient"
)

// MarketPayload forwards the market provider's three documents untouched.
type MarketPayload struct {
	MarketSize           json.RawMessage `json:"market_size"`
	SalesTrends          json.RawMessage `json:"sales_trends"`
	CompetitiveLandscape json.RawMessage `json:"competitive_landscape"`
}

// MarketDataAgent queries an IQVIA-style market data API with bearer auth.
type MarketDataAgent struct {
	cfg     ProviderConfig
	wc      webclient.WebClient
	timeout time.Duration
}

func NewMarketDataAgent(cfg ProviderConfig, wc webclient.WebClient, timeout time.Duration) *MarketDataAgent {
	return &MarketDataAgent{cfg: cfg, wc: wc, timeout: timeout}
}

func (a *MarketDataAgent) Name() string { return UnitMarketData }

func (a *MarketDataAgent) Fetch(ctx context.Context, q Query) (any, error) {
	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	auth := bearer(a.cfg.APIKey)
	drug := url.Values{"drug": {q.Subject}}

	indication := q.Indication
	if indication == "" {
		indication = q.Subject
	}

	var out MarketPayload
	steps := []struct {
		path   string
		params url.Values
		dst    *json.RawMessage
	}{
		{"market-size", drug, &out.MarketSize},
		{"sales-trends", drug, &out.SalesTrends},
		{"competitors", url.Values{"indication": {indication}}, &out.CompetitiveLandscape},
	}
	for _, s := range steps {
		if err := getJSON(ctx, a.wc, endpoint(a.cfg.BaseURL, s.path, s.params), auth, s.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}
	}
	return &out, nil
}
