package agents_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raysh454/pharmaflow/internal/agents"
	"github.com/raysh454/pharmaflow/internal/testutil"
)

// ─── Live registry over an injected web client ─────────────────────────

func liveConfig() agents.Config {
	cfg := agents.DefaultConfig()
	cfg.Mode = agents.ModeLive
	cfg.Market = agents.ProviderConfig{BaseURL: "http://market.test", APIKey: "k"}
	cfg.Trials = agents.ProviderConfig{BaseURL: "http://trials.test"}
	cfg.Patents = agents.ProviderConfig{BaseURL: "http://patents.test"}
	cfg.Literature = agents.ProviderConfig{BaseURL: "http://lit.test"}
	return cfg
}

func TestLiveRegistry_UsesInjectedClient(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	reg, err := agents.NewRegistry(liveConfig(), wc, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	defer reg.Close()

	a, ok := reg.Get(agents.UnitMarketData)
	if !ok {
		t.Fatal("market unit not registered")
	}
	// The dummy answers "ok:<url>", which is not JSON.
	_, err = a.Fetch(context.Background(), agents.Query{Subject: "Aspirin"})
	if !errors.Is(err, agents.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}

	if len(wc.Requests) != 1 {
		t.Fatalf("expected 1 request before the decode failure, got %d", len(wc.Requests))
	}
	req := wc.Requests[0]
	if !strings.HasPrefix(req.URL, "http://market.test/market-size?") {
		t.Errorf("unexpected URL %q", req.URL)
	}
	if got := req.Headers.Get("Authorization"); got != "Bearer k" {
		t.Errorf("expected bearer auth, got %q", got)
	}
}

func TestLiveRegistry_TransportErrorSurfaces(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{FailURLs: map[string]bool{}}
	reg, err := agents.NewRegistry(liveConfig(), wc, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	defer reg.Close()

	a, _ := reg.Get(agents.UnitPatents)
	wc.FailURLs["http://patents.test/search?q=Aspirin&rows=100"] = true

	if _, err := a.Fetch(context.Background(), agents.Query{Subject: "Aspirin"}); err == nil {
		t.Fatal("expected transport error")
	} else if errors.Is(err, agents.ErrMalformedPayload) {
		t.Fatalf("expected a transport error, got %v", err)
	}
}
