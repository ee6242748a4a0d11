package agents

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// ErrMockFailure is returned by mock units configured to fail.
var ErrMockFailure = errors.New("mock unit configured to fail")

// LoadFixtures parses the embedded mock payloads keyed by unit name.
func LoadFixtures() (map[string]map[string]any, error) {
	out := map[string]map[string]any{}
	if err := yaml.Unmarshal(fixturesYAML, &out); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return out, nil
}

// MockAgent waits a fixed latency and returns a fixture payload.
type MockAgent struct {
	name    string
	latency time.Duration
	payload map[string]any
	fail    bool
}

// NewMockAgent builds a mock unit. payload is copied per call and never mutated.
func NewMockAgent(name string, latency time.Duration, payload map[string]any, fail bool) *MockAgent {
	return &MockAgent{name: name, latency: latency, payload: payload, fail: fail}
}

func (m *MockAgent) Name() string { return m.name }

func (m *MockAgent) Fetch(ctx context.Context, q Query) (any, error) {
	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.fail {
		return nil, ErrMockFailure
	}

	out := make(map[string]any, len(m.payload)+1)
	for k, v := range m.payload {
		out[k] = v
	}
	out["molecule"] = q.Subject
	return out, nil
}
