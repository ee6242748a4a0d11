// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raysh454/pharmaflow/internal/agents"
	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/model"
	"github.com/raysh454/pharmaflow/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns body "ok:<url>" with status 200.
// Set FailURLs[url] = true to force an error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, errors.New("dummy fetch fail for " + req.URL)
	}

	return &webclient.Response{
		Request:    req,
		Body:       []byte("ok:" + req.URL),
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// ─── Agents ────────────────────────────────────────────────────────────

// StubAgent implements agents.Agent. It waits Delay (or until Release is
// closed, when set), then returns Payload or Err.
type StubAgent struct {
	UnitName string
	Delay    time.Duration
	Release  chan struct{}
	Payload  any
	Err      error
	Panic    bool

	calls atomic.Int32
}

func (s *StubAgent) Name() string { return s.UnitName }

func (s *StubAgent) Fetch(ctx context.Context, q agents.Query) (any, error) {
	s.calls.Add(1)
	if s.Release != nil {
		select {
		case <-s.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Panic {
		panic("stub agent panic")
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Payload != nil {
		return s.Payload, nil
	}
	return map[string]any{"molecule": q.Subject, "unit": s.UnitName}, nil
}

// Calls returns how many times Fetch ran.
func (s *StubAgent) Calls() int { return int(s.calls.Load()) }

// ─── Report producer ───────────────────────────────────────────────────

// StubProducer implements report.Producer and records the bundles it saw.
type StubProducer struct {
	URL string
	Err error

	mu      sync.Mutex
	Bundles []*model.FindingsBundle
}

func (p *StubProducer) Produce(_ context.Context, b *model.FindingsBundle) (string, error) {
	p.mu.Lock()
	p.Bundles = append(p.Bundles, b)
	p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	if p.URL != "" {
		return p.URL, nil
	}
	return "http://reports.test/api/v1/reports/" + b.RequestID, nil
}

// Calls returns how many bundles were produced.
func (p *StubProducer) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Bundles)
}
