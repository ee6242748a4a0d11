// Package app is the request lifecycle driver. It accepts discovery
// requests, registers them in the ledger and schedules the aggregator
// without blocking the caller.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/pharmaflow/internal/agents"
	"github.com/raysh454/pharmaflow/internal/aggregator"
	"github.com/raysh454/pharmaflow/internal/ledger"
	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/model"
	"github.com/raysh454/pharmaflow/internal/report"
)

const maxIDAttempts = 5

var (
	ErrShuttingDown = errors.New("orchestrator is shutting down")
	ErrNoReports    = errors.New("reports are disabled")
)

// Receipt is returned to the caller as soon as a request is accepted.
type Receipt struct {
	RequestID     string      `json:"request_id" example:"req_5f0c8e0e9a7b4d1e8c3f2a1b0c9d8e7f"`
	Status        model.State `json:"status" example:"processing"`
	AgentsActive  int         `json:"agents_active" example:"5"`
	EstimatedTime string      `json:"estimated_time" example:"2-5 minutes"`
	Timestamp     time.Time   `json:"timestamp"`
}

// StatusView is a record without its findings.
type StatusView struct {
	RequestID   string      `json:"request_id"`
	Status      model.State `json:"status"`
	Molecule    string      `json:"molecule"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

func statusView(rec model.RequestRecord) StatusView {
	return StatusView{
		RequestID:   rec.ID,
		Status:      rec.State,
		Molecule:    rec.Request.Molecule,
		CreatedAt:   rec.CreatedAt,
		CompletedAt: rec.CompletedAt,
	}
}

type Orchestrator struct {
	cfg    *Config
	comps  *Components
	agg    *aggregator.Aggregator
	logger logging.Logger

	newID func() string

	mu      sync.Mutex
	closing bool
	runs    sync.WaitGroup
}

// NewOrchestrator ties together config, components and logger and starts
// the ledger's retention sweeper.
func NewOrchestrator(cfg *Config, comps *Components, logger logging.Logger) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if comps == nil || comps.Ledger == nil || comps.Registry == nil {
		return nil, errors.New("ledger and agent registry are required")
	}
	if cfg.MaxSubjectLength <= 0 {
		cfg.MaxSubjectLength = model.DefaultMaxSubjectLength
	}

	agg, err := aggregator.New(comps.Registry.Agents(), comps.Producer, comps.Ledger, logger)
	if err != nil {
		return nil, fmt.Errorf("new aggregator: %w", err)
	}

	comps.Ledger.Start()
	return &Orchestrator{
		cfg:    cfg,
		comps:  comps,
		agg:    agg,
		logger: logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		newID:  newRequestID,
	}, nil
}

// newRequestID returns "req_" followed by 32 hex characters.
func newRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Submit validates req, registers it and schedules the aggregation. It
// returns as soon as the record is in the processing state; the run is
// detached from ctx's cancellation.
func (o *Orchestrator) Submit(ctx context.Context, req model.DiscoveryRequest) (*Receipt, error) {
	if err := req.Validate(o.cfg.MaxSubjectLength); err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.closing {
		o.mu.Unlock()
		return nil, ErrShuttingDown
	}
	o.runs.Add(1)
	o.mu.Unlock()

	rec, err := o.register(req)
	if err != nil {
		o.runs.Done()
		return nil, err
	}
	if err := o.comps.Ledger.MarkProcessing(rec.ID); err != nil {
		o.runs.Done()
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer o.runs.Done()
		if err := o.agg.Run(runCtx, rec.ID, rec.Request); err != nil {
			o.logger.Error("request failed",
				logging.Field{Key: "request_id", Value: rec.ID},
				logging.Field{Key: "error", Value: err})
		}
	}()

	o.logger.Info("request accepted",
		logging.Field{Key: "request_id", Value: rec.ID},
		logging.Field{Key: "molecule", Value: rec.Request.Molecule})

	return &Receipt{
		RequestID:     rec.ID,
		Status:        model.StateProcessing,
		AgentsActive:  o.agentsActive(),
		EstimatedTime: o.cfg.EstimatedTime,
		Timestamp:     time.Now().UTC(),
	}, nil
}

func (o *Orchestrator) register(req model.DiscoveryRequest) (model.RequestRecord, error) {
	var lastErr error
	for range maxIDAttempts {
		rec, err := o.comps.Ledger.Create(o.newID(), req)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ledger.ErrDuplicateID) {
			return model.RequestRecord{}, err
		}
		lastErr = err
	}
	return model.RequestRecord{}, fmt.Errorf("allocate request id: %w", lastErr)
}

func (o *Orchestrator) agentsActive() int {
	n := len(o.comps.Registry.Names())
	if o.comps.Producer != nil {
		n++
	}
	return n
}

// QueryStatus returns the lifecycle view of id without findings.
func (o *Orchestrator) QueryStatus(id string) (*StatusView, error) {
	rec, err := o.comps.Ledger.Get(id)
	if err != nil {
		return nil, err
	}
	v := statusView(rec)
	return &v, nil
}

// QueryResults returns the full record for id.
func (o *Orchestrator) QueryResults(id string) (*model.RequestRecord, error) {
	rec, err := o.comps.Ledger.Get(id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRequests returns every known request, newest first.
func (o *Orchestrator) ListRequests() []StatusView {
	recs := o.comps.Ledger.List()
	out := make([]StatusView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, statusView(rec))
	}
	return out
}

// Watch subscribes to lifecycle events of id. See ledger.Ledger.Watch.
func (o *Orchestrator) Watch(id string) (model.RequestRecord, <-chan model.Event, func(), error) {
	return o.comps.Ledger.Watch(id)
}

// Agents returns the static catalog.
func (o *Orchestrator) Agents() []agents.Info {
	return agents.Catalog(o.comps.Registry.Names(), o.comps.Producer != nil)
}

// Report returns the stored artifact for a request.
func (o *Orchestrator) Report(ctx context.Context, id string) (*report.Artifact, error) {
	if o.comps.Store == nil {
		return nil, ErrNoReports
	}
	return o.comps.Store.Get(ctx, id)
}

// Close stops accepting requests and waits for in-flight runs until ctx is
// done, then releases the components.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	if o.closing {
		o.mu.Unlock()
		return nil
	}
	o.closing = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.runs.Wait()
		close(done)
	}()

	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = fmt.Errorf("waiting for in-flight requests: %w", ctx.Err())
		o.logger.Warn("closing with requests still in flight")
	}
	return errors.Join(waitErr, o.comps.Close())
}
