// Package aggregator fans one discovery request out to every worker unit,
// waits for all of them, and records the combined findings.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raysh454/pharmaflow/internal/agents"
	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/model"
	"github.com/raysh454/pharmaflow/internal/report"
)

// Recorder receives the terminal outcome of a run. *ledger.Ledger satisfies it.
type Recorder interface {
	Complete(id string, findings *model.FindingsBundle) error
	Fail(id string, detail string) error
}

// Aggregator runs the fan-out/fan-in for one request at a time per call;
// concurrent Run calls for different requests share nothing.
type Aggregator struct {
	agents   []agents.Agent
	producer report.Producer
	recorder Recorder
	logger   logging.Logger
}

// New builds an Aggregator. producer may be nil, in which case no artifact
// is ever produced.
func New(units []agents.Agent, producer report.Producer, recorder Recorder, logger logging.Logger) (*Aggregator, error) {
	if len(units) == 0 {
		return nil, errors.New("aggregator needs at least one agent")
	}
	if recorder == nil {
		return nil, errors.New("aggregator needs a recorder")
	}
	seen := make(map[string]struct{}, len(units))
	for _, u := range units {
		if _, dup := seen[u.Name()]; dup {
			return nil, fmt.Errorf("duplicate agent %q", u.Name())
		}
		seen[u.Name()] = struct{}{}
	}
	return &Aggregator{
		agents:   units,
		producer: producer,
		recorder: recorder,
		logger:   logger.With(logging.Field{Key: "component", Value: "aggregator"}),
	}, nil
}

// Run collects findings for id and moves the record to completed, or to
// error on an AggregationFault. It returns the fault, if any, for logging;
// the ledger already reflects it.
func (a *Aggregator) Run(ctx context.Context, id string, req model.DiscoveryRequest) (err error) {
	log := a.logger.With(logging.Field{Key: "request_id", Value: id})

	defer func() {
		if r := recover(); r != nil {
			err = &model.AggregationFault{Detail: fmt.Sprintf("panic: %v", r)}
			log.Error("aggregation panicked",
				logging.Field{Key: "panic", Value: r},
				logging.Field{Key: "stack", Value: string(debug.Stack())})
		}
		if err != nil {
			if ferr := a.recorder.Fail(id, err.Error()); ferr != nil {
				log.Error("failed to record aggregation fault", logging.Field{Key: "error", Value: ferr})
			}
		}
	}()

	start := time.Now()
	bundle := a.Collect(ctx, id, req)

	if bundle.Succeeded() > 0 && a.producer != nil {
		url, perr := a.produce(ctx, bundle)
		if perr != nil {
			log.Warn("report producer failed", logging.Field{Key: "error", Value: perr})
		} else {
			bundle.ArtifactURL = url
		}
	}

	if cerr := a.recorder.Complete(id, bundle); cerr != nil {
		return &model.AggregationFault{Detail: "record findings", Err: cerr}
	}
	log.Info("request completed",
		logging.Field{Key: "succeeded", Value: bundle.Succeeded()},
		logging.Field{Key: "total", Value: len(bundle.Results)},
		logging.Field{Key: "elapsed_ms", Value: time.Since(start).Milliseconds()})
	return nil
}

// Collect runs every unit concurrently and waits for all of them. A failing
// unit never cancels its siblings, and there is no overall deadline: each
// unit enforces its own.
func (a *Aggregator) Collect(ctx context.Context, id string, req model.DiscoveryRequest) *model.FindingsBundle {
	q := agents.Query{Subject: req.Molecule, Indication: req.Indication, Filters: req.Filters}
	results := make([]model.WorkerResult, len(a.agents))

	var g errgroup.Group
	for i, unit := range a.agents {
		g.Go(func() error {
			results[i] = a.runUnit(ctx, unit, q)
			return nil
		})
	}
	_ = g.Wait()

	bundle := &model.FindingsBundle{
		RequestID: id,
		Subject:   req.Molecule,
		Results:   make(map[string]model.WorkerResult, len(results)),
	}
	for _, r := range results {
		bundle.Results[r.Unit] = r
	}
	bundle.Summary = fmt.Sprintf("Analysis complete for %s: %d/%d agents succeeded",
		req.Molecule, bundle.Succeeded(), len(results))
	return bundle
}

func (a *Aggregator) runUnit(ctx context.Context, unit agents.Agent, q agents.Query) (res model.WorkerResult) {
	name := unit.Name()
	start := time.Now()
	res.Unit = name

	defer func() {
		if r := recover(); r != nil {
			res = a.failed(name, fmt.Errorf("panic: %v", r))
		}
		res.DurationMS = time.Since(start).Milliseconds()
	}()

	payload, err := unit.Fetch(ctx, q)
	if err != nil {
		return a.failed(name, err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return a.failed(name, fmt.Errorf("encode payload: %w", err))
	}
	res.Status = model.UnitOK
	res.Data = data
	return res
}

func (a *Aggregator) failed(name string, err error) model.WorkerResult {
	wf := &model.WorkerFailure{Unit: name, Err: err}
	a.logger.Warn("agent failed", logging.Field{Key: "agent", Value: name}, logging.Field{Key: "error", Value: wf})
	return model.WorkerResult{Unit: name, Status: model.UnitFailed, Error: err.Error()}
}

func (a *Aggregator) produce(ctx context.Context, b *model.FindingsBundle) (url string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("producer panic: %v", r)
		}
	}()
	return a.producer.Produce(ctx, b)
}
