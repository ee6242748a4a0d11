// Package ledger is the process-wide store of request lifecycle state.
//
// The ledger owns every RequestRecord. The driver creates records and the
// aggregator completes them; nothing else writes. Reads return copies so
// callers can never mutate stored state.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/model"
)

var (
	ErrDuplicateID       = errors.New("request id already registered")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrClosed            = errors.New("ledger closed")
)

// Config controls optional eviction of terminal records.
type Config struct {
	// Retention evicts terminal records older than this. Zero keeps
	// records for the lifetime of the process.
	Retention time.Duration `mapstructure:"retention" envconfig:"RETENTION"`

	// SweepInterval is how often the sweeper runs when Retention > 0.
	SweepInterval time.Duration `mapstructure:"sweep_interval" envconfig:"SWEEP_INTERVAL"`

	// WatchBuffer is the per-watcher event buffer size.
	WatchBuffer int `mapstructure:"watch_buffer" envconfig:"WATCH_BUFFER"`
}

// Ledger is a concurrency-safe map of request id to RequestRecord.
type Ledger struct {
	cfg    Config
	logger logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	records  map[string]*model.RequestRecord
	watchers map[string][]chan model.Event
	closed   bool

	startOnce sync.Once
	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New constructs an empty ledger. Call Start to run the retention sweeper
// and Close to release watchers.
func New(cfg Config, logger logging.Logger) *Ledger {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.WatchBuffer <= 0 {
		cfg.WatchBuffer = 8
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Ledger{
		cfg:      cfg,
		logger:   logger.With(logging.Field{Key: "component", Value: "ledger"}),
		now:      func() time.Time { return time.Now().UTC() },
		records:  make(map[string]*model.RequestRecord),
		watchers: make(map[string][]chan model.Event),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the retention sweeper if retention is configured.
func (l *Ledger) Start() {
	l.startOnce.Do(func() {
		if l.cfg.Retention <= 0 {
			close(l.done)
			return
		}
		go l.sweepLoop()
	})
}

// Close stops the sweeper and closes every open watcher channel. Further
// writes fail with ErrClosed; reads keep working.
func (l *Ledger) Close() error {
	l.closeOnce.Do(func() {
		close(l.stop)
		l.startOnce.Do(func() { close(l.done) })
		<-l.done

		l.mu.Lock()
		l.closed = true
		for id, chans := range l.watchers {
			for _, ch := range chans {
				close(ch)
			}
			delete(l.watchers, id)
		}
		l.mu.Unlock()
	})
	return nil
}

// Create registers a new record in the pending state.
func (l *Ledger) Create(id string, req model.DiscoveryRequest) (model.RequestRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return model.RequestRecord{}, ErrClosed
	}
	if _, exists := l.records[id]; exists {
		return model.RequestRecord{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	rec := &model.RequestRecord{
		ID:        id,
		Request:   req.Clone(),
		State:     model.StatePending,
		CreatedAt: l.now(),
	}
	l.records[id] = rec
	l.logger.Debug("record created", logging.Field{Key: "request_id", Value: id})
	return rec.Copy(), nil
}

// MarkProcessing moves a pending record to processing.
func (l *Ledger) MarkProcessing(id string) error {
	return l.transition(id, model.StateProcessing, func(*model.RequestRecord) {})
}

// Complete stores the findings and moves the record to completed.
func (l *Ledger) Complete(id string, findings *model.FindingsBundle) error {
	if findings == nil {
		return errors.New("ledger: nil findings")
	}
	return l.transition(id, model.StateCompleted, func(rec *model.RequestRecord) {
		at := l.now()
		rec.CompletedAt = &at
		rec.Findings = findings
	})
}

// Fail moves the record to error with detail.
func (l *Ledger) Fail(id string, detail string) error {
	return l.transition(id, model.StateError, func(rec *model.RequestRecord) {
		at := l.now()
		rec.CompletedAt = &at
		rec.Error = detail
	})
}

func (l *Ledger) transition(id string, next model.State, apply func(*model.RequestRecord)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	rec, ok := l.records[id]
	if !ok {
		return &model.NotFoundError{ID: id}
	}
	if !rec.State.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, rec.State, next)
	}

	apply(rec)
	rec.State = next

	ev := model.Event{RequestID: id, Status: next, Error: rec.Error, At: l.now()}
	l.broadcastLocked(id, ev, next.Terminal())

	l.logger.Debug("record transitioned",
		logging.Field{Key: "request_id", Value: id},
		logging.Field{Key: "status", Value: string(next)})
	return nil
}

// broadcastLocked delivers ev to every watcher of id without blocking.
// Terminal events also close and forget the watchers.
func (l *Ledger) broadcastLocked(id string, ev model.Event, terminal bool) {
	chans := l.watchers[id]
	for _, ch := range chans {
		select {
		case ch <- ev:
		default:
		}
		if terminal {
			close(ch)
		}
	}
	if terminal {
		delete(l.watchers, id)
	}
}

// Get returns a copy of the record or a NotFoundError.
func (l *Ledger) Get(id string) (model.RequestRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[id]
	if !ok {
		return model.RequestRecord{}, &model.NotFoundError{ID: id}
	}
	return rec.Copy(), nil
}

// List returns copies of all records, newest first.
func (l *Ledger) List() []model.RequestRecord {
	l.mu.RLock()
	out := make([]model.RequestRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec.Copy())
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len reports how many records are held.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Watch subscribes to transitions of id. It returns the current snapshot and
// a channel that is closed once the record reaches a terminal state. If the
// record is already terminal the channel is returned closed. The cancel func
// unsubscribes early and is safe to call more than once.
func (l *Ledger) Watch(id string) (model.RequestRecord, <-chan model.Event, func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return model.RequestRecord{}, nil, func() {}, &model.NotFoundError{ID: id}
	}

	ch := make(chan model.Event, l.cfg.WatchBuffer)
	if rec.State.Terminal() || l.closed {
		close(ch)
		return rec.Copy(), ch, func() {}, nil
	}
	l.watchers[id] = append(l.watchers[id], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			chans := l.watchers[id]
			for i, c := range chans {
				if c == ch {
					l.watchers[id] = append(chans[:i], chans[i+1:]...)
					close(ch)
					break
				}
			}
			if len(l.watchers[id]) == 0 {
				delete(l.watchers, id)
			}
		})
	}
	return rec.Copy(), ch, cancel, nil
}

func (l *Ledger) sweepLoop() {
	defer close(l.done)
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				l.logger.Info("evicted expired records", logging.Field{Key: "count", Value: n})
			}
		}
	}
}

// Sweep evicts terminal records whose completion is older than the retention
// window and returns how many were removed. Non-terminal records are never
// evicted.
func (l *Ledger) Sweep() int {
	if l.cfg.Retention <= 0 {
		return 0
	}
	cutoff := l.now().Add(-l.cfg.Retention)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for id, rec := range l.records {
		if rec.State.Terminal() && rec.CompletedAt != nil && rec.CompletedAt.Before(cutoff) {
			delete(l.records, id)
			n++
		}
	}
	return n
}
