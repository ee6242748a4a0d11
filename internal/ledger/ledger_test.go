package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/model"
)

func newTestLedger(t *testing.T, cfg Config) *Ledger {
	t.Helper()
	l := New(cfg, logging.Nop())
	l.Start()
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func bundle(id string) *model.FindingsBundle {
	return &model.FindingsBundle{RequestID: id, Subject: "aspirin", Results: map[string]model.WorkerResult{}}
}

// ─── Create / Get ──────────────────────────────────────────────────────

func TestCreate_PendingAndReadable(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})

	rec, err := l.Create("req_1", model.DiscoveryRequest{Molecule: "aspirin"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.State != model.StatePending {
		t.Errorf("expected pending, got %s", rec.State)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected creation timestamp")
	}

	got, err := l.Get("req_1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Request.Molecule != "aspirin" || got.Findings != nil || got.CompletedAt != nil {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestCreate_DuplicateRejected(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})

	if _, err := l.Create("req_1", model.DiscoveryRequest{Molecule: "a"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := l.Create("req_1", model.DiscoveryRequest{Molecule: "b"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	got, _ := l.Get("req_1")
	if got.Request.Molecule != "a" {
		t.Errorf("duplicate create overwrote record: %+v", got)
	}
}

func TestGet_UnknownIsNotFound(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})

	_, err := l.Get("nope")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})

	got, _ := l.Get("req_1")
	got.State = model.StateError

	again, _ := l.Get("req_1")
	if again.State != model.StatePending {
		t.Errorf("mutation of returned copy leaked into ledger")
	}
}

// ─── Transitions ───────────────────────────────────────────────────────

func TestLifecycle_ProcessingThenCompleted(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})

	if err := l.MarkProcessing("req_1"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := l.Complete("req_1", bundle("req_1")); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, _ := l.Get("req_1")
	if got.State != model.StateCompleted {
		t.Errorf("expected completed, got %s", got.State)
	}
	if got.Findings == nil || got.CompletedAt == nil {
		t.Errorf("completed record missing findings or timestamp: %+v", got)
	}
	if got.Error != "" {
		t.Errorf("completed record carries error %q", got.Error)
	}
}

func TestLifecycle_Fail(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})
	_ = l.MarkProcessing("req_1")

	if err := l.Fail("req_1", "boom"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	got, _ := l.Get("req_1")
	if got.State != model.StateError || got.Error != "boom" || got.Findings != nil {
		t.Errorf("unexpected error record %+v", got)
	}
}

func TestLifecycle_NoReverseTransitions(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})

	if err := l.Complete("req_1", bundle("req_1")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending -> completed should be rejected, got %v", err)
	}

	_ = l.MarkProcessing("req_1")
	_ = l.Complete("req_1", bundle("req_1"))

	if err := l.MarkProcessing("req_1"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("completed -> processing should be rejected, got %v", err)
	}
	if err := l.Fail("req_1", "late"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("completed -> error should be rejected, got %v", err)
	}
	got, _ := l.Get("req_1")
	if got.State != model.StateCompleted || got.Error != "" {
		t.Errorf("terminal record changed: %+v", got)
	}
}

func TestTransition_UnknownIsNotFound(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})

	if err := l.MarkProcessing("ghost"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestComplete_NilFindingsRejected(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})
	_ = l.MarkProcessing("req_1")

	if err := l.Complete("req_1", nil); err == nil {
		t.Fatal("expected error for nil findings")
	}
}

// ─── List ──────────────────────────────────────────────────────────────

func TestList_NewestFirst(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	l.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }

	_, _ = l.Create("req_a", model.DiscoveryRequest{Molecule: "a"})
	_, _ = l.Create("req_b", model.DiscoveryRequest{Molecule: "b"})

	list := l.List()
	if len(list) != 2 || list[0].ID != "req_b" || list[1].ID != "req_a" {
		t.Errorf("unexpected order: %+v", list)
	}
}

// ─── Watch ─────────────────────────────────────────────────────────────

func TestWatch_ReceivesTransitionsAndCloses(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})

	snap, events, cancel, err := l.Watch("req_1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer cancel()
	if snap.State != model.StatePending {
		t.Errorf("expected pending snapshot, got %s", snap.State)
	}

	_ = l.MarkProcessing("req_1")
	_ = l.Complete("req_1", bundle("req_1"))

	var got []model.State
	for ev := range events {
		got = append(got, ev.Status)
	}
	if len(got) != 2 || got[0] != model.StateProcessing || got[1] != model.StateCompleted {
		t.Errorf("unexpected events %v", got)
	}
}

func TestWatch_TerminalReturnsClosedChannel(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})
	_ = l.MarkProcessing("req_1")
	_ = l.Fail("req_1", "boom")

	snap, events, _, err := l.Watch("req_1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if snap.State != model.StateError {
		t.Errorf("expected error snapshot, got %s", snap.State)
	}
	if _, open := <-events; open {
		t.Error("expected closed channel for terminal record")
	}
}

func TestWatch_CancelIsIdempotent(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})

	_, events, cancel, _ := l.Watch("req_1")
	cancel()
	cancel()
	if _, open := <-events; open {
		t.Error("expected closed channel after cancel")
	}
	// Transitions after cancel must not panic on a closed channel.
	if err := l.MarkProcessing("req_1"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
}

func TestWatch_UnknownIsNotFound(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	if _, _, _, err := l.Watch("ghost"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ─── Retention ─────────────────────────────────────────────────────────

func TestSweep_EvictsOnlyExpiredTerminal(t *testing.T) {
	t.Parallel()
	l := New(Config{Retention: time.Minute}, logging.Nop())
	defer l.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, _ = l.Create("old_done", model.DiscoveryRequest{Molecule: "a"})
	_ = l.MarkProcessing("old_done")
	_ = l.Complete("old_done", bundle("old_done"))
	_, _ = l.Create("old_running", model.DiscoveryRequest{Molecule: "b"})
	_ = l.MarkProcessing("old_running")

	now = now.Add(2 * time.Minute)
	_, _ = l.Create("new_done", model.DiscoveryRequest{Molecule: "c"})
	_ = l.MarkProcessing("new_done")
	_ = l.Complete("new_done", bundle("new_done"))

	if n := l.Sweep(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, err := l.Get("old_done"); !errors.Is(err, model.ErrNotFound) {
		t.Error("expired terminal record should be evicted")
	}
	if _, err := l.Get("old_running"); err != nil {
		t.Error("in-flight record must never be evicted")
	}
	if _, err := l.Get("new_done"); err != nil {
		t.Error("fresh terminal record should be kept")
	}
}

func TestSweep_ZeroRetentionKeepsEverything(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})
	_ = l.MarkProcessing("req_1")
	_ = l.Complete("req_1", bundle("req_1"))

	if n := l.Sweep(); n != 0 {
		t.Errorf("expected no evictions, got %d", n)
	}
}

// ─── Lifecycle / concurrency ───────────────────────────────────────────

func TestClose_RejectsWritesKeepsReads(t *testing.T) {
	t.Parallel()
	l := New(Config{Retention: time.Hour, SweepInterval: time.Millisecond}, logging.Nop())
	l.Start()
	_, _ = l.Create("req_1", model.DiscoveryRequest{Molecule: "a"})

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_ = l.Close()

	if _, err := l.Create("req_2", model.DiscoveryRequest{Molecule: "b"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := l.Get("req_1"); err != nil {
		t.Errorf("reads should survive close: %v", err)
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, Config{})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("req_%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := l.Create(id, model.DiscoveryRequest{Molecule: "m"}); err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			_ = l.MarkProcessing(id)
			_ = l.Complete(id, bundle(id))
		}()
		go func() {
			defer wg.Done()
			_, _ = l.Get(id)
			_ = l.List()
		}()
	}
	wg.Wait()

	if l.Len() != n {
		t.Fatalf("expected %d records, got %d", n, l.Len())
	}
	for _, rec := range l.List() {
		if rec.State != model.StateCompleted {
			t.Errorf("record %s not completed: %s", rec.ID, rec.State)
		}
	}
}
