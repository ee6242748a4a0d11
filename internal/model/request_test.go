package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestValidate_TrimsAndAccepts(t *testing.T) {
	t.Parallel()
	r := DiscoveryRequest{Molecule: "  aspirin ", Indication: " pain "}
	if err := r.Validate(0); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if r.Molecule != "aspirin" || r.Indication != "pain" {
		t.Errorf("expected trimmed fields, got %q / %q", r.Molecule, r.Indication)
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		req   DiscoveryRequest
		field string
	}{
		{"empty molecule", DiscoveryRequest{Molecule: ""}, "molecule_name"},
		{"whitespace molecule", DiscoveryRequest{Molecule: "   "}, "molecule_name"},
		{"long molecule", DiscoveryRequest{Molecule: strings.Repeat("a", 11)}, "molecule_name"},
		{"long indication", DiscoveryRequest{Molecule: "x", Indication: strings.Repeat("b", 11)}, "indication"},
		{"long multibyte molecule", DiscoveryRequest{Molecule: strings.Repeat("é", 11)}, "molecule_name"},
		{"invalid utf8 molecule", DiscoveryRequest{Molecule: "ab\xff"}, "molecule_name"},
		{"invalid utf8 indication", DiscoveryRequest{Molecule: "x", Indication: "\xfe"}, "indication"},
		{"blank filter key", DiscoveryRequest{Molecule: "x", Filters: map[string]string{" ": "v"}}, "filters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate(10)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Errorf("expected field %q, got %+v", tc.field, ve)
			}
		})
	}
}

func TestValidate_CountsCharactersNotBytes(t *testing.T) {
	t.Parallel()
	// Ten characters, twenty bytes.
	req := DiscoveryRequest{Molecule: strings.Repeat("é", 10), Indication: strings.Repeat("ü", 10)}
	if err := req.Validate(10); err != nil {
		t.Fatalf("expected multibyte names at the bound to pass, got %v", err)
	}

	req = DiscoveryRequest{Molecule: strings.Repeat("é", 200)}
	if err := req.Validate(DefaultMaxSubjectLength); err != nil {
		t.Errorf("expected 200 characters under the default bound to pass, got %v", err)
	}
}

func TestClone_DoesNotAliasFilters(t *testing.T) {
	t.Parallel()
	orig := DiscoveryRequest{Molecule: "x", Filters: map[string]string{"phase": "3"}}
	cp := orig.Clone()
	orig.Filters["phase"] = "2"
	if cp.Filters["phase"] != "3" {
		t.Errorf("clone shares filter map with original")
	}
}

// ─── State machine ─────────────────────────────────────────────────────

func TestState_Transitions(t *testing.T) {
	t.Parallel()
	allowed := map[[2]State]bool{
		{StatePending, StateProcessing}:   true,
		{StatePending, StateError}:        true,
		{StateProcessing, StateCompleted}: true,
		{StateProcessing, StateError}:     true,
	}
	all := []State{StatePending, StateProcessing, StateCompleted, StateError}
	for _, from := range all {
		for _, to := range all {
			got := from.CanTransition(to)
			if got != allowed[[2]State{from, to}] {
				t.Errorf("%s -> %s: got %v", from, to, got)
			}
		}
	}
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()
	if StatePending.Terminal() || StateProcessing.Terminal() {
		t.Error("non-terminal state reported terminal")
	}
	if !StateCompleted.Terminal() || !StateError.Terminal() {
		t.Error("terminal state reported non-terminal")
	}
}

// ─── Errors ────────────────────────────────────────────────────────────

func TestNotFoundError_Is(t *testing.T) {
	t.Parallel()
	err := error(&NotFoundError{ID: "req_x"})
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
}

func TestWorkerFailure_Unwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("timeout")
	err := error(&WorkerFailure{Unit: "literature_evidence", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("WorkerFailure should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "literature_evidence") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRecordCopy_DoesNotAliasFindings(t *testing.T) {
	t.Parallel()
	rec := RequestRecord{
		ID:    "req_1",
		State: StateCompleted,
		Findings: &FindingsBundle{
			RequestID: "req_1",
			Summary:   "orig",
			Results: map[string]WorkerResult{
				"market_data": {Unit: "market_data", Status: UnitOK, Data: json.RawMessage(`{"a":1}`)},
			},
		},
	}

	cp := rec.Copy()
	cp.Findings.Summary = "changed"
	cp.Findings.Results["market_data"].Data[2] = 'b'
	delete(cp.Findings.Results, "market_data")

	if rec.Findings.Summary != "orig" {
		t.Errorf("summary leaked through copy: %q", rec.Findings.Summary)
	}
	got, ok := rec.Findings.Results["market_data"]
	if !ok {
		t.Fatal("result deleted through copy")
	}
	if string(got.Data) != `{"a":1}` {
		t.Errorf("payload bytes leaked through copy: %s", got.Data)
	}
}

func TestRecordCopy_NilFindings(t *testing.T) {
	t.Parallel()
	rec := RequestRecord{ID: "req_1", State: StateProcessing}
	if cp := rec.Copy(); cp.Findings != nil {
		t.Errorf("expected nil findings, got %+v", cp.Findings)
	}
}

func TestFindingsBundle_Counts(t *testing.T) {
	t.Parallel()
	b := &FindingsBundle{Results: map[string]WorkerResult{
		"a": {Unit: "a", Status: UnitOK},
		"b": {Unit: "b", Status: UnitFailed, Error: "boom"},
	}}
	if b.Succeeded() != 1 {
		t.Errorf("expected 1 success, got %d", b.Succeeded())
	}
	if f := b.Failed(); len(f) != 1 || f[0] != "b" {
		t.Errorf("unexpected failed list %v", f)
	}
}
