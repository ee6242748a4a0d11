package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raysh454/pharmaflow/internal/model"
)

const fastConfig = `
log:
  level: error
agents:
  mode: mock
  mock:
    market_latency: 1ms
    trials_latency: 1ms
    patents_latency: 1ms
    literature_latency: 1ms
    fail_units: [patent_landscape]
report:
  enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pharmaflow.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// ─── agents ────────────────────────────────────────────────────────────

func TestAgentsCommand(t *testing.T) {
	out, err := execute(t, "agents", "--config", writeConfig(t, fastConfig))
	if err != nil {
		t.Fatalf("agents: %v", err)
	}
	for _, want := range []string{"Master Agent", "Clinical Trials Agent", "literature_evidence", "mode: mock"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Report Agent") {
		t.Error("report agent listed although reports are disabled")
	}
}

// ─── discover ──────────────────────────────────────────────────────────

func TestDiscoverCommand_PrintsCompletedRecord(t *testing.T) {
	out, err := execute(t, "discover", "Aspirin",
		"--config", writeConfig(t, fastConfig),
		"--indication", "Stroke",
		"--filter", "phase=3")
	if err != nil {
		t.Fatalf("discover: %v\n%s", err, out)
	}

	var rec model.RequestRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if rec.State != model.StateCompleted {
		t.Fatalf("expected completed, got %s", rec.State)
	}
	if rec.Request.Indication != "Stroke" || rec.Request.Filters["phase"] != "3" {
		t.Errorf("request not carried through: %+v", rec.Request)
	}
	if rec.Findings.Succeeded() != 3 || rec.Findings.Results["patent_landscape"].Status != model.UnitFailed {
		t.Errorf("unexpected findings %+v", rec.Findings.Results)
	}
}

func TestDiscoverCommand_ValidationError(t *testing.T) {
	_, err := execute(t, "discover", "   ", "--config", writeConfig(t, fastConfig))
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseFilters(t *testing.T) {
	t.Parallel()
	got, err := parseFilters([]string{"phase=3", " region =EU", "q=a=b"})
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}
	want := map[string]string{"phase": "3", "region": "EU", "q": "a=b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filters mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseFilters([]string{"novalue"}); err == nil {
		t.Error("expected error for missing '='")
	}
	if got, _ := parseFilters(nil); got != nil {
		t.Errorf("expected nil for no filters, got %v", got)
	}
}
