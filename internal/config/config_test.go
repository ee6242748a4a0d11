package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/raysh454/pharmaflow/internal/agents"
	"github.com/raysh454/pharmaflow/internal/report"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "pharmaflow.yaml", `
log:
  level: debug
server:
  listen_addr: ":9000"
max_subject_length: 64
agents:
  mode: live
  timeout: 5s
  trials:
    base_url: https://clinicaltrials.gov/api/v2
  mock:
    fail_units: [patent_landscape]
report:
  format: pdf
`)
	cfg, err := Load(Options{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Server.ListenAddr != ":9000" || cfg.MaxSubjectLength != 64 {
		t.Errorf("top-level overlay not applied: %+v", cfg)
	}
	if cfg.Agents.Mode != agents.ModeLive || cfg.Agents.Timeout != 5*time.Second {
		t.Errorf("agents overlay not applied: %+v", cfg.Agents)
	}
	if cfg.Agents.Trials.BaseURL != "https://clinicaltrials.gov/api/v2" {
		t.Errorf("unexpected trials base url %q", cfg.Agents.Trials.BaseURL)
	}
	if diff := cmp.Diff([]string{agents.UnitPatents}, cfg.Agents.Mock.FailUnits); diff != "" {
		t.Errorf("fail units mismatch (-want +got):\n%s", diff)
	}
	if cfg.Report.Format != report.FormatPDF {
		t.Errorf("unexpected report format %q", cfg.Report.Format)
	}

	// Untouched keys keep their defaults.
	def := Default()
	if cfg.EstimatedTime != def.EstimatedTime || cfg.Agents.Market.BaseURL != def.Agents.Market.BaseURL {
		t.Error("defaults were clobbered by a partial file")
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	path := writeFile(t, "pharmaflow.yaml", "agents:\n  mode: live\n")
	t.Setenv("PHARMAFLOW_AGENTS_MODE", "mock")
	t.Setenv("PHARMAFLOW_AGENTS_MOCK_MARKET_LATENCY", "25ms")
	t.Setenv("PHARMAFLOW_AGENTS_MOCK_FAIL_UNITS", "market_data,clinical_trials")
	t.Setenv("PHARMAFLOW_LEDGER_RETENTION", "1h")
	t.Setenv("PHARMAFLOW_SERVER_LISTEN_ADDR", ":7000")

	cfg, err := Load(Options{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Agents.Mode != agents.ModeMock {
		t.Errorf("expected env to override file, got %q", cfg.Agents.Mode)
	}
	if cfg.Agents.Mock.MarketLatency != 25*time.Millisecond {
		t.Errorf("unexpected market latency %v", cfg.Agents.Mock.MarketLatency)
	}
	if diff := cmp.Diff([]string{"market_data", "clinical_trials"}, cfg.Agents.Mock.FailUnits); diff != "" {
		t.Errorf("fail units mismatch (-want +got):\n%s", diff)
	}
	if cfg.Ledger.Retention != time.Hour || cfg.Server.ListenAddr != ":7000" {
		t.Errorf("unexpected ledger/server config %+v %+v", cfg.Ledger, cfg.Server)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	// Registers cleanup for the variables the env file exports.
	t.Setenv("PHARMAFLOW_REPORT_PUBLIC_BASE_URL", "")
	t.Setenv("PHARMAFLOW_ESTIMATED_TIME", "")

	path := writeFile(t, "test.env", "PHARMAFLOW_REPORT_PUBLIC_BASE_URL=https://pharma.example\nPHARMAFLOW_ESTIMATED_TIME=soon\n")
	cfg, err := Load(Options{EnvFile: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Report.PublicBaseURL != "https://pharma.example" || cfg.EstimatedTime != "soon" {
		t.Errorf("env file not applied: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Error("expected error for missing config file")
	}
	if _, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")}); err == nil {
		t.Error("expected error for missing env file")
	}

	t.Setenv("PHARMAFLOW_MAX_SUBJECT_LENGTH", "lots")
	if _, err := Load(Options{}); err == nil {
		t.Error("expected error for malformed env value")
	}
}
