package server

import (
	"time"

	"github.com/raysh454/pharmaflow/internal/agents"
	"github.com/raysh454/pharmaflow/internal/model"
)

// DiscoverRequest is the payload accepted by POST /api/v1/discover.
type DiscoverRequest struct {
	MoleculeName string            `json:"molecule_name" example:"Aspirin"`
	Indication   string            `json:"indication,omitempty" example:"Cardiovascular disease"`
	Filters      map[string]string `json:"filters,omitempty"`
}

// BannerResponse is served at the root path.
type BannerResponse struct {
	Message string `json:"message" example:"Pharma Agentic AI - Multi-Agent Drug Discovery System"`
	Status  string `json:"status" example:"operational"`
	Version string `json:"version" example:"1.0.0"`
	Docs    string `json:"docs" example:"/docs"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service" example:"Pharma Agentic AI"`
}

// ResultsResponse is the full view of one request.
type ResultsResponse struct {
	RequestID             string                `json:"request_id" example:"req_5f0c8e0e9a7b4d1e8c3f2a1b0c9d8e7f"`
	Status                model.State           `json:"status" example:"completed"`
	Molecule              string                `json:"molecule" example:"Aspirin"`
	Findings              *model.FindingsBundle `json:"findings"`
	PDFURL                string                `json:"pdf_url,omitempty" example:"http://localhost:8000/api/v1/reports/req_5f0c8e0e9a7b4d1e8c3f2a1b0c9d8e7f"`
	ProcessingTimeSeconds *float64              `json:"processing_time_seconds,omitempty" example:"2.7"`
	CompletedAt           *time.Time            `json:"completed_at,omitempty"`
	Error                 string                `json:"error,omitempty"`
}

func resultsResponse(rec *model.RequestRecord) ResultsResponse {
	out := ResultsResponse{
		RequestID:   rec.ID,
		Status:      rec.State,
		Molecule:    rec.Request.Molecule,
		Findings:    rec.Findings,
		CompletedAt: rec.CompletedAt,
		Error:       rec.Error,
	}
	if rec.Findings != nil {
		out.PDFURL = rec.Findings.ArtifactURL
	}
	if rec.CompletedAt != nil {
		secs := rec.ProcessingTime().Seconds()
		out.ProcessingTimeSeconds = &secs
	}
	return out
}

// AgentsResponse lists the static agent catalog.
type AgentsResponse struct {
	Agents      []agents.Info `json:"agents"`
	TotalAgents int           `json:"total_agents" example:"6"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
