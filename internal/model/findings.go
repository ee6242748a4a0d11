package model

import (
	"bytes"
	"encoding/json"
)

// UnitStatus marks whether a worker unit produced a payload.
type UnitStatus string

const (
	UnitOK     UnitStatus = "ok"
	UnitFailed UnitStatus = "failed"
)

// WorkerResult is one unit's outcome. Data is forwarded as-is and never
// interpreted by the aggregator.
type WorkerResult struct {
	Unit       string          `json:"unit"`
	Status     UnitStatus      `json:"status"`
	Data       json.RawMessage `json:"data,omitempty" swaggertype:"object"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// OK reports whether the unit succeeded.
func (w WorkerResult) OK() bool { return w.Status == UnitOK }

// FindingsBundle collects every registered unit's result for one request.
// Callers must look results up by unit name.
type FindingsBundle struct {
	RequestID   string                  `json:"request_id"`
	Subject     string                  `json:"subject"`
	Results     map[string]WorkerResult `json:"results"`
	Summary     string                  `json:"summary"`
	ArtifactURL string                  `json:"artifact_url,omitempty"`
}

// Clone returns a deep copy of b. A nil bundle clones to nil.
func (b *FindingsBundle) Clone() *FindingsBundle {
	if b == nil {
		return nil
	}
	out := *b
	if b.Results != nil {
		out.Results = make(map[string]WorkerResult, len(b.Results))
		for k, r := range b.Results {
			r.Data = bytes.Clone(r.Data)
			out.Results[k] = r
		}
	}
	return &out
}

// Succeeded counts units with a payload.
func (b *FindingsBundle) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failed lists the names of units that failed.
func (b *FindingsBundle) Failed() []string {
	var out []string
	for name, r := range b.Results {
		if !r.OK() {
			out = append(out, name)
		}
	}
	return out
}
