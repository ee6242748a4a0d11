package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMaxSubjectLength bounds molecule and indication lengths when no
// explicit limit is configured.
const DefaultMaxSubjectLength = 255

// DiscoveryRequest is the immutable input of one discovery run.
type DiscoveryRequest struct {
	Molecule   string            `json:"molecule_name" example:"aspirin"`
	Indication string            `json:"indication,omitempty" example:"cardiovascular"`
	Filters    map[string]string `json:"filters,omitempty"`
}

// Validate normalizes whitespace in place and checks the request against
// maxLen, counted in characters. A non-positive maxLen falls back to DefaultMaxSubjectLength.
func (r *DiscoveryRequest) Validate(maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxSubjectLength
	}

	r.Molecule = strings.TrimSpace(r.Molecule)
	r.Indication = strings.TrimSpace(r.Indication)

	if r.Molecule == "" {
		return &ValidationError{Field: "molecule_name", Reason: "must not be empty"}
	}
	if !utf8.ValidString(r.Molecule) {
		return &ValidationError{Field: "molecule_name", Reason: "must be valid UTF-8"}
	}
	if utf8.RuneCountInString(r.Molecule) > maxLen {
		return &ValidationError{Field: "molecule_name", Reason: "exceeds maximum length"}
	}
	if !utf8.ValidString(r.Indication) {
		return &ValidationError{Field: "indication", Reason: "must be valid UTF-8"}
	}
	if utf8.RuneCountInString(r.Indication) > maxLen {
		return &ValidationError{Field: "indication", Reason: "exceeds maximum length"}
	}
	for k := range r.Filters {
		if strings.TrimSpace(k) == "" {
			return &ValidationError{Field: "filters", Reason: "filter keys must not be empty"}
		}
	}
	return nil
}

// Clone returns a deep copy so the caller's map cannot alias an accepted request.
func (r DiscoveryRequest) Clone() DiscoveryRequest {
	out := r
	if r.Filters != nil {
		out.Filters = make(map[string]string, len(r.Filters))
		for k, v := range r.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// RequestRecord is the ledger entry for one accepted DiscoveryRequest.
type RequestRecord struct {
	ID          string           `json:"request_id"`
	Request     DiscoveryRequest `json:"request"`
	State       State            `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Findings    *FindingsBundle  `json:"findings,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// ProcessingTime is the wall time between creation and completion. It is zero
// until the record is terminal.
func (r *RequestRecord) ProcessingTime() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.CreatedAt)
}

// Copy returns a deep copy safe to hand out.
func (r *RequestRecord) Copy() RequestRecord {
	out := *r
	out.Request = r.Request.Clone()
	out.Findings = r.Findings.Clone()
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
