// Package agents holds the worker units fanned out for every discovery
// request. Each unit consults one external source and returns an opaque,
// JSON-encodable payload. Units never touch shared state; whatever they
// return is all the aggregator sees.
package agents

import "context"

// Unit names. These are the keys of every FindingsBundle.
const (
	UnitMarketData     = "market_data"
	UnitClinicalTrials = "clinical_trials"
	UnitPatents        = "patent_landscape"
	UnitLiterature     = "literature_evidence"
)

// Query is what a unit receives. Subject is always the request's molecule.
type Query struct {
	Subject    string
	Indication string
	Filters    map[string]string
}

// Agent is a single worker unit.
type Agent interface {
	Name() string
	Fetch(ctx context.Context, q Query) (any, error)
}
