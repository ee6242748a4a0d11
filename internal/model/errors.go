package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("request not found")
)

// ValidationError rejects a malformed DiscoveryRequest before it reaches the ledger.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError is returned for identifiers the ledger has never seen.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("request %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// WorkerFailure is one unit's failed fetch. It is recorded in that unit's slot
// and never aborts the run.
type WorkerFailure struct {
	Unit string
	Err  error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Unit, e.Err)
}

func (e *WorkerFailure) Unwrap() error { return e.Err }

// AggregationFault is a failure of the aggregation control flow itself. It
// moves only the affected request to the error state.
type AggregationFault struct {
	Detail string
	Err    error
}

func (e *AggregationFault) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aggregation fault: %s: %v", e.Detail, e.Err)
	}
	return "aggregation fault: " + e.Detail
}

func (e *AggregationFault) Unwrap() error { return e.Err }
