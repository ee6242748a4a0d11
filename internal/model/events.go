package model

import "time"

// Event is a ledger transition delivered to watchers.
type Event struct {
	RequestID string    `json:"request_id"`
	Status    State     `json:"status"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}
