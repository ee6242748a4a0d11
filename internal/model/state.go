package model

// State is the lifecycle state of a RequestRecord.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// CanTransition reports whether s -> next is a legal forward step.
func (s State) CanTransition(next State) bool {
	switch s {
	case StatePending:
		return next == StateProcessing || next == StateError
	case StateProcessing:
		return next == StateCompleted || next == StateError
	default:
		return false
	}
}
