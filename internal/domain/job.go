package domain

import "time"

// Job is the read-only view of a job handed to listeners and monitoring.
//
// Every method is safe to call from inside a listener callback: none of them
// takes the job's transition lock.
type Job interface {
	// ID returns the job's unique identifier (a UUID string).
	ID() string

	// Name returns the immutable job name.
	Name() string

	// State returns the current lifecycle state.
	State() State

	// Description returns the human readable activity text, empty if unset.
	Description() string

	// Percentage returns the behavior's progress estimate in [0,100], or -1 if unknown.
	Percentage() int

	// SupportsRollback reports whether the behavior can revert its effects.
	SupportsRollback() bool

	// FailureDescription returns the last recoverable failure, nil if none was raised.
	FailureDescription() *FailureDescription

	// Data returns a copy of the runtime data saved by the behavior.
	Data() map[string]interface{}

	// StartedAt returns when the job left Preparing, zero if it has not.
	StartedAt() time.Time

	// EndedAt returns when the job first reached a final state, zero if it has not.
	EndedAt() time.Time

	// Snapshot copies all of the above into one value.
	Snapshot() Snapshot
}
