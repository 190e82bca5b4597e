package domain

import (
	"time"
)

// Snapshot is a point-in-time copy of a job's observable state used for monitoring.
type Snapshot struct {
	// JobID is the unique identifier of the job.
	JobID string

	// Name is the job name.
	Name string

	// State is the state at the time of the snapshot.
	State State

	// Percentage is the behavior's progress estimate, -1 if unknown.
	Percentage int

	// Description is the job description text.
	Description string

	// Failure holds the message of the last recoverable failure, empty if none.
	Failure string

	// StartAt is when the job left Preparing. Zero if it has not started.
	StartAt time.Time

	// EndAt is when the job first reached a final state. Zero while it runs.
	EndAt time.Time

	// Data holds the runtime data saved by the behavior.
	Data map[string]interface{}
}

// Config holds ambient settings shared by managers created through the root package.
type Config struct {
	// Name identifies the manager in log fields. Defaults to DEFAULT_MANAGER_NAME.
	Name string

	// LogLevel is a zap level name ("debug", "info", ...). Empty falls back to
	// the JOBRUN_LOG_LEVEL environment variable, then DEFAULT_LOG_LEVEL.
	LogLevel string

	// Development switches the logger to zap's human readable development config.
	Development bool
}
