package domain

// State is the current position of a job in its lifecycle state machine.
//
// Every state carries immutable metadata (see Final, Runnable, Undoing).
// Possible values include:
// - Preparing:     The job has been created and not started yet.
// - Running:       The job is executing forward steps.
// - Finished:      All forward steps completed.
// - Failure:       A forward step reported a recoverable failure and waits for a decision.
// - Suspended:     Forward execution is paused.
// - Undoing:       The job is reverting previously applied effects.
// - UndoFailure:   A rollback step reported a recoverable failure.
// - UndoSuspended: Rollback is paused.
// - Reverted:      All effects have been reverted.
// - Aborted:       The job was cancelled.
type State string

const (
	// Preparing is the only initial state. Configuration such as the owning
	// manager may only change while the job is in this state.
	Preparing State = "preparing"

	// Running indicates the worker is executing forward steps.
	Running State = "running"

	// Finished indicates every forward step completed successfully.
	Finished State = "finished"

	// Failure indicates the job is waiting for an external decision about a
	// recoverable failure. The pause gate is closed while in this state.
	Failure State = "failure"

	// Suspended indicates forward execution is paused by request.
	Suspended State = "suspended"

	// Undoing indicates the worker is executing rollback steps.
	Undoing State = "undoing"

	// UndoFailure is the rollback counterpart of Failure.
	UndoFailure State = "undo_failure"

	// UndoSuspended is the rollback counterpart of Suspended.
	UndoSuspended State = "undo_suspended"

	// Reverted indicates every rollback step completed.
	Reverted State = "reverted"

	// Aborted indicates the job was cancelled.
	Aborted State = "aborted"
)

// Command is a trigger for a state transition.
type Command string

const (
	Start          Command = "START"
	Rollback       Command = "ROLLBACK"
	Suspend        Command = "SUSPEND"
	Resume         Command = "RESUME"
	Fail           Command = "FAILURE"
	Cancel         Command = "CANCEL"
	FinishJob      Command = "FINISHJOB"
	FinishRollback Command = "FINISHROLLBACK"
)

// Commands lists every command in declaration order.
var Commands = []Command{Start, Rollback, Suspend, Resume, Fail, Cancel, FinishJob, FinishRollback}

// States lists every state in declaration order.
var States = []State{Preparing, Running, Finished, Failure, Suspended, Undoing, UndoFailure, UndoSuspended, Reverted, Aborted}

const (
	// DEFAULT_MANAGER_NAME is used in log fields when a manager is created without a name.
	DEFAULT_MANAGER_NAME = "default"
	// DEFAULT_LOG_LEVEL is the zap level applied when neither Config.LogLevel
	// nor the JOBRUN_LOG_LEVEL environment variable is set.
	DEFAULT_LOG_LEVEL = "info"
	// LOG_LEVEL_ENV names the environment variable consulted for the log level.
	LOG_LEVEL_ENV = "JOBRUN_LOG_LEVEL"
	// ERROR_DESCRIPTION_PREFIX marks a job description replaced after an unexpected failure.
	ERROR_DESCRIPTION_PREFIX = "error: "
	// UNKNOWN_PERCENTAGE is returned by behaviors that cannot estimate progress.
	UNKNOWN_PERCENTAGE = -1
)
