// Package jobrun runs long-lived, interruptible and optionally undoable
// background jobs under explicit state control.
//
// A job wraps a Behavior (a unit of work split into small steps) in a
// command-driven state machine. Other goroutines suspend, resume, roll back
// or cancel it at any time; the worker observes those commands between steps.
// When a step hits a problem a human or a policy must decide on, the job
// raises a FailureDescription and parks itself until someone responds.
//
// Jobs run either inline on the caller's goroutine (Job.Start without a
// manager) or on a Manager, which gives every job its own goroutine and keeps
// copy-on-write lists of active and finished jobs for observers.
//
// Features:
//   - Closed state machine: Preparing, Running, Suspended, Failure, Undoing,
//     UndoSuspended, UndoFailure, Finished, Reverted, Aborted.
//   - Cooperative suspension through a pause gate, without busy waiting.
//   - Failure escalation handshake with Retry, Ignore, IgnoreAll, Rollback and Cancel responses.
//   - Unexpected errors and panics absorbed per job and sent to a FailureSink.
//   - Job and manager listeners for progress bars, monitoring and telemetry.
//
// The manager's pool is unbounded: it applies no admission control, queueing
// or throughput limit, and starts one goroutine per accepted job.
//
// Example usage:
//
//	m, _ := jobrun.NewManager(jobrun.Config{Name: "files"})
//
//	j, _ := jobrun.NewJob("rename-batch", jobrun.Funcs{
//		Step: func(ctrl jobrun.Control) (bool, error) {
//			// rename one file...
//			return done, nil
//		},
//	})
//
//	_ = m.ExecuteJob(j)
//	_ = m.Await(ctx)
//	_ = m.Shutdown()
package jobrun

import (
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"github.com/osmike/jobrun/internal/job"
	"github.com/osmike/jobrun/internal/logging"
	"github.com/osmike/jobrun/internal/manager"
)

// Job is one instance of interruptible, optionally undoable work.
//
// Commands:
//   - Start: Preparing -> Running, then executes inline or on the job's manager.
//   - Suspend / Resume: pause and continue at the next step boundary.
//   - Rollback: revert completed work (only if the behavior supports it).
//   - Cancel: stop at the next step boundary.
type Job = job.Job

// JobView is the read-only view of a job handed to listeners.
type JobView = domain.Job

// JobOption configures a job at construction.
type JobOption = job.Option

// Manager executes jobs on their own goroutines and tracks the active and finished lists.
type Manager = manager.Manager

// ManagerOption configures a manager at construction.
type ManagerOption = manager.Option

// Config holds the ambient settings used by NewManager.
//
// Parameters:
//   - Name: Manager name used in log fields. Defaults to "default".
//   - LogLevel: zap level name. Empty falls back to JOBRUN_LOG_LEVEL, then "info".
//   - Development: Use zap's human readable development logger.
type Config = domain.Config

// State is a job lifecycle state.
type State = domain.State

// Command triggers a state transition.
type Command = domain.Command

// Behavior supplies the hooks a job executes: PreExecution, NextStep,
// NextRollbackStep, PostExecution, Percentage and SupportsRollback.
type Behavior = domain.Behavior

// Control is what a Behavior's hooks receive: the job's read view plus
// CheckState, Fail, RequestFailureHandling, SetDescription, SaveData,
// Rollback and Cancel.
type Control = domain.Control

// Funcs adapts plain functions to Behavior.
type Funcs = domain.Funcs

// JobListener observes one job's transitions, progress, failures and description.
type JobListener = domain.JobListener

// ListenerFuncs adapts optional callbacks to JobListener.
type ListenerFuncs = domain.ListenerFuncs

// ManagerListener observes a manager's active and finished lists.
type ManagerListener = domain.ManagerListener

// ManagerListenerFuncs adapts optional callbacks to ManagerListener.
type ManagerListenerFuncs = domain.ManagerListenerFuncs

// FailureOption is a response to a recoverable failure.
type FailureOption = domain.FailureOption

// FailureDescription describes a recoverable failure and carries the chosen response.
type FailureDescription = domain.FailureDescription

// FailureReport is what a FailureSink receives when a job's behavior lets an error escape.
type FailureReport = domain.FailureReport

// FailureSink receives unexpected job failures.
type FailureSink = domain.FailureSink

// Snapshot is a point-in-time copy of a job's observable state.
type Snapshot = domain.Snapshot

// Monitoring stores job snapshots.
type Monitoring = domain.Monitoring

// TransitionError is returned when a command has no transition from the current state.
type TransitionError = errs.TransitionError

const (
	Preparing     = domain.Preparing
	Running       = domain.Running
	Finished      = domain.Finished
	Failure       = domain.Failure
	Suspended     = domain.Suspended
	Undoing       = domain.Undoing
	UndoFailure   = domain.UndoFailure
	UndoSuspended = domain.UndoSuspended
	Reverted      = domain.Reverted
	Aborted       = domain.Aborted
)

const (
	NoResponse      = domain.NoResponse
	OptionRetry     = domain.OptionRetry
	OptionIgnore    = domain.OptionIgnore
	OptionIgnoreAll = domain.OptionIgnoreAll
	OptionRollback  = domain.OptionRollback
	OptionCancel    = domain.OptionCancel
)

// Errors returned by jobs and managers. Match them with errors.Is.
var (
	ErrRejectedTransition  = errs.ErrRejectedTransition
	ErrRollbackUnsupported = errs.ErrRollbackUnsupported
	ErrIllegalState        = errs.ErrIllegalState
	ErrInvalidArgument     = errs.ErrInvalidArgument
	ErrActiveJobs          = errs.ErrActiveJobs
	ErrManagerShutdown     = errs.ErrManagerShutdown
	ErrAlreadyManaged      = errs.ErrAlreadyManaged
	ErrJobPanicked         = errs.ErrJobPanicked
	ErrEmptyName           = errs.ErrEmptyName
	ErrNilBehavior         = errs.ErrNilBehavior
)

// Job options.
var (
	WithJobLogger   = job.WithLogger
	WithJobSink     = job.WithSink
	WithJobListener = job.WithListener
	WithDescription = job.WithDescription
)

// Manager options.
var (
	WithManagerLogger   = manager.WithLogger
	WithManagerSink     = manager.WithSink
	WithManagerListener = manager.WithListener
)

// NewJob creates a job in the Preparing state.
//
// Parameters:
//   - name: Human readable job name. Must not be empty.
//   - behavior: The work to execute. Must not be nil.
//
// Returns:
//   - The job, or ErrEmptyName / ErrNilBehavior.
func NewJob(name string, behavior Behavior, opts ...JobOption) (*Job, error) {
	return job.New(name, behavior, opts...)
}

// NewManager creates a manager whose zap logger is built from cfg.
// Options given explicitly (WithManagerLogger included) take precedence.
//
// Returns:
//   - The manager, or the error raised while building the logger.
func NewManager(cfg Config, opts ...ManagerOption) (*Manager, error) {
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	base := []ManagerOption{manager.WithLogger(logger), manager.WithName(cfg.Name)}
	return manager.New(append(base, opts...)...), nil
}

// NewFailureDescription creates a recoverable failure description offering options.
func NewFailureDescription(cause error, message string, options ...FailureOption) *FailureDescription {
	return domain.NewFailureDescription(cause, message, options...)
}
