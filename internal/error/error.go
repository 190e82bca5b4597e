package error

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName      = errors.New("job name is empty")
	ErrNilBehavior    = errors.New("job behavior is nil")
	ErrAlreadyManaged = errors.New("job already attached to another manager")
)

// Protocol violations. Callers branch on these with errors.Is.
var (
	ErrRejectedTransition  = errors.New("transition rejected")
	ErrRollbackUnsupported = errors.New("rollback not supported")
	ErrIllegalState        = errors.New("illegal state")
	ErrInvalidArgument     = errors.New("invalid argument")
)

var (
	ErrManagerShutdown = errors.New("manager is shut down")
	ErrActiveJobs      = fmt.Errorf("%w: manager still has active jobs", ErrIllegalState)
)

var (
	ErrJobPanicked = errors.New("job panicked")
	ErrJobFailed   = errors.New("job failed unexpectedly")
	ErrSinkClosed  = errors.New("failure sink closed")
)

// TransitionError reports a command that has no mapped transition from the
// state the job was in. It matches ErrRejectedTransition.
type TransitionError struct {
	JobName string
	From    string
	Command string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: job %q cannot apply %s in state %s", ErrRejectedTransition, e.JobName, e.Command, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrRejectedTransition
}

func New(err error, str string) error {
	return fmt.Errorf("%w: %s", err, str)
}
