package job

import (
	"errors"
	"fmt"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"runtime/debug"
	"time"
)

// panicError carries a recovered panic value and the stack it was raised on.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("%v: %v", errs.ErrJobPanicked, e.value)
}

func (e *panicError) Unwrap() error { return errs.ErrJobPanicked }

// Run executes the job on the calling goroutine. The manager calls it from
// its own goroutine; without a manager Start calls it inline. A second call
// returns immediately.
//
// Execution flow:
//  1. PreExecution.
//  2. Forward steps while the state is Running and work remains.
//  3. FINISHJOB when the work is done, unless a rollback got there first.
//  4. Rollback steps while the state is Undoing and effects remain.
//  5. FINISHROLLBACK when every effect is reverted.
//  6. PostExecution, always.
//
// Errors and panics escaping the behavior never leave Run: the job is
// cancelled unless already final and the error goes to the failure sink.
func (j *Job) Run() {
	if !j.ran.CompareAndSwap(false, true) {
		j.logger.Warn("run called more than once")
		return
	}

	if err := j.execute(); err != nil {
		j.handleUnexpected(err)
	}
}

func (j *Job) execute() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = multierr.Append(err, &panicError{value: r, stack: debug.Stack()})
		}
	}()
	defer func() {
		err = multierr.Append(err, j.postExecution())
	}()

	if err = j.behavior.PreExecution(j); err != nil {
		return err
	}

	finished := false
	for !finished && j.CheckState() == domain.Running {
		if finished, err = j.behavior.NextStep(j); err != nil {
			return err
		}
		j.fireProgress()
	}

	if finished {
		if err = j.finishedJob(); err != nil {
			// a rollback requested while the last step ran wins over FINISHJOB
			if !errors.Is(err, errs.ErrRejectedTransition) || !j.State().Undoing() {
				return err
			}
			err = nil
		}
	}

	rolledBack := false
	for !rolledBack && j.CheckState() == domain.Undoing {
		if rolledBack, err = j.behavior.NextRollbackStep(j); err != nil {
			return err
		}
		j.fireProgress()
	}

	if rolledBack {
		return j.finishedRollback()
	}
	return nil
}

// postExecution runs the behavior's PostExecution hook, converting a panic into an error.
func (j *Job) postExecution() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return j.behavior.PostExecution(j)
}

// handleUnexpected absorbs an error that escaped the behavior: it marks the
// description, cancels the job unless it already ended and reports the error once.
func (j *Job) handleUnexpected(err error) {
	st := j.State()

	fields := []zap.Field{zap.Error(err), zap.String("state", string(st))}
	var pe *panicError
	if errors.As(err, &pe) {
		fields = append(fields, zap.ByteString("stack", pe.stack))
	}
	j.logger.Error("job failed unexpectedly", fields...)

	j.SetDescription(domain.ERROR_DESCRIPTION_PREFIX + err.Error())

	if !j.State().Final() {
		if cErr := j.Cancel(); cErr != nil {
			j.logger.Debug("forced cancel rejected", zap.Error(cErr))
		}
	}

	sink := j.failureSink()
	report := domain.FailureReport{
		Err:     err,
		Origin:  j.origin(),
		Message: fmt.Sprintf("job %q failed in state %s", j.name, st),
		JobID:   j.ID(),
		JobName: j.name,
		State:   st,
		Time:    time.Now(),
	}
	if pe != nil {
		report.Message += "\n" + string(pe.stack)
	}
	if rErr := sink.ReportFailure(report); rErr != nil {
		j.logger.Error("failure sink rejected report", zap.Error(rErr))
	}
}

// failureSink picks the job's own sink, then its manager's, then zap's
// global logger.
func (j *Job) failureSink() domain.FailureSink {
	if j.sink != nil {
		return j.sink
	}
	if m := j.Manager(); m != nil {
		if s := m.FailureSink(); s != nil {
			return s
		}
	}
	return globalSink{}
}

// globalSink logs failure reports through zap.L(), read at report time so a
// later zap.ReplaceGlobals is honoured.
type globalSink struct{}

func (globalSink) ReportFailure(r domain.FailureReport) error {
	zap.L().Named("failures").Error(r.Message,
		zap.Error(r.Err),
		zap.String("origin", r.Origin),
		zap.String("job_id", r.JobID),
		zap.String("job_name", r.JobName),
		zap.String("state", string(r.State)),
		zap.Time("time", r.Time),
	)
	return nil
}
