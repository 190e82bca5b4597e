package job

import (
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"go.uber.org/zap"
)

// Start applies START and executes the job.
//
// Without a manager the job runs inline and Start returns once it has
// stopped executing. With a manager the job is handed to ExecuteJob and Start
// returns immediately; if the manager refuses it, the job is cancelled so it
// does not stay Running with no worker.
//
// Returns:
//   - A *TransitionError (ErrRejectedTransition) if the job is not Preparing.
//   - The manager's error if it refused the job.
func (j *Job) Start() error {
	if err := j.apply(domain.Start); err != nil {
		return err
	}

	m := j.Manager()
	if m == nil {
		j.Run()
		return nil
	}

	if err := m.ExecuteJob(j); err != nil {
		j.logger.Warn("manager refused started job", zap.Error(err))
		if cErr := j.Cancel(); cErr != nil {
			j.logger.Debug("cancel after refusal rejected", zap.Error(cErr))
		}
		return err
	}
	return nil
}

// Suspend applies SUSPEND. The worker stops at its next CheckState.
func (j *Job) Suspend() error {
	return j.apply(domain.Suspend)
}

// Resume applies RESUME and wakes a worker blocked on the pause gate.
func (j *Job) Resume() error {
	return j.apply(domain.Resume)
}

// Rollback applies ROLLBACK.
//
// Returns:
//   - ErrRollbackUnsupported, without touching the state, if the behavior cannot roll back.
//   - A *TransitionError if the current state does not accept ROLLBACK.
func (j *Job) Rollback() error {
	if !j.behavior.SupportsRollback() {
		return errs.New(errs.ErrRollbackUnsupported, j.name)
	}
	return j.apply(domain.Rollback)
}

// Cancel applies CANCEL. It does not wait for the worker: cancellation is
// observed at the worker's next CheckState.
func (j *Job) Cancel() error {
	return j.apply(domain.Cancel)
}
