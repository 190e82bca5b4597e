package job

import (
	"github.com/osmike/jobrun/internal/domain"
	"go.uber.org/zap"
)

// CheckState blocks while the pause gate is closed and then returns the
// current state, which is always runnable. A suspension landing between the
// gate and the state read sends the caller back to the gate.
func (j *Job) CheckState() domain.State {
	return j.awaitRunnable()
}

func (j *Job) awaitRunnable() domain.State {
	for {
		j.gate.PassThrough()
		if st := j.State(); st.Runnable() {
			return st
		}
	}
}

// Fail records desc, applies FAILURE and emits FailureEmerged, all in one
// locked region. It does not block the caller.
//
// On rejection the previous failure description is restored.
func (j *Job) Fail(desc *domain.FailureDescription) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	prev := j.failure.Swap(desc)
	if err := j.applyLocked(domain.Fail); err != nil {
		j.failure.Store(prev)
		return err
	}

	j.logger.Info("failure raised", zap.Stringer("failure", desc))
	j.fireFailure(desc)
	return nil
}

// RequestFailureHandling raises desc like Fail and then blocks the caller on
// the pause gate until another goroutine resumes, rolls back or cancels the job.
//
// Returns:
//   - The runnable state observed after waking.
//   - The Fail error if FAILURE was rejected; the caller is not blocked then.
func (j *Job) RequestFailureHandling(desc *domain.FailureDescription) (domain.State, error) {
	if err := j.Fail(desc); err != nil {
		return j.State(), err
	}
	return j.awaitRunnable(), nil
}

// finishedJob applies FINISHJOB.
func (j *Job) finishedJob() error {
	return j.apply(domain.FinishJob)
}

// finishedRollback applies FINISHROLLBACK.
func (j *Job) finishedRollback() error {
	return j.apply(domain.FinishRollback)
}
