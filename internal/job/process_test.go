package job

import (
	"errors"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"github.com/osmike/jobrun/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync/atomic"
	"testing"
)

func TestJob_Fail_Rejected(t *testing.T) {
	j := newTestJob(t, &testutil.Steps{Total: 1})
	rec := &testutil.Recorder{}
	j.AddListener(rec)

	desc := domain.NewFailureDescription(nil, "too early", domain.OptionRetry)
	err := j.Fail(desc)
	assert.ErrorIs(t, err, errs.ErrRejectedTransition)
	assert.Nil(t, j.FailureDescription())
	assert.Zero(t, rec.Count("failure"))

	st, err := j.RequestFailureHandling(desc)
	assert.ErrorIs(t, err, errs.ErrRejectedTransition)
	assert.Equal(t, domain.Preparing, st, "a rejected request must not block")
}

func TestJob_Fail_KeepsPreviousOnRejection(t *testing.T) {
	j := jobIn(t, domain.Running)
	first := domain.NewFailureDescription(nil, "first", domain.OptionRetry)
	require.NoError(t, j.Fail(first))
	assert.Equal(t, domain.Failure, j.State())

	second := domain.NewFailureDescription(nil, "second", domain.OptionRetry)
	assert.ErrorIs(t, j.Fail(second), errs.ErrRejectedTransition)
	assert.Same(t, first, j.FailureDescription())
}

func TestJob_Fail_FromUndoing(t *testing.T) {
	j := jobIn(t, domain.UndoSuspended)
	require.NoError(t, j.Fail(domain.NewFailureDescription(nil, "undo failed", domain.OptionRetry)))
	assert.Equal(t, domain.UndoFailure, j.State())
}

func TestJob_RequestFailureHandling(t *testing.T) {
	tests := []struct {
		name      string
		undoable  bool
		respond   domain.FailureOption
		act       func(j *Job) error
		woke      domain.State
		final     domain.State
		stepCalls int
	}{
		{
			name:      "resume",
			respond:   domain.OptionRetry,
			act:       (*Job).Resume,
			woke:      domain.Running,
			final:     domain.Finished,
			stepCalls: 3,
		},
		{
			name:      "cancel",
			respond:   domain.OptionCancel,
			act:       (*Job).Cancel,
			woke:      domain.Aborted,
			final:     domain.Aborted,
			stepCalls: 1,
		},
		{
			name:      "rollback",
			undoable:  true,
			respond:   domain.OptionRollback,
			act:       (*Job).Rollback,
			woke:      domain.Undoing,
			final:     domain.Reverted,
			stepCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var woke atomic.Value
			cause := errors.New("disk full")
			steps := &testutil.Steps{Total: 3, Undoable: tt.undoable}
			steps.OnStep = func(ctrl domain.Control, n int) error {
				if n != 1 {
					return nil
				}
				desc := domain.NewFailureDescription(cause, "disk full",
					domain.OptionRetry, domain.OptionCancel, domain.OptionRollback)
				st, err := ctrl.RequestFailureHandling(desc)
				woke.Store(st)
				return err
			}
			rec := &testutil.Recorder{}
			j := newTestJob(t, steps, WithListener(rec))

			done := make(chan error, 1)
			go func() { done <- j.Start() }()

			testutil.WaitForCondition(t, waitTimeout, func() bool { return j.State() == domain.Failure })
			desc := j.FailureDescription()
			require.NotNil(t, desc)
			assert.ErrorIs(t, desc.Cause(), cause)
			assert.Nil(t, woke.Load(), "worker must block until handled")

			require.NoError(t, desc.SetRespond(tt.respond))
			require.NoError(t, tt.act(j))
			require.NoError(t, <-done)

			assert.Equal(t, tt.woke, woke.Load())
			assert.Equal(t, tt.final, j.State())
			assert.Equal(t, tt.stepCalls, steps.StepCalls())
			assert.Equal(t, 1, rec.Count("failure"))
			assert.Equal(t, tt.respond, j.FailureDescription().Respond())
		})
	}
}

func TestJob_CheckState_ReturnsCurrent(t *testing.T) {
	j := jobIn(t, domain.Undoing)
	assert.Equal(t, domain.Undoing, j.CheckState())
}

func TestJob_ListenerReadsDuringNotification(t *testing.T) {
	var seen []domain.State
	var desc string
	l := &domain.ListenerFuncs{
		OnStateChanged: func(job domain.Job, _, to domain.State, _ domain.Command) {
			seen = append(seen, job.State())
			desc = job.Description()
		},
	}
	j := newTestJob(t, &testutil.Steps{Total: 1}, WithListener(l), WithDescription("d"))
	require.NoError(t, j.Start())

	assert.Equal(t, []domain.State{domain.Running, domain.Finished}, seen)
	assert.Equal(t, "d", desc)
}
