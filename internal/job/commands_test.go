package job

import (
	"errors"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"github.com/osmike/jobrun/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// pathTo lists the commands that drive a fresh job into each state.
var pathTo = map[domain.State][]domain.Command{
	domain.Preparing:     nil,
	domain.Running:       {domain.Start},
	domain.Finished:      {domain.Start, domain.FinishJob},
	domain.Failure:       {domain.Start, domain.Fail},
	domain.Suspended:     {domain.Start, domain.Suspend},
	domain.Undoing:       {domain.Start, domain.Rollback},
	domain.UndoFailure:   {domain.Start, domain.Rollback, domain.Fail},
	domain.UndoSuspended: {domain.Start, domain.Rollback, domain.Suspend},
	domain.Reverted:      {domain.Start, domain.Rollback, domain.FinishRollback},
	domain.Aborted:       {domain.Start, domain.Cancel},
}

func jobIn(t *testing.T, s domain.State, opts ...Option) *Job {
	t.Helper()
	j := newTestJob(t, &testutil.Steps{Total: 3, Undoable: true}, opts...)
	for _, c := range pathTo[s] {
		require.NoError(t, j.apply(c))
	}
	require.Equal(t, s, j.State())
	return j
}

func TestJob_Apply_AllPairs(t *testing.T) {
	for _, from := range domain.States {
		for _, cmd := range domain.Commands {
			t.Run(string(from)+"/"+string(cmd), func(t *testing.T) {
				j := jobIn(t, from)
				rec := &testutil.Recorder{}
				j.AddListener(rec)

				err := j.apply(cmd)
				want, ok := domain.NextState(from, cmd)
				if !ok {
					var te *errs.TransitionError
					require.ErrorAs(t, err, &te)
					assert.ErrorIs(t, err, errs.ErrRejectedTransition)
					assert.Equal(t, string(from), te.From)
					assert.Equal(t, string(cmd), te.Command)
					assert.Equal(t, from, j.State(), "rejected command must not move the state")
					assert.Empty(t, rec.Events())
					return
				}

				require.NoError(t, err)
				assert.Equal(t, want, j.State())
				events := rec.Events()
				require.Len(t, events, 1)
				assert.Equal(t, testutil.Event{Kind: "state", From: from, To: want, Command: cmd, State: want}, events[0])
				assert.Equal(t, want.Runnable(), j.gate.IsOpen())
			})
		}
	}
}

func TestJob_Rollback_Unsupported(t *testing.T) {
	for _, s := range domain.States {
		t.Run(string(s), func(t *testing.T) {
			j := newTestJob(t, &testutil.Steps{Total: 3})
			for _, c := range pathTo[s] {
				require.NoError(t, j.apply(c))
			}
			rec := &testutil.Recorder{}
			j.AddListener(rec)

			err := j.Rollback()
			assert.ErrorIs(t, err, errs.ErrRollbackUnsupported)
			assert.False(t, errors.Is(err, errs.ErrRejectedTransition))
			assert.Equal(t, s, j.State())
			assert.Empty(t, rec.Events())
		})
	}
}

func TestJob_Rollback_Supported(t *testing.T) {
	j := jobIn(t, domain.Suspended)
	require.NoError(t, j.Rollback())
	assert.Equal(t, domain.Undoing, j.State())

	assert.ErrorIs(t, j.Rollback(), errs.ErrRejectedTransition)
}

func TestJob_PublicCommands(t *testing.T) {
	j := jobIn(t, domain.Running)

	require.NoError(t, j.Suspend())
	assert.Equal(t, domain.Suspended, j.State())
	assert.False(t, j.gate.IsOpen())

	assert.ErrorIs(t, j.Suspend(), errs.ErrRejectedTransition)

	require.NoError(t, j.Resume())
	assert.Equal(t, domain.Running, j.State())
	assert.True(t, j.gate.IsOpen())

	require.NoError(t, j.Cancel())
	assert.Equal(t, domain.Aborted, j.State())
	assert.ErrorIs(t, j.Cancel(), errs.ErrRejectedTransition)
}

func TestJob_Timestamps(t *testing.T) {
	j := jobIn(t, domain.Running)
	assert.False(t, j.StartedAt().IsZero())
	assert.True(t, j.EndedAt().IsZero())

	require.NoError(t, j.apply(domain.Cancel))
	ended := j.EndedAt()
	assert.False(t, ended.IsZero())

	// Aborted still accepts FINISHJOB; the end time stays the first one.
	require.NoError(t, j.apply(domain.FinishJob))
	assert.Equal(t, domain.Finished, j.State())
	assert.Equal(t, ended, j.EndedAt())
}

func TestJob_Start_Twice(t *testing.T) {
	j := newTestJob(t, &testutil.Steps{Total: 1})
	require.NoError(t, j.Start())
	assert.ErrorIs(t, j.Start(), errs.ErrRejectedTransition)
}

type fakeExecutor struct {
	err   error
	sink  domain.FailureSink
	calls []*Job
}

func (f *fakeExecutor) ExecuteJob(j *Job) error {
	f.calls = append(f.calls, j)
	return f.err
}

func (f *fakeExecutor) FailureSink() domain.FailureSink { return f.sink }

func TestJob_Start_HandsOverToManager(t *testing.T) {
	exec := &fakeExecutor{}
	steps := &testutil.Steps{Total: 1}
	j := newTestJob(t, steps, WithManager(exec))

	require.NoError(t, j.Start())
	assert.Equal(t, []*Job{j}, exec.calls)
	assert.Equal(t, domain.Running, j.State())
	assert.Equal(t, 0, steps.StepCalls(), "the manager runs the job, not Start")
}

func TestJob_Start_ManagerRefuses(t *testing.T) {
	exec := &fakeExecutor{err: errs.ErrManagerShutdown}
	j := newTestJob(t, &testutil.Steps{Total: 1}, WithManager(exec))

	err := j.Start()
	assert.ErrorIs(t, err, errs.ErrManagerShutdown)
	assert.Equal(t, domain.Aborted, j.State())
}

func TestJob_SetManager(t *testing.T) {
	a, b := &fakeExecutor{}, &fakeExecutor{}
	j := newTestJob(t, &testutil.Steps{Total: 1})

	require.NoError(t, j.SetManager(a))
	require.NoError(t, j.SetManager(a))
	assert.ErrorIs(t, j.SetManager(b), errs.ErrAlreadyManaged)
	assert.Equal(t, Executor(a), j.Manager())

	require.NoError(t, j.apply(domain.Start))
	assert.ErrorIs(t, j.SetManager(a), errs.ErrIllegalState)
}
