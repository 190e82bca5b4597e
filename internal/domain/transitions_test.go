package domain

import (
	"errors"
	errs "github.com/osmike/jobrun/internal/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// expected lists every accepted (state, command) pair. Anything missing is rejected.
var expected = map[State]map[Command]State{
	Preparing: {Start: Running},
	Running: {
		Fail: Failure, Suspend: Suspended, Rollback: Undoing,
		Cancel: Aborted, FinishJob: Finished,
	},
	Failure: {Resume: Running, Rollback: Undoing, Cancel: Aborted},
	Suspended: {
		Resume: Running, Rollback: Undoing, Cancel: Aborted,
		Fail: Failure, FinishJob: Finished,
	},
	Undoing: {
		Fail: UndoFailure, Suspend: UndoSuspended, Cancel: Aborted,
		FinishRollback: Reverted,
	},
	UndoFailure: {Resume: Undoing, Cancel: Aborted},
	UndoSuspended: {
		Resume: Undoing, Cancel: Aborted, Fail: UndoFailure,
		FinishRollback: Reverted,
	},
	Aborted: {FinishJob: Finished, FinishRollback: Reverted},
}

func TestNextState_AllPairs(t *testing.T) {
	for _, s := range States {
		for _, c := range Commands {
			next, ok := NextState(s, c)
			want, accepted := expected[s][c]
			assert.Equal(t, accepted, ok, "%s + %s", s, c)
			if accepted {
				assert.Equal(t, want, next, "%s + %s", s, c)
			}
		}
	}
}

func TestState_Flags(t *testing.T) {
	final := []State{Finished, Reverted, Aborted}
	runnable := []State{Preparing, Running, Undoing, Finished, Reverted, Aborted}
	undoing := []State{Undoing, UndoFailure, UndoSuspended}

	for _, s := range States {
		assert.True(t, s.Valid())
		assert.Equal(t, contains(final, s), s.Final(), "final %s", s)
		assert.Equal(t, contains(runnable, s), s.Runnable(), "runnable %s", s)
		assert.Equal(t, contains(undoing, s), s.Undoing(), "undoing %s", s)
	}
	assert.False(t, State("bogus").Valid())
}

func TestFinishedAndReverted_HaveNoEdges(t *testing.T) {
	for _, s := range []State{Finished, Reverted} {
		for _, c := range Commands {
			_, ok := NextState(s, c)
			assert.False(t, ok, "%s + %s", s, c)
		}
	}
}

func contains(list []State, s State) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestFailureDescription(t *testing.T) {
	cause := errors.New("no space left on device")
	d := NewFailureDescription(cause, "copy failed", OptionRetry, OptionIgnore, OptionRetry, NoResponse)

	assert.Equal(t, []FailureOption{OptionRetry, OptionIgnore}, d.Options())
	assert.Equal(t, cause, d.Cause())
	assert.Equal(t, "copy failed", d.Message())
	assert.Equal(t, NoResponse, d.Respond())
	assert.Contains(t, d.String(), "copy failed")

	require.NoError(t, d.SetRespond(OptionIgnore))
	assert.Equal(t, OptionIgnore, d.Respond())

	err := d.SetRespond(OptionRollback)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.Equal(t, OptionIgnore, d.Respond(), "invalid response must not overwrite")

	require.NoError(t, d.SetRespond(NoResponse))
	assert.Equal(t, NoResponse, d.Respond())

	opts := d.Options()
	opts[0] = OptionCancel
	assert.False(t, d.HasOption(OptionCancel), "Options returns a copy")
}

func TestFuncs_Defaults(t *testing.T) {
	var f Funcs
	done, err := f.NextStep(nil)
	assert.True(t, done)
	assert.NoError(t, err)
	assert.False(t, f.SupportsRollback())
	assert.Equal(t, UNKNOWN_PERCENTAGE, f.Percentage())
	assert.NoError(t, f.PreExecution(nil))
	assert.NoError(t, f.PostExecution(nil))

	f.RollbackStep = func(Control) (bool, error) { return true, nil }
	f.Progress = func() int { return 40 }
	assert.True(t, f.SupportsRollback())
	assert.Equal(t, 40, f.Percentage())
}
