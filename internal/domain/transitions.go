package domain

type stateMeta struct {
	final    bool
	runnable bool
	undoing  bool
}

var meta = map[State]stateMeta{
	Preparing:     {final: false, runnable: true, undoing: false},
	Running:       {final: false, runnable: true, undoing: false},
	Finished:      {final: true, runnable: true, undoing: false},
	Failure:       {final: false, runnable: false, undoing: false},
	Suspended:     {final: false, runnable: false, undoing: false},
	Undoing:       {final: false, runnable: true, undoing: true},
	UndoFailure:   {final: false, runnable: false, undoing: true},
	UndoSuspended: {final: false, runnable: false, undoing: true},
	Reverted:      {final: true, runnable: true, undoing: false},
	Aborted:       {final: true, runnable: true, undoing: false},
}

// transitions maps a state to the commands it accepts and their targets.
//
// Aborted is final yet still accepts FINISHJOB and FINISHROLLBACK. Every other
// final state has no outgoing edge. The edges are kept so a worker that
// completes its last step right after a cancel still lands in Finished or Reverted.
var transitions = map[State]map[Command]State{
	Preparing: {
		Start: Running,
	},
	Running: {
		Fail:      Failure,
		Suspend:   Suspended,
		Rollback:  Undoing,
		Cancel:    Aborted,
		FinishJob: Finished,
	},
	Finished: {},
	Failure: {
		Resume:   Running,
		Rollback: Undoing,
		Cancel:   Aborted,
	},
	Suspended: {
		Resume:    Running,
		Rollback:  Undoing,
		Cancel:    Aborted,
		Fail:      Failure,
		FinishJob: Finished,
	},
	Undoing: {
		Fail:           UndoFailure,
		Suspend:        UndoSuspended,
		Cancel:         Aborted,
		FinishRollback: Reverted,
	},
	UndoFailure: {
		Resume: Undoing,
		Cancel: Aborted,
	},
	UndoSuspended: {
		Resume:         Undoing,
		Cancel:         Aborted,
		Fail:           UndoFailure,
		FinishRollback: Reverted,
	},
	Reverted: {},
	Aborted: {
		FinishJob:      Finished,
		FinishRollback: Reverted,
	},
}

// NextState returns the state reached by applying cmd to current.
// The second result is false when current has no transition for cmd.
func NextState(current State, cmd Command) (State, bool) {
	next, ok := transitions[current][cmd]
	return next, ok
}

// Final reports whether the job lifecycle has ended in s.
func (s State) Final() bool { return meta[s].final }

// Runnable reports whether the pause gate is open in s.
func (s State) Runnable() bool { return meta[s].runnable }

// Undoing reports whether effects are being reverted in s.
func (s State) Undoing() bool { return meta[s].undoing }

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	_, ok := meta[s]
	return ok
}

func (s State) String() string { return string(s) }

func (c Command) String() string { return string(c) }
