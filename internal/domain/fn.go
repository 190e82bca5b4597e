package domain

// Control is handed to every Behavior hook. It exposes the job's read view
// plus the operations a behavior may use from the worker goroutine.
type Control interface {
	Job

	// CheckState blocks while the pause gate is closed and then returns the
	// current state. Long steps call it to pause cooperatively.
	CheckState() State

	// Fail stores desc, applies FAILURE and notifies listeners. It does not block.
	Fail(desc *FailureDescription) error

	// RequestFailureHandling does what Fail does and then blocks until another
	// goroutine resumes, cancels or rolls back the job. It returns the state
	// observed after waking.
	RequestFailureHandling(desc *FailureDescription) (State, error)

	// SetDescription replaces the job description and notifies listeners.
	SetDescription(description string)

	// SaveData stores runtime key-value pairs exposed through Data and monitoring.
	SaveData(data map[string]interface{})

	// Rollback applies ROLLBACK to the job itself.
	Rollback() error

	// Cancel applies CANCEL to the job itself.
	Cancel() error
}

// Behavior supplies the unit of work a job executes.
//
// Steps should be small: suspension and cancellation are observed between steps.
type Behavior interface {
	// PreExecution runs once on the worker before the first step.
	PreExecution(ctrl Control) error

	// NextStep performs one forward unit of work and reports whether the work is done.
	NextStep(ctrl Control) (finished bool, err error)

	// NextRollbackStep reverts one unit of work and reports whether rollback is done.
	NextRollbackStep(ctrl Control) (finished bool, err error)

	// PostExecution always runs once on the worker after the loops end.
	PostExecution(ctrl Control) error

	// Percentage returns progress in [0,100], or UNKNOWN_PERCENTAGE.
	Percentage() int

	// SupportsRollback reports whether NextRollbackStep can revert effects.
	SupportsRollback() bool
}

// Funcs adapts plain functions to Behavior. Every field is optional; rollback
// support is enabled by setting RollbackStep.
type Funcs struct {
	Pre          func(ctrl Control) error
	Step         func(ctrl Control) (bool, error)
	RollbackStep func(ctrl Control) (bool, error)
	Post         func(ctrl Control) error
	Progress     func() int
}

var _ Behavior = Funcs{}

// PreExecution calls Pre.
//
// Returns:
//   - nil when Pre is not set, otherwise Pre's error.
func (f Funcs) PreExecution(ctrl Control) error {
	if f.Pre == nil {
		return nil
	}
	return f.Pre(ctrl)
}

// NextStep calls Step. A Funcs without Step finishes on its first step.
//
// Returns:
//   - finished: whether the forward work is complete.
//   - err: the step's error, which aborts the job.
func (f Funcs) NextStep(ctrl Control) (bool, error) {
	if f.Step == nil {
		return true, nil
	}
	return f.Step(ctrl)
}

// NextRollbackStep calls RollbackStep, reporting the rollback as done when it is not set.
func (f Funcs) NextRollbackStep(ctrl Control) (bool, error) {
	if f.RollbackStep == nil {
		return true, nil
	}
	return f.RollbackStep(ctrl)
}

// PostExecution calls Post, if set.
func (f Funcs) PostExecution(ctrl Control) error {
	if f.Post == nil {
		return nil
	}
	return f.Post(ctrl)
}

// Percentage calls Progress, or returns UNKNOWN_PERCENTAGE when it is not set.
func (f Funcs) Percentage() int {
	if f.Progress == nil {
		return UNKNOWN_PERCENTAGE
	}
	return f.Progress()
}

// SupportsRollback reports whether RollbackStep is set.
func (f Funcs) SupportsRollback() bool { return f.RollbackStep != nil }
