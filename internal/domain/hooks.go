package domain

// JobListener observes a single job.
//
// Callbacks run synchronously on the goroutine that caused the change, in
// registration order. StateChanged and FailureEmerged run while the job's
// transition lock is held: a listener may read the job but must not call
// Start, Suspend, Resume, Rollback or Cancel on the same job, or it deadlocks.
type JobListener interface {
	StateChanged(job Job, from, to State, cmd Command)
	ProgressChanged(job Job)
	FailureEmerged(job Job, desc *FailureDescription)
	DescriptionChanged(job Job)
}

// ManagerListener observes the active and finished lists of a manager.
type ManagerListener interface {
	JobAddedToActiveList(job Job)
	JobRemovedFromActiveList(job Job)
	JobAddedToFinishedList(job Job)
	FinishedListFlushed()
}

// ListenerFuncs adapts optional callbacks to JobListener.
type ListenerFuncs struct {
	OnStateChanged       func(job Job, from, to State, cmd Command)
	OnProgressChanged    func(job Job)
	OnFailureEmerged     func(job Job, desc *FailureDescription)
	OnDescriptionChanged func(job Job)
}

var _ JobListener = (*ListenerFuncs)(nil)

// StateChanged calls OnStateChanged, if set.
func (l *ListenerFuncs) StateChanged(job Job, from, to State, cmd Command) {
	if l.OnStateChanged != nil {
		l.OnStateChanged(job, from, to, cmd)
	}
}

// ProgressChanged calls OnProgressChanged, if set.
func (l *ListenerFuncs) ProgressChanged(job Job) {
	if l.OnProgressChanged != nil {
		l.OnProgressChanged(job)
	}
}

// FailureEmerged calls OnFailureEmerged, if set.
func (l *ListenerFuncs) FailureEmerged(job Job, desc *FailureDescription) {
	if l.OnFailureEmerged != nil {
		l.OnFailureEmerged(job, desc)
	}
}

// DescriptionChanged calls OnDescriptionChanged, if set.
func (l *ListenerFuncs) DescriptionChanged(job Job) {
	if l.OnDescriptionChanged != nil {
		l.OnDescriptionChanged(job)
	}
}

// ManagerListenerFuncs adapts optional callbacks to ManagerListener.
type ManagerListenerFuncs struct {
	OnAddedToActive     func(job Job)
	OnRemovedFromActive func(job Job)
	OnAddedToFinished   func(job Job)
	OnFinishedFlushed   func()
}

var _ ManagerListener = (*ManagerListenerFuncs)(nil)

// JobAddedToActiveList calls OnAddedToActive, if set.
func (l *ManagerListenerFuncs) JobAddedToActiveList(job Job) {
	if l.OnAddedToActive != nil {
		l.OnAddedToActive(job)
	}
}

// JobRemovedFromActiveList calls OnRemovedFromActive, if set.
func (l *ManagerListenerFuncs) JobRemovedFromActiveList(job Job) {
	if l.OnRemovedFromActive != nil {
		l.OnRemovedFromActive(job)
	}
}

// JobAddedToFinishedList calls OnAddedToFinished, if set.
func (l *ManagerListenerFuncs) JobAddedToFinishedList(job Job) {
	if l.OnAddedToFinished != nil {
		l.OnAddedToFinished(job)
	}
}

// FinishedListFlushed calls OnFinishedFlushed, if set.
func (l *ManagerListenerFuncs) FinishedListFlushed() {
	if l.OnFinishedFlushed != nil {
		l.OnFinishedFlushed()
	}
}
