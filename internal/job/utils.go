package job

import (
	"fmt"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"go.uber.org/zap"
	"slices"
)

// AddListener registers l. Notifications already in flight use the previous
// listener set.
func (j *Job) AddListener(l domain.JobListener) {
	if l == nil {
		return
	}
	j.listenersMu.Lock()
	defer j.listenersMu.Unlock()

	next := append(slices.Clone(*j.listeners.Load()), l)
	j.listeners.Store(&next)
}

// RemoveListener unregisters the first registration of l.
func (j *Job) RemoveListener(l domain.JobListener) {
	j.listenersMu.Lock()
	defer j.listenersMu.Unlock()

	cur := *j.listeners.Load()
	idx := slices.Index(cur, l)
	if idx < 0 {
		return
	}
	next := slices.Delete(slices.Clone(cur), idx, idx+1)
	j.listeners.Store(&next)
}

// Listeners returns the registered listeners in registration order.
func (j *Job) Listeners() []domain.JobListener {
	return slices.Clone(*j.listeners.Load())
}

func (j *Job) snapshotListeners() []domain.JobListener {
	return *j.listeners.Load()
}

// apply performs one command-driven transition under the job mutex.
func (j *Job) apply(cmd domain.Command) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.applyLocked(cmd)
}

// applyLocked moves the state machine, notifies listeners and then updates
// the pause gate. Callers hold j.mu.
func (j *Job) applyLocked(cmd domain.Command) error {
	from := j.State()
	to, ok := domain.NextState(from, cmd)
	if !ok {
		return &errs.TransitionError{JobName: j.name, From: string(from), Command: string(cmd)}
	}

	j.state.set(from, to)
	j.logger.Debug("state changed",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("command", string(cmd)),
	)

	for _, l := range j.snapshotListeners() {
		l.StateChanged(j, from, to, cmd)
	}

	if to.Runnable() {
		j.gate.Open()
	} else {
		j.gate.Close()
	}
	return nil
}

func (j *Job) fireProgress() {
	for _, l := range j.snapshotListeners() {
		l.ProgressChanged(j)
	}
}

func (j *Job) fireDescription() {
	for _, l := range j.snapshotListeners() {
		l.DescriptionChanged(j)
	}
}

func (j *Job) fireFailure(desc *domain.FailureDescription) {
	for _, l := range j.snapshotListeners() {
		l.FailureEmerged(j, desc)
	}
}

func (j *Job) origin() string {
	return fmt.Sprintf("%s#%s", j.name, j.id)
}
