package manager

import (
	"fmt"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"github.com/osmike/jobrun/internal/job"
	"go.uber.org/zap"
	"slices"
	"sync"
)

// migration moves its job to the finished list on the first transition into
// a final state. Later transitions (Aborted still accepts FINISHJOB and
// FINISHROLLBACK) do not move it again.
type migration struct {
	m    *Manager
	job  *job.Job
	once sync.Once
}

func (mg *migration) StateChanged(_ domain.Job, _, to domain.State, _ domain.Command) {
	if to.Final() {
		mg.run()
	}
}

func (mg *migration) ProgressChanged(domain.Job)                            {}
func (mg *migration) FailureEmerged(domain.Job, *domain.FailureDescription) {}
func (mg *migration) DescriptionChanged(domain.Job)                         {}

func (mg *migration) run() {
	mg.once.Do(func() {
		mg.m.finish(mg.job)
		mg.job.RemoveListener(mg)
	})
}

// activate adds a Running job to the active list and launches its worker.
func (m *Manager) activate(j *job.Job) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errs.New(errs.ErrManagerShutdown, m.name)
	}
	cur := m.lists.Load()
	if slices.Contains(cur.active, j) || slices.Contains(cur.finished, j) {
		m.mu.Unlock()
		return errs.New(errs.ErrIllegalState, fmt.Sprintf("job %q already executed by manager %q", j.Name(), m.name))
	}
	m.lists.Store(&lists{
		active:   append(slices.Clone(cur.active), j),
		finished: cur.finished,
	})
	m.mu.Unlock()

	m.logger.Debug("job added to active list", zap.String("job_id", j.ID()), zap.String("job_name", j.Name()))
	m.notify(func(l domain.ManagerListener) { l.JobAddedToActiveList(j) })

	mg := &migration{m: m, job: j}
	j.AddListener(mg)
	// the job may have been cancelled before the listener was attached
	if j.State().Final() {
		mg.run()
	}

	m.execute(j)
	return nil
}

// finish moves j from the active to the finished list in one swap, then
// notifies listeners outside the manager lock.
func (m *Manager) finish(j *job.Job) {
	m.mu.Lock()
	cur := m.lists.Load()
	idx := slices.Index(cur.active, j)
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	m.lists.Store(&lists{
		active:   slices.Delete(slices.Clone(cur.active), idx, idx+1),
		finished: append(slices.Clone(cur.finished), j),
	})
	m.mu.Unlock()

	m.logger.Debug("job moved to finished list",
		zap.String("job_id", j.ID()),
		zap.String("job_name", j.Name()),
		zap.String("state", string(j.State())),
	)
	m.notify(func(l domain.ManagerListener) { l.JobRemovedFromActiveList(j) })
	m.notify(func(l domain.ManagerListener) { l.JobAddedToFinishedList(j) })
}
