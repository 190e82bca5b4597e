package manager

import (
	"context"
	"fmt"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"github.com/osmike/jobrun/internal/job"
	"go.uber.org/zap"
)

// ExecuteJob takes over j.
//
// A Preparing job is attached to the manager and started; Start hands it
// back here once it is Running. A Running job is added to the active list
// and executed on a new goroutine. It moves to the finished list on its
// first transition into a final state.
//
// Returns:
//   - ErrManagerShutdown after Shutdown.
//   - ErrAlreadyManaged if j belongs to another manager.
//   - ErrIllegalState if j is in any other state, or already tracked here.
//   - The Start error for a Preparing job that could not start.
func (m *Manager) ExecuteJob(j *job.Job) error {
	if j == nil {
		return errs.New(errs.ErrInvalidArgument, "nil job")
	}
	if m.isClosed() {
		return errs.New(errs.ErrManagerShutdown, m.name)
	}
	if cur := j.Manager(); cur != nil && cur != job.Executor(m) {
		return errs.New(errs.ErrAlreadyManaged, j.Name())
	}

	switch st := j.State(); st {
	case domain.Preparing:
		if err := j.SetManager(m); err != nil {
			return err
		}
		return j.Start()
	case domain.Running:
		return m.activate(j)
	default:
		return errs.New(errs.ErrIllegalState, fmt.Sprintf("job %q cannot be executed in state %s", j.Name(), st))
	}
}

// Shutdown stops accepting jobs. It is idempotent.
//
// Returns:
//   - ErrActiveJobs (an ErrIllegalState) while jobs are still active; the
//     manager keeps accepting work then.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.lists.Load().active); n > 0 {
		return errs.New(errs.ErrActiveJobs, fmt.Sprintf("%d active", n))
	}
	if !m.closed {
		m.closed = true
		m.logger.Info("manager shut down")
	}
	return nil
}

// Await blocks until every worker goroutine started so far has returned.
//
// Returns:
//   - ctx.Err() if ctx ends first.
func (m *Manager) Await(ctx context.Context) error {
	m.mu.Lock()
	idle := m.idle
	m.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClearFinishedJobs empties the finished list and notifies FinishedListFlushed.
func (m *Manager) ClearFinishedJobs() {
	m.mu.Lock()
	cur := m.lists.Load()
	m.lists.Store(&lists{active: cur.active})
	m.mu.Unlock()

	m.logger.Debug("finished list flushed", zap.Int("count", len(cur.finished)))
	m.notify(func(l domain.ManagerListener) { l.FinishedListFlushed() })
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
