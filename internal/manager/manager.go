package manager

import (
	"github.com/osmike/jobrun/internal/domain"
	"github.com/osmike/jobrun/internal/job"
	"go.uber.org/zap"
	"slices"
	"sync"
	"sync/atomic"
)

// lists is an immutable pair of the active and finished job lists. A new
// value replaces the old one on every change, so readers always see a job in
// exactly one of them.
type lists struct {
	active   []*job.Job
	finished []*job.Job
}

// Manager runs started jobs, one goroutine per job, and tracks which of
// them are still active and which have reached a final state.
//
// The pool is unbounded: there is no admission control, queueing or
// throughput limit. Every accepted job gets its own goroutine immediately.
type Manager struct {
	name   string
	logger *zap.Logger
	sink   domain.FailureSink

	// mu serialises list writers and the shutdown flag. Readers use lists only.
	mu     sync.Mutex
	lists  atomic.Pointer[lists]
	closed bool

	// running counts worker goroutines; idle is closed whenever it is zero.
	running int
	idle    chan struct{}

	listenersMu sync.Mutex
	listeners   atomic.Pointer[[]domain.ManagerListener]
}

var _ job.Executor = (*Manager)(nil)

// Option configures a Manager at construction.
type Option func(*Manager)

// WithLogger sets the zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithSink sets the failure sink used by jobs that have none of their own.
func WithSink(s domain.FailureSink) Option {
	return func(m *Manager) { m.sink = s }
}

// WithListener registers manager listeners.
func WithListener(ls ...domain.ManagerListener) Option {
	return func(m *Manager) {
		for _, l := range ls {
			m.AddListener(l)
		}
	}
}

// WithName names the manager in log fields.
func WithName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.name = name
		}
	}
}

// New creates a manager that accepts jobs until Shutdown.
func New(opts ...Option) *Manager {
	m := &Manager{
		name:   domain.DEFAULT_MANAGER_NAME,
		logger: zap.NewNop(),
		idle:   make(chan struct{}),
	}
	close(m.idle)
	m.lists.Store(&lists{})
	empty := []domain.ManagerListener{}
	m.listeners.Store(&empty)

	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.Named("manager").With(zap.String("manager", m.name))
	return m
}

// Name returns the manager name.
func (m *Manager) Name() string { return m.name }

// FailureSink returns the sink given with WithSink, nil if none.
func (m *Manager) FailureSink() domain.FailureSink { return m.sink }

// ActiveJobs returns a copy of the jobs that have not reached a final state.
func (m *Manager) ActiveJobs() []*job.Job {
	return slices.Clone(m.lists.Load().active)
}

// FinishedJobs returns a copy of the jobs that reached a final state since
// the last ClearFinishedJobs.
func (m *Manager) FinishedJobs() []*job.Job {
	return slices.Clone(m.lists.Load().finished)
}

// Lists returns both lists taken from the same snapshot.
func (m *Manager) Lists() (active, finished []*job.Job) {
	l := m.lists.Load()
	return slices.Clone(l.active), slices.Clone(l.finished)
}

// AddListener registers l for list changes.
func (m *Manager) AddListener(l domain.ManagerListener) {
	if l == nil {
		return
	}
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	next := append(slices.Clone(*m.listeners.Load()), l)
	m.listeners.Store(&next)
}

// RemoveListener unregisters the first registration of l.
func (m *Manager) RemoveListener(l domain.ManagerListener) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	cur := *m.listeners.Load()
	idx := slices.Index(cur, l)
	if idx < 0 {
		return
	}
	next := slices.Delete(slices.Clone(cur), idx, idx+1)
	m.listeners.Store(&next)
}

func (m *Manager) notify(fn func(l domain.ManagerListener)) {
	for _, l := range *m.listeners.Load() {
		fn(l)
	}
}
