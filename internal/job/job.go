package job

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"github.com/osmike/jobrun/internal/gate"
	"go.uber.org/zap"
	"sync"
	"sync/atomic"
	"time"
)

// Executor runs started jobs on its own goroutines. The manager implements it.
type Executor interface {
	// ExecuteJob takes over a job. See manager.Manager.ExecuteJob.
	ExecuteJob(j *Job) error

	// FailureSink returns the sink used for jobs that have none of their own.
	FailureSink() domain.FailureSink
}

type executorRef struct {
	exec Executor
}

// Job is one instance of interruptible, optionally undoable work driven by a
// command-based state machine.
//
// Transitions and their StateChanged/FailureEmerged notifications are
// serialised by a per-job mutex. Read accessors never take that mutex, so
// listeners may call them while being notified.
type Job struct {
	id       uuid.UUID
	name     string
	behavior domain.Behavior
	logger   *zap.Logger
	sink     domain.FailureSink

	// mu serialises transitions, gate updates and the notifications they trigger.
	mu sync.Mutex

	state *state

	// gate is closed while the current state is not runnable.
	gate *gate.Gate

	manager atomic.Pointer[executorRef]

	description atomic.Pointer[string]
	failure     atomic.Pointer[domain.FailureDescription]

	listenersMu sync.Mutex
	listeners   atomic.Pointer[[]domain.JobListener]

	// data stores runtime key-value pairs saved by the behavior.
	data sync.Map

	// ran guards against executing Run more than once.
	ran atomic.Bool
}

// Option configures a Job at construction.
type Option func(*Job)

// WithLogger sets the zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(j *Job) {
		if l != nil {
			j.logger = l
		}
	}
}

// WithSink sets the sink that receives unexpected failures. Without one the
// manager's sink is used, if any.
func WithSink(s domain.FailureSink) Option {
	return func(j *Job) { j.sink = s }
}

// WithListener registers listeners before the job can emit any event.
func WithListener(ls ...domain.JobListener) Option {
	return func(j *Job) {
		for _, l := range ls {
			j.AddListener(l)
		}
	}
}

// WithDescription sets the initial description.
func WithDescription(desc string) Option {
	return func(j *Job) { j.description.Store(&desc) }
}

// WithManager attaches the job to an executor; Start then hands it over instead of running inline.
func WithManager(m Executor) Option {
	return func(j *Job) {
		if m != nil {
			j.manager.Store(&executorRef{exec: m})
		}
	}
}

// New creates a job in the Preparing state.
//
// Parameters:
//   - name: Human readable, immutable job name. Must not be empty.
//   - behavior: The unit of work. Must not be nil.
//
// Returns:
//   - The job, or ErrEmptyName / ErrNilBehavior.
func New(name string, behavior domain.Behavior, opts ...Option) (*Job, error) {
	if name == "" {
		return nil, errs.ErrEmptyName
	}
	if behavior == nil {
		return nil, errs.New(errs.ErrNilBehavior, name)
	}

	j := &Job{
		id:       uuid.New(),
		name:     name,
		behavior: behavior,
		logger:   zap.NewNop(),
		state:    newState(),
		gate:     gate.New(),
	}
	empty := []domain.JobListener{}
	j.listeners.Store(&empty)

	for _, opt := range opts {
		opt(j)
	}

	j.logger = j.logger.Named("job").With(
		zap.String("job_id", j.id.String()),
		zap.String("job_name", j.name),
	)
	return j, nil
}

// ID returns the job's UUID in string form.
func (j *Job) ID() string { return j.id.String() }

// UUID returns the job's identifier.
func (j *Job) UUID() uuid.UUID { return j.id }

// Name returns the job name.
func (j *Job) Name() string { return j.name }

// State returns the current state.
func (j *Job) State() domain.State { return j.state.get() }

// StartedAt returns when the job left Preparing, zero if it has not.
func (j *Job) StartedAt() time.Time { return j.state.startedAt() }

// EndedAt returns when the job first reached a final state, zero if it has not.
func (j *Job) EndedAt() time.Time { return j.state.endedAt() }

// Description returns the description text.
func (j *Job) Description() string {
	if d := j.description.Load(); d != nil {
		return *d
	}
	return ""
}

// FailureDescription returns the last recoverable failure raised by the behavior.
func (j *Job) FailureDescription() *domain.FailureDescription {
	return j.failure.Load()
}

// Percentage returns the behavior's progress estimate.
func (j *Job) Percentage() int {
	p := j.behavior.Percentage()
	switch {
	case p < domain.UNKNOWN_PERCENTAGE:
		return domain.UNKNOWN_PERCENTAGE
	case p > 100:
		return 100
	}
	return p
}

// SupportsRollback reports whether the behavior can revert its effects.
func (j *Job) SupportsRollback() bool { return j.behavior.SupportsRollback() }

// Behavior returns the unit of work the job executes.
func (j *Job) Behavior() domain.Behavior { return j.behavior }

// Manager returns the executor the job is attached to, nil when it runs inline.
func (j *Job) Manager() Executor {
	if ref := j.manager.Load(); ref != nil {
		return ref.exec
	}
	return nil
}

// SetManager attaches the job to m.
//
// Returns:
//   - ErrIllegalState if the job is no longer Preparing.
//   - ErrAlreadyManaged if it is attached to a different executor.
func (j *Job) SetManager(m Executor) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if s := j.State(); s != domain.Preparing {
		return errs.New(errs.ErrIllegalState, fmt.Sprintf("job %q: manager can only change while preparing, state is %s", j.name, s))
	}
	if cur := j.Manager(); cur != nil && cur != m {
		return errs.New(errs.ErrAlreadyManaged, j.name)
	}
	j.manager.Store(&executorRef{exec: m})
	return nil
}

// Snapshot copies the observable state for monitoring.
func (j *Job) Snapshot() domain.Snapshot {
	s := domain.Snapshot{
		JobID:       j.ID(),
		Name:        j.name,
		State:       j.State(),
		Percentage:  j.Percentage(),
		Description: j.Description(),
		StartAt:     j.StartedAt(),
		EndAt:       j.EndedAt(),
		Data:        j.Data(),
	}
	if f := j.FailureDescription(); f != nil {
		s.Failure = f.Message()
	}
	return s
}

func (j *Job) String() string {
	return fmt.Sprintf("%s#%s", j.name, j.id)
}
