package monitoring

import (
	"github.com/osmike/jobrun/internal/domain"
	"sync"
)

// Monitoring provides an in-memory, thread-safe implementation of the domain.Monitoring interface.
//
// It keeps the latest snapshot of every job it has seen, keyed by job ID. Register it
// on a job (it is a JobListener) and it refreshes the snapshot on every state change,
// progress step, failure and description update.
// For production scenarios, wrap another domain.Monitoring with NewListener instead.
type Monitoring struct {
	data *sync.Map // Thread-safe storage keyed by JobID, storing job snapshots.
}

var (
	_ domain.Monitoring  = (*Monitoring)(nil)
	_ domain.JobListener = (*Monitoring)(nil)
)

// New creates and initializes a new Monitoring instance.
func New() *Monitoring {
	return &Monitoring{
		data: &sync.Map{},
	}
}

// SaveMetrics stores the snapshot, replacing the previous one for the same job.
//
// Parameters:
//   - s: domain.Snapshot of the job.
func (m *Monitoring) SaveMetrics(s domain.Snapshot) {
	m.data.Store(s.JobID, s)
}

// GetMetrics retrieves all stored job snapshots.
//
// Returns:
//   - A map with JobID as keys and the latest domain.Snapshot of each job.
func (m *Monitoring) GetMetrics() map[string]domain.Snapshot {
	result := make(map[string]domain.Snapshot)
	m.data.Range(func(key, value interface{}) bool {
		result[key.(string)] = value.(domain.Snapshot)
		return true
	})
	return result
}

// Get returns the snapshot stored for one job.
func (m *Monitoring) Get(jobID string) (domain.Snapshot, bool) {
	v, ok := m.data.Load(jobID)
	if !ok {
		return domain.Snapshot{}, false
	}
	return v.(domain.Snapshot), true
}

// Forget drops the snapshot of a job.
func (m *Monitoring) Forget(jobID string) {
	m.data.Delete(jobID)
}

func (m *Monitoring) StateChanged(job domain.Job, _, _ domain.State, _ domain.Command) {
	m.SaveMetrics(job.Snapshot())
}

func (m *Monitoring) ProgressChanged(job domain.Job) { m.SaveMetrics(job.Snapshot()) }

func (m *Monitoring) FailureEmerged(job domain.Job, _ *domain.FailureDescription) {
	m.SaveMetrics(job.Snapshot())
}

func (m *Monitoring) DescriptionChanged(job domain.Job) { m.SaveMetrics(job.Snapshot()) }

// Listener feeds job snapshots into any domain.Monitoring.
type Listener struct {
	mon domain.Monitoring
}

var _ domain.JobListener = (*Listener)(nil)

// NewListener returns a JobListener that saves a snapshot into mon on every event.
func NewListener(mon domain.Monitoring) *Listener {
	return &Listener{mon: mon}
}

func (l *Listener) StateChanged(job domain.Job, _, _ domain.State, _ domain.Command) {
	l.mon.SaveMetrics(job.Snapshot())
}

func (l *Listener) ProgressChanged(job domain.Job) { l.mon.SaveMetrics(job.Snapshot()) }

func (l *Listener) FailureEmerged(job domain.Job, _ *domain.FailureDescription) {
	l.mon.SaveMetrics(job.Snapshot())
}

func (l *Listener) DescriptionChanged(job domain.Job) { l.mon.SaveMetrics(job.Snapshot()) }
