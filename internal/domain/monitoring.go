package domain

// Monitoring stores snapshots of job state.
//
// Implementations can persist snapshots in various ways, such as:
// - In-memory storage for debugging and tests.
// - Real-time logging.
// - External dashboards or time-series databases.
type Monitoring interface {
	// SaveMetrics stores the latest snapshot of a job, keyed by Snapshot.JobID.
	SaveMetrics(s Snapshot)

	// GetMetrics returns every stored snapshot keyed by job ID.
	GetMetrics() map[string]Snapshot
}
