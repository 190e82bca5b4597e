package sink

import (
	"context"
	"database/sql"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"sync"
	"time"
)

const createReportsTable = `
CREATE TABLE IF NOT EXISTS failure_reports (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id      TEXT NOT NULL,
	job_name    TEXT NOT NULL,
	state       TEXT NOT NULL,
	origin      TEXT NOT NULL,
	message     TEXT NOT NULL,
	error       TEXT NOT NULL,
	reported_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_failure_reports_job_id ON failure_reports(job_id);
`

// StoredReport is a failure report read back from SQLite. The error is kept as text.
type StoredReport struct {
	ID         int64
	JobID      string
	JobName    string
	State      domain.State
	Origin     string
	Message    string
	Error      string
	ReportedAt time.Time
}

// SQLite persists failure reports in a failure_reports table.
type SQLite struct {
	db *sql.DB

	mu     sync.RWMutex
	closed bool
}

var _ domain.FailureSink = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and prepares
// the failure_reports table.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createReportsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// ReportFailure inserts r.
//
// Returns:
//   - ErrSinkClosed after Close.
func (s *SQLite) ReportFailure(r domain.FailureReport) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errs.ErrSinkClosed
	}

	msg := ""
	if r.Err != nil {
		msg = r.Err.Error()
	}
	at := r.Time
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO failure_reports (job_id, job_name, state, origin, message, error, reported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.JobID, r.JobName, string(r.State), r.Origin, r.Message, msg, at.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert failure report: %w", err)
	}
	return nil
}

// Reports returns stored reports in insertion order. A non-empty jobID
// restricts the result to that job.
func (s *SQLite) Reports(ctx context.Context, jobID string) ([]StoredReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errs.ErrSinkClosed
	}

	query := `SELECT id, job_id, job_name, state, origin, message, error, reported_at FROM failure_reports`
	var args []any
	if jobID != "" {
		query += ` WHERE job_id = ?`
		args = append(args, jobID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failure reports: %w", err)
	}
	defer rows.Close()

	var res []StoredReport
	for rows.Next() {
		var (
			r     StoredReport
			state string
			at    int64
		)
		if err := rows.Scan(&r.ID, &r.JobID, &r.JobName, &state, &r.Origin, &r.Message, &r.Error, &at); err != nil {
			return nil, fmt.Errorf("scan failure report: %w", err)
		}
		r.State = domain.State(state)
		r.ReportedAt = time.Unix(0, at)
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close closes the database. Later reports fail with ErrSinkClosed.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
