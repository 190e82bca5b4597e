// Package sink provides FailureSink implementations that receive the errors
// a job's behavior lets escape.
//
// A job reports at most one failure per run. Sinks are called on the job's
// worker goroutine after the job has been cancelled, so they may block
// without holding up state transitions.
package sink

import (
	"github.com/osmike/jobrun/internal/domain"
	"go.uber.org/multierr"
)

// Multi fans a report out to several sinks.
type Multi []domain.FailureSink

var _ domain.FailureSink = Multi(nil)

// NewMulti returns a sink forwarding to every non-nil sink in order.
func NewMulti(sinks ...domain.FailureSink) Multi {
	m := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

// ReportFailure forwards r to every sink, even after one of them fails.
//
// Returns:
//   - The errors of all failing sinks combined with multierr.
func (m Multi) ReportFailure(r domain.FailureReport) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.ReportFailure(r))
	}
	return err
}

// Func adapts a function to FailureSink.
type Func func(r domain.FailureReport) error

func (f Func) ReportFailure(r domain.FailureReport) error { return f(r) }
