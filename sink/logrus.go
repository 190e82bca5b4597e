package sink

import (
	"github.com/osmike/jobrun/internal/domain"
	"github.com/sirupsen/logrus"
)

// Logrus logs failure reports through a logrus logger, for applications
// that already log with logrus.
type Logrus struct {
	logger logrus.FieldLogger
}

var _ domain.FailureSink = (*Logrus)(nil)

// NewLogrus returns a sink writing to l. A nil logger falls back to the
// logrus standard logger.
func NewLogrus(l logrus.FieldLogger) *Logrus {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Logrus{logger: l}
}

func (s *Logrus) ReportFailure(r domain.FailureReport) error {
	s.logger.WithFields(logrus.Fields{
		"origin":   r.Origin,
		"job_id":   r.JobID,
		"job_name": r.JobName,
		"state":    string(r.State),
		"time":     r.Time,
	}).WithError(r.Err).Error(r.Message)
	return nil
}
