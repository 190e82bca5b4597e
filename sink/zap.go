package sink

import (
	"github.com/osmike/jobrun/internal/domain"
	"go.uber.org/zap"
)

// Zap logs failure reports at error level.
type Zap struct {
	logger *zap.Logger
}

var _ domain.FailureSink = (*Zap)(nil)

// NewZap returns a sink writing to l. A nil logger falls back to zap.L().
func NewZap(l *zap.Logger) *Zap {
	if l == nil {
		l = zap.L()
	}
	return &Zap{logger: l.Named("failures")}
}

func (z *Zap) ReportFailure(r domain.FailureReport) error {
	z.logger.Error(r.Message,
		zap.Error(r.Err),
		zap.String("origin", r.Origin),
		zap.String("job_id", r.JobID),
		zap.String("job_name", r.JobName),
		zap.String("state", string(r.State)),
		zap.Time("time", r.Time),
	)
	return nil
}
