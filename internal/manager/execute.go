package manager

import (
	"github.com/osmike/jobrun/internal/job"
	"go.uber.org/zap"
	"runtime/debug"
)

// execute runs j on a new goroutine and keeps the worker count for Await.
//
// Job.Run absorbs errors raised by the behavior. The recover here only
// catches panics from listeners or sinks invoked after the job's own
// recovery, so a faulty observer cannot take the process down.
func (m *Manager) execute(j *job.Job) {
	m.mu.Lock()
	if m.running == 0 {
		m.idle = make(chan struct{})
	}
	m.running++
	m.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("job worker panicked",
					zap.String("job_id", j.ID()),
					zap.String("job_name", j.Name()),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
			}

			m.mu.Lock()
			m.running--
			if m.running == 0 {
				close(m.idle)
			}
			m.mu.Unlock()
		}()

		j.Run()
	}()
}
