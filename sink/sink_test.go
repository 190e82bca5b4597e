package sink

import (
	"errors"
	"github.com/osmike/jobrun/internal/domain"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"testing"
	"time"
)

func testReport(err error) domain.FailureReport {
	return domain.FailureReport{
		Err:     err,
		Origin:  "copy#42",
		Message: `job "copy" failed in state running`,
		JobID:   "42",
		JobName: "copy",
		State:   domain.Running,
		Time:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMulti_ReportsToAll(t *testing.T) {
	var got []string
	first := errors.New("first down")
	second := errors.New("second down")

	m := NewMulti(
		Func(func(domain.FailureReport) error { got = append(got, "a"); return first }),
		nil,
		Func(func(domain.FailureReport) error { got = append(got, "b"); return nil }),
		Func(func(domain.FailureReport) error { got = append(got, "c"); return second }),
	)
	require.Len(t, m, 3)

	err := m.ReportFailure(testReport(errors.New("boom")))
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)

	assert.NoError(t, NewMulti().ReportFailure(testReport(nil)))
}

func TestZap_LogsReport(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := NewZap(zap.New(core))

	require.NoError(t, s.ReportFailure(testReport(errors.New("disk full"))))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, `job "copy" failed in state running`, entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "disk full", fields["error"])
	assert.Equal(t, "42", fields["job_id"])
	assert.Equal(t, "copy#42", fields["origin"])
	assert.Equal(t, "running", fields["state"])
}

func TestLogrus_LogsReport(t *testing.T) {
	l, hook := logtest.NewNullLogger()
	s := NewLogrus(l)

	require.NoError(t, s.ReportFailure(testReport(errors.New("disk full"))))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, `job "copy" failed in state running`, entry.Message)
	assert.Equal(t, "copy", entry.Data["job_name"])
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "disk full")
}
