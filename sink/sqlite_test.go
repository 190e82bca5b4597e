package sink

import (
	"context"
	"errors"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"github.com/osmike/jobrun/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "failures.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_StoresReports(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	r := testReport(errors.New("disk full"))
	require.NoError(t, s.ReportFailure(r))

	other := testReport(nil)
	other.JobID = "43"
	require.NoError(t, s.ReportFailure(other))

	all, err := s.Reports(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	got := all[0]
	assert.Equal(t, "42", got.JobID)
	assert.Equal(t, "copy", got.JobName)
	assert.Equal(t, domain.Running, got.State)
	assert.Equal(t, "copy#42", got.Origin)
	assert.Equal(t, "disk full", got.Error)
	assert.True(t, r.Time.Equal(got.ReportedAt))
	assert.Empty(t, all[1].Error)

	only, err := s.Reports(ctx, "43")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "43", only[0].JobID)
}

func TestSQLite_ReopenKeepsReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.ReportFailure(testReport(errors.New("x"))))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	all, err := s.Reports(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_Closed(t *testing.T) {
	s := openTestDB(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.ReportFailure(testReport(nil)), errs.ErrSinkClosed)
	_, err := s.Reports(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrSinkClosed)
}

func TestSQLite_ReceivesJobFailure(t *testing.T) {
	s := openTestDB(t)
	j, err := job.New("import", domain.Funcs{
		Step: func(domain.Control) (bool, error) { return false, errors.New("corrupt header") },
	}, job.WithSink(s))
	require.NoError(t, err)

	require.NoError(t, j.Start())

	reports, err := s.Reports(context.Background(), j.ID())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "import", reports[0].JobName)
	assert.Equal(t, domain.Running, reports[0].State)
	assert.Contains(t, reports[0].Error, "corrupt header")
	assert.Equal(t, domain.Aborted, j.State())
}
