// Example: renaming a batch of files with jobrun.
// Demonstrates how to:
//   - Create a manager with a zap logger built from Config
//   - Run a fileops.RenameBatch job with an automatic failure policy
//   - Record snapshots, OpenTelemetry data and failure reports (SQLite + zap)

package main

import (
	"context"
	"fmt"
	"github.com/osmike/jobrun"
	"github.com/osmike/jobrun/fileops"
	"github.com/osmike/jobrun/monitoring"
	"github.com/osmike/jobrun/observability"
	"github.com/osmike/jobrun/sink"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"time"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	dir, err := os.MkdirTemp("", "rename-batch")
	if err != nil {
		logger.Fatal("Failed to create work dir", zap.Error(err))
	}
	defer os.RemoveAll(dir)

	pairs := make([]fileops.Pair, 5)
	for i := range pairs {
		src := filepath.Join(dir, fmt.Sprintf("report-%d.csv", i))
		if err := os.WriteFile(src, []byte("id,value\n"), 0o644); err != nil {
			logger.Fatal("Failed to write input", zap.Error(err))
		}
		pairs[i] = fileops.Pair{Src: src, Dst: filepath.Join(dir, fmt.Sprintf("2024-report-%d.csv", i))}
	}

	reports, err := sink.OpenSQLite(filepath.Join(dir, "failures.db"))
	if err != nil {
		logger.Fatal("Failed to open failure store", zap.Error(err))
	}
	defer reports.Close()

	m, err := jobrun.NewManager(
		jobrun.Config{Name: "files", LogLevel: "debug", Development: true},
		jobrun.WithManagerSink(sink.NewMulti(sink.NewZap(logger), reports)),
		jobrun.WithManagerListener(&jobrun.ManagerListenerFuncs{
			OnAddedToFinished: func(j jobrun.JobView) {
				logger.Info("Job finished", zap.String("job", j.Name()), zap.String("state", string(j.State())))
			},
		}),
	)
	if err != nil {
		logger.Fatal("Failed to create manager", zap.Error(err))
	}

	mon := monitoring.New()
	batch := fileops.NewRenameBatch(pairs,
		fileops.WithAutoResponse(jobrun.OptionRetry),
		fileops.WithLogger(logger),
	)
	j, err := jobrun.NewJob("rename-batch", batch,
		jobrun.WithJobListener(mon, observability.New()),
		jobrun.WithDescription("waiting to start"),
	)
	if err != nil {
		logger.Fatal("Failed to create job", zap.Error(err))
	}

	if err := m.ExecuteJob(j); err != nil {
		logger.Fatal("Failed to execute job", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.Await(ctx); err != nil {
		logger.Fatal("Job did not finish in time", zap.Error(err))
	}

	snap, _ := mon.Get(j.ID())
	logger.Info("Batch done",
		zap.String("state", string(snap.State)),
		zap.Int("percentage", snap.Percentage),
		zap.Any("data", snap.Data),
		zap.Duration("took", snap.EndAt.Sub(snap.StartAt)),
	)

	stored, err := reports.Reports(ctx, "")
	if err != nil {
		logger.Error("Failed to read failure reports", zap.Error(err))
	}
	logger.Info("Failure reports", zap.Int("count", len(stored)))

	if err := m.Shutdown(); err != nil {
		logger.Error("Shutdown refused", zap.Error(err))
	}
}
