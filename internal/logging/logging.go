// Package logging builds the zap loggers used by managers and jobs.
package logging

import (
	"github.com/osmike/jobrun/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
	"strings"
)

// New builds a zap logger for cfg.
//
// The level comes from cfg.LogLevel, then the JOBRUN_LOG_LEVEL environment
// variable, then DEFAULT_LOG_LEVEL. Unknown level names fall back to info.
func New(cfg domain.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(Level(cfg.LogLevel))

	name := cfg.Name
	if name == "" {
		name = domain.DEFAULT_MANAGER_NAME
	}

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Named("jobrun").With(zap.String("instance", name)), nil
}

// Level resolves the configured level name.
func Level(raw string) zapcore.Level {
	if strings.TrimSpace(raw) == "" {
		raw = os.Getenv(domain.LOG_LEVEL_ENV)
	}
	return parseLevel(raw)
}

func parseLevel(raw string) zapcore.Level {
	level := strings.TrimSpace(strings.ToLower(raw))
	if level == "" {
		level = domain.DEFAULT_LOG_LEVEL
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}
