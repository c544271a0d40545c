package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applogger "tagging/pkg/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// queryLogger sends gorm's query trace to the application logger. Missing
// records are expected by get-or-create and are not reported as errors.
type queryLogger struct {
	log     *applogger.Logger
	level   logger.LogLevel
	slow    time.Duration
	verbose bool
}

func newQueryLogger(log *applogger.Logger, verbose bool) *queryLogger {
	return &queryLogger{
		log:     log,
		level:   logger.Warn,
		slow:    slowQueryThreshold,
		verbose: verbose,
	}
}

func (l *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *queryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		query, _ := fc()
		l.log.LogDBQuery(ctx, query, elapsed, err)
	case elapsed > l.slow && l.level >= logger.Warn:
		query, _ := fc()
		l.log.LogSlowQuery(ctx, query, elapsed)
	case l.verbose:
		query, _ := fc()
		l.log.LogDBQuery(ctx, query, elapsed, nil)
	}
}
