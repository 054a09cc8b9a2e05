package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type loggerContextKey struct{}

var defaultEntry = logrus.NewEntry(logrus.StandardLogger())

// SetLoggerOptions applies options to the process-wide default logger
func SetLoggerOptions(optionsFunc func(logger *logrus.Logger)) {
	optionsFunc(logrus.StandardLogger())
}

// NewContextWithFields returns a context carrying a logger entry with the
// given fields attached
func NewContextWithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, For(ctx).WithFields(fields))
}

// For returns the logger entry carried by ctx, or the default entry. A nil
// context is allowed and returns the default entry.
func For(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return defaultEntry
	}
	if entry, ok := ctx.Value(loggerContextKey{}).(*logrus.Entry); ok {
		return entry.WithContext(ctx)
	}
	return defaultEntry.WithContext(ctx)
}

// InitWithDefaults configures the default logger for the given environment
func InitWithDefaults(env string) {
	SetLoggerOptions(func(l *logrus.Logger) {
		if env == "production" {
			l.SetFormatter(&logrus.JSONFormatter{})
			l.SetLevel(logrus.InfoLevel)
			return
		}
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	})
}
