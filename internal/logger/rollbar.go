package logger

import (
	"github.com/rollbar/rollbar-go"
)

// RollbarLogger reports warnings and errors to Rollbar and mirrors every
// message to the wrapped logger.
type RollbarLogger struct {
	next Logger
}

var _ Logger = (*RollbarLogger)(nil)

type RollbarOptions struct {
	Token       string
	Environment string
	CodeVersion string
}

func NewRollbarLogger(next Logger, opts RollbarOptions) *RollbarLogger {
	rollbar.SetToken(opts.Token)
	rollbar.SetEnvironment(opts.Environment)
	rollbar.SetCodeVersion(opts.CodeVersion)
	return &RollbarLogger{next: next}
}

// Close flushes queued reports. Call before the process exits.
func (l *RollbarLogger) Close() {
	rollbar.Wait()
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.next.Debug(msg, args...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.next.Info(msg, args...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(append([]interface{}{msg}, args...)...)
	l.next.Warn(msg, args...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(append([]interface{}{msg}, args...)...)
	l.next.Error(msg, args...)
}
