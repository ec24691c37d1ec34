package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Logger is the logging surface used by the converter and the UI.
// args may hold errors or key/value maps and are printed after msg.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type StdLogger struct {
	std   *log.Logger
	debug bool
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger, debug bool) *StdLogger {
	return &StdLogger{std: std, debug: debug}
}

// Discard drops everything; used by tests and when no log file is set.
func Discard() *StdLogger {
	return NewStdLogger(log.New(io.Discard, "", 0), false)
}

func (l *StdLogger) print(level, msg string, args []interface{}) {
	var s strings.Builder
	s.WriteString(level)
	s.WriteString(" ")
	s.WriteString(msg)
	for _, arg := range args {
		s.WriteString(fmt.Sprintf(" %+v", arg))
	}
	l.std.Println(s.String())
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l *StdLogger) Info(msg string, args ...interface{}) {
	l.print("INFO", msg, args)
}

func (l *StdLogger) Warn(msg string, args ...interface{}) {
	l.print("WARN", msg, args)
}

func (l *StdLogger) Error(msg string, args ...interface{}) {
	l.print("ERROR", msg, args)
}
