package app

import (
	"fmt"
	"io"
)

// Logger is the leveled logger handed to application and infrastructure code
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// writerLogger writes every level to output without filtering
type writerLogger struct {
	output io.Writer
}

// NewWriterLogger returns a Logger printing "LEVEL: message" lines to output
func NewWriterLogger(output io.Writer) Logger {
	return &writerLogger{output: output}
}

// NopLogger returns a Logger that drops everything
func NopLogger() Logger {
	return &writerLogger{output: io.Discard}
}

func (l *writerLogger) Debug(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "DEBUG: "+format+"\n", args...)
}

func (l *writerLogger) Info(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "INFO: "+format+"\n", args...)
}

func (l *writerLogger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "WARN: "+format+"\n", args...)
}

func (l *writerLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "ERROR: "+format+"\n", args...)
}
