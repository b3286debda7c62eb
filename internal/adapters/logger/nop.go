package logger

import "github.com/baditaflorin/go_text_compare/internal/ports"

// NopLogger discards everything. Useful in tests and benchmarks where
// log output would only add noise.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() ports.Logger {
	return NopLogger{}
}

func (NopLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (NopLogger) Info(msg string, keysAndValues ...interface{}) {}

func (NopLogger) Warn(msg string, keysAndValues ...interface{}) {}

func (NopLogger) Error(msg string, keysAndValues ...interface{}) {}

func (NopLogger) Close() error { return nil }
