// Package testutil provides shared helpers for package tests.
package testutil

import (
	"bytes"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestLogger is a logrus logger that captures output for assertions.
type TestLogger struct {
	t      *testing.T
	logger *logrus.Logger
	buffer *safeBuffer
}

// safeBuffer guards the capture buffer so concurrent test goroutines
// can log while the test body reads.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewTestLogger creates a logger that records everything at trace level.
func NewTestLogger(t *testing.T) *TestLogger {
	buffer := &safeBuffer{}
	logger := logrus.New()
	logger.SetOutput(buffer)
	logger.SetLevel(logrus.TraceLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp:   true,
	})

	return &TestLogger{
		t:      t,
		logger: logger,
		buffer: buffer,
	}
}

// Logger returns the underlying logger.
func (l *TestLogger) Logger() *logrus.Logger {
	return l.logger
}

// Entry returns an entry tagged with a target field, the shape
// component loggers use.
func (l *TestLogger) Entry(target string) *logrus.Entry {
	return l.logger.WithField("target", target)
}

// String returns the captured log contents.
func (l *TestLogger) String() string {
	return l.buffer.String()
}
