package servebyterange

import (
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about failures that cannot be reported to the client.
type Logger interface {
	LogLookupError(err error)
	LogEmitError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogLookupError(err error) {
	l.Logger.Printf("servebyterange: unhandled lookup error: %s", err)
}

func (l stdLogger) LogEmitError(err error) {
	l.Logger.Printf("servebyterange: error while emitting body: %s", err)
}

// NewStdLogger logs to l, or to the standard logger when l is nil.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}
	return stdLogger{l}
}

// TestLogger logs to a test and counts what it saw. Emit errors are kept so tests can tell a data source that
// broke its byte count from one that simply failed.
type TestLogger struct {
	tb testing.TB

	NumLogLookupError int64
	NumLogEmitError   int64

	mu         sync.Mutex
	emitErrors []error
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogLookupError(err error) {
	atomic.AddInt64(&l.NumLogLookupError, 1)
	l.tb.Logf("servebyterange: unhandled lookup error: %s", err)
}

func (l *TestLogger) LogEmitError(err error) {
	atomic.AddInt64(&l.NumLogEmitError, 1)
	l.mu.Lock()
	l.emitErrors = append(l.emitErrors, err)
	l.mu.Unlock()
	l.tb.Logf("servebyterange: error while emitting body: %s", err)
}

// EmitErrors returns the emit errors logged so far, oldest first.
func (l *TestLogger) EmitErrors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.emitErrors)
}

var _ Logger = &TestLogger{}
