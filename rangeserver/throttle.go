package rangeserver

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"
)

// WithThrottle limits every response to bytesPerSecond. Each response gets its own limiter with a burst of one
// second worth of bytes. A non-positive rate disables throttling.
func WithThrottle(bytesPerSecond int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if bytesPerSecond <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&throttledWriter{
				ResponseWriter: w,
				ctx:            r.Context(),
				limiter:        rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond),
			}, r)
		})
	}
}

type throttledWriter struct {
	http.ResponseWriter
	ctx     context.Context //nolint:containedctx
	limiter *rate.Limiter
}

// Write waits for the limiter in chunks of at most one burst.
func (w *throttledWriter) Write(p []byte) (int, error) {
	var written int
	for len(p) > 0 {
		n := min(len(p), w.limiter.Burst())
		if err := w.limiter.WaitN(w.ctx, n); err != nil {
			return written, err
		}

		m, err := w.ResponseWriter.Write(p[:n])
		written += m
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *throttledWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
