package servebyterange

import (
	"io"
)

// BoundedWriter forwards writes to an underlying writer while holding the writer of those bytes to an exact byte
// count. It is handed to a [DataSource] for a single range segment.
type BoundedWriter struct {
	w       io.Writer
	limit   int64
	written int64
	overrun error
}

// NewBoundedWriter returns a writer that accepts exactly limit bytes for w.
func NewBoundedWriter(w io.Writer, limit int64) *BoundedWriter {
	return &BoundedWriter{w: w, limit: limit}
}

// Write forwards p verbatim. Writes that would take the total past the limit fail with a [*RangeOverrunError]
// and forward nothing.
func (b *BoundedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if attempted := b.written + int64(len(p)); attempted > b.limit {
		err := &RangeOverrunError{Limit: b.limit, Attempted: attempted}
		if b.overrun == nil {
			b.overrun = err
		}
		return 0, err
	}

	n, err := b.w.Write(p)
	b.written += int64(n)
	return n, err
}

// Verify is called once the data source returned. It reports the first overrun, even if the data source chose to
// ignore it, or a [*RangeUnderrunError] if fewer than limit bytes were written.
func (b *BoundedWriter) Verify() error {
	if b.overrun != nil {
		return b.overrun
	}
	if b.written != b.limit {
		return &RangeUnderrunError{Limit: b.limit, Written: b.written}
	}
	return nil
}

// Written returns the number of bytes accepted by the underlying writer so far.
func (b *BoundedWriter) Written() int64 { return b.written }

// Limit returns the exact number of bytes this writer expects.
func (b *BoundedWriter) Limit() int64 { return b.limit }

var _ io.Writer = (*BoundedWriter)(nil)
