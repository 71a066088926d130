package servebyterange

import (
	"context"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Lookup resolves the resource a request targets together with the data source for its bytes. Errors that wrap an
// [*Error] are answered with its code; any other error is logged and answered with 500.
type Lookup func(r *http.Request) (Resource, DataSource, error)

// Handler serves GET and HEAD requests for the resources found by lookup, honouring Range, If-Range and
// If-None-Match. Once the status line is written a failing body can no longer be reported to the client: the
// error is logged and the connection aborted so the client never mistakes a short body for a complete one.
func Handler(lookup Lookup, logs Logger, opts ...Option) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, CodeMethodNotAllowed)
			return
		}

		res, source, err := lookup(r)
		if err != nil {
			code := CodeOf(err)
			if code == CodeUnknown {
				logs.LogLookupError(err)
				code = CodeInternalServerError
			}
			writeError(w, code)
			return
		}

		body, err := Negotiate(res, RequestFromHTTP(r, res.Size), source, opts...)
		if err != nil {
			logs.LogLookupError(errors.Wrapf(err, "negotiate %s", r.URL.Path))
			writeError(w, CodeInternalServerError)
			return
		}

		body.Header().Apply(w.Header())
		w.WriteHeader(body.Status())
		if r.Method == http.MethodHead {
			return
		}

		if err := body.Emit(r.Context(), w); err != nil {
			if !errors.Is(err, context.Canceled) {
				logs.LogEmitError(errors.Wrapf(err, "emit %s", r.URL.Path))
			}
			panic(http.ErrAbortHandler)
		}
	})
}

// RequestFromHTTP extracts the negotiation inputs from r. A malformed Range header is treated as absent, and ranges
// are only considered for GET requests.
func RequestFromHTTP(r *http.Request, size int64) Request {
	req := Request{
		IfRange:     r.Header.Get(HeaderIfRange),
		IfNoneMatch: r.Header.Get(HeaderIfNoneMatch),
	}

	if hdr := r.Header.Get(HeaderRange); hdr != "" && r.Method == http.MethodGet {
		if ranges, err := ParseRange(hdr, size); err == nil {
			req.Ranges, req.HasRange = ranges, true
		}
	}
	return req
}

// ReaderAtSource serves ranges by reading them from ra.
func ReaderAtSource(ra io.ReaderAt) DataSource {
	return func(_ context.Context, r ByteRange, w io.Writer) error {
		_, err := io.Copy(w, io.NewSectionReader(ra, r.Begin, r.Size()))
		return err
	}
}

func writeError(w http.ResponseWriter, code Code) {
	http.Error(w, http.StatusText(int(code)), int(code))
}
