package servebyterange_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	sbr "github.com/julik/serve-byte-range"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup(r *http.Request) (sbr.Resource, sbr.DataSource, error) {
	switch r.URL.Path {
	case "/file.txt":
		return testResource(), sbr.ReaderAtSource(bytes.NewReader(testData())), nil
	case "/broken":
		return sbr.Resource{}, nil, errors.New("storage unreachable")
	case "/liar":
		return testResource(), func(_ context.Context, r sbr.ByteRange, w io.Writer) error {
			_, err := w.Write(make([]byte, r.Size()-1))
			return err
		}, nil
	default:
		return sbr.Resource{}, nil, sbr.NewError(sbr.CodeNotFound, errors.Newf("no such file: %s", r.URL.Path))
	}
}

func serve(t *testing.T, h http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	rec, req := httptest.NewRecorder(), httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGet(t *testing.T) {
	logs := sbr.NewTestLogger(t)
	h := sbr.Handler(testLookup, logs, sbr.WithBoundary("azuleju"))
	data := testData()

	t.Run("whole", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/file.txt", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "474", rec.Header().Get("Content-Length"))
		require.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
		require.Equal(t, data, rec.Body.Bytes())
	})

	t.Run("single range", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/file.txt", map[string]string{"Range": "bytes=4-9"})
		require.Equal(t, http.StatusPartialContent, rec.Code)
		require.Equal(t, "bytes 4-9/474", rec.Header().Get("Content-Range"))
		require.Equal(t, data[4:10], rec.Body.Bytes())
	})

	t.Run("multiple ranges", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/file.txt", map[string]string{"Range": "bytes=-2,1-2"})
		require.Equal(t, http.StatusPartialContent, rec.Code)
		require.Equal(t, "multipart/byteranges; boundary=azuleju", rec.Header().Get("Content-Type"))

		rd := multipart.NewReader(rec.Body, "azuleju")
		p, err := rd.NextPart()
		require.NoError(t, err)
		require.Equal(t, "bytes 472-473/474", p.Header.Get("Content-Range"))
		got, err := io.ReadAll(p)
		require.NoError(t, err)
		require.Equal(t, data[472:], got)
	})

	t.Run("unsatisfiable", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/file.txt", map[string]string{"Range": "bytes=474-"})
		require.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
		require.Equal(t, "bytes */474", rec.Header().Get("Content-Range"))
		require.Zero(t, rec.Body.Len())
	})

	t.Run("malformed range is ignored", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/file.txt", map[string]string{"Range": "bytes=9-4"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, data, rec.Body.Bytes())
	})

	t.Run("stale if-range", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/file.txt", map[string]string{"Range": "bytes=4-9", "If-Range": `"v0"`})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Content-Range"))
		require.Equal(t, data, rec.Body.Bytes())
	})

	t.Run("not modified", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/file.txt", map[string]string{"If-None-Match": `"v1"`})
		require.Equal(t, http.StatusNotModified, rec.Code)
		require.Equal(t, `"v1"`, rec.Header().Get("ETag"))
		require.Zero(t, rec.Body.Len())
	})

	require.Zero(t, logs.NumLogLookupError)
	require.Zero(t, logs.NumLogEmitError)
}

func TestHandlerHead(t *testing.T) {
	h := sbr.Handler(testLookup, sbr.NewTestLogger(t))

	rec := serve(t, h, http.MethodHead, "/file.txt", map[string]string{"Range": "bytes=4-9"})
	require.Equal(t, http.StatusOK, rec.Code, "ranges only apply to GET")
	require.Equal(t, "474", rec.Header().Get("Content-Length"))
	require.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	require.Zero(t, rec.Body.Len())
}

func TestHandlerErrors(t *testing.T) {
	t.Run("method not allowed", func(t *testing.T) {
		rec := serve(t, sbr.Handler(testLookup, sbr.NewTestLogger(t)), http.MethodPost, "/file.txt", nil)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		require.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
	})

	t.Run("lookup with code", func(t *testing.T) {
		logs := sbr.NewTestLogger(t)
		rec := serve(t, sbr.Handler(testLookup, logs), http.MethodGet, "/missing", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "Not Found\n", rec.Body.String())
		require.Zero(t, logs.NumLogLookupError)
	})

	t.Run("lookup without code", func(t *testing.T) {
		logs := sbr.NewTestLogger(t)
		rec := serve(t, sbr.Handler(testLookup, logs), http.MethodGet, "/broken", nil)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, int64(1), logs.NumLogLookupError)
	})

	t.Run("data source breaks its contract", func(t *testing.T) {
		logs := sbr.NewTestLogger(t)
		h := sbr.Handler(testLookup, logs)

		require.PanicsWithValue(t, http.ErrAbortHandler, func() {
			serve(t, h, http.MethodGet, "/liar", nil)
		})
		assert.Equal(t, int64(1), logs.NumLogEmitError)

		emitErrs := logs.EmitErrors()
		require.Len(t, emitErrs, 1)
		var under *sbr.RangeUnderrunError
		require.ErrorAs(t, emitErrs[0], &under)
		require.ErrorIs(t, emitErrs[0], sbr.ErrByteCountMismatch)
	})
}

func TestHandlerOverHTTP(t *testing.T) {
	srv := httptest.NewServer(sbr.Handler(testLookup, sbr.NewTestLogger(t)))
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/file.txt", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=100-199")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	require.Equal(t, int64(100), resp.ContentLength)
	require.Equal(t, testData()[100:200], body)
}
