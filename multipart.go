package servebyterange

import (
	"context"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// MultipartBody serves two or more ranges as a multipart/byteranges document with status 206.
type MultipartBody struct {
	res      Resource
	ranges   []ByteRange
	boundary string
	source   DataSource
	length   int64
}

func newMultipartBody(res Resource, ranges []ByteRange, boundary string, source DataSource) *MultipartBody {
	b := &MultipartBody{res: res, ranges: ranges, boundary: boundary, source: source}
	b.length = b.envelopeSize()
	return b
}

func (b *MultipartBody) Status() int          { return http.StatusPartialContent }
func (b *MultipartBody) ContentLength() int64 { return b.length }
func (b *MultipartBody) Header() Header {
	return baseHeader(b.res, b.length, HeaderField{
		headerContentType,
		mime.FormatMediaType("multipart/byteranges", map[string]string{"boundary": b.boundary}),
	})
}

// Ranges returns the served ranges in the order they are emitted.
func (b *MultipartBody) Ranges() []ByteRange { return slices.Clone(b.ranges) }

// Boundary returns the delimiter between parts.
func (b *MultipartBody) Boundary() string { return b.boundary }

// Emit writes every part header followed by the part's bytes, then the closing delimiter.
func (b *MultipartBody) Emit(ctx context.Context, w io.Writer) error {
	for i, r := range b.ranges {
		if err := b.writePartHeader(w, i, r); err != nil {
			return errors.Wrapf(err, "write header of part %d", i)
		}
		if err := emitRange(ctx, w, r, b.source); err != nil {
			return err
		}
	}

	if err := b.writeTrailer(w); err != nil {
		return errors.Wrap(err, "write closing delimiter")
	}
	return nil
}

// envelopeSize renders the headers and trailer into a counting writer, so the advertised length is produced by
// the same code that emits the body.
func (b *MultipartBody) envelopeSize() int64 {
	var cw countingWriter
	for i, r := range b.ranges {
		_ = b.writePartHeader(&cw, i, r)
	}
	_ = b.writeTrailer(&cw)

	return int64(cw) + lo.SumBy(b.ranges, func(r ByteRange) int64 { return r.Size() })
}

func (b *MultipartBody) writePartHeader(w io.Writer, i int, r ByteRange) error {
	var sb strings.Builder
	if i > 0 {
		sb.WriteString("\r\n")
	}
	sb.WriteString("--" + b.boundary + "\r\n")
	sb.WriteString(headerContentType + ": " + b.res.contentType() + "\r\n")
	sb.WriteString(headerContentRange + ": " + r.ContentRange(b.res.Size) + "\r\n")
	sb.WriteString("\r\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func (b *MultipartBody) writeTrailer(w io.Writer) error {
	_, err := io.WriteString(w, "\r\n--"+b.boundary+"--\r\n")
	return err
}

type countingWriter int64

func (w *countingWriter) Write(p []byte) (int, error) {
	*w += countingWriter(len(p))
	return len(p), nil
}
