package servebyterange

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// DataSource writes the bytes of range r of the resource to w. It is invoked once per range segment while a
// [ResponseBody] is emitted and must write exactly r.Size() bytes. It may block.
type DataSource func(ctx context.Context, r ByteRange, w io.Writer) error

// ResponseBody describes a fully resolved response. Status, content length and headers are known before any
// resource byte is read; Emit streams the body.
type ResponseBody interface {
	Status() int
	ContentLength() int64
	Header() Header
	Emit(ctx context.Context, w io.Writer) error
}

// HeaderField is a single response header.
type HeaderField struct {
	Name  string
	Value string
}

// Header is an ordered set of response headers.
type Header []HeaderField

// Get returns the value of the named header, or the empty string. Names are matched case-insensitively.
func (h Header) Get(name string) string {
	f, _ := lo.Find(h, func(f HeaderField) bool { return strings.EqualFold(f.Name, name) })
	return f.Value
}

// Names returns the header names in order.
func (h Header) Names() []string {
	return lo.Map(h, func(f HeaderField, _ int) string { return f.Name })
}

// Apply sets every header on dst, replacing existing values.
func (h Header) Apply(dst http.Header) {
	for _, f := range h {
		dst.Set(f.Name, f.Value)
	}
}

const (
	headerAcceptRanges  = "Accept-Ranges"
	headerContentLength = "Content-Length"
	headerContentType   = "Content-Type"
	headerContentRange  = "Content-Range"
	headerETag          = "ETag"
)

// baseHeader starts every header set: Accept-Ranges and Content-Length, then the given fields, then the ETag.
func baseHeader(res Resource, length int64, fields ...HeaderField) Header {
	h := make(Header, 0, len(fields)+3)
	h = append(h,
		HeaderField{headerAcceptRanges, "bytes"},
		HeaderField{headerContentLength, strconv.FormatInt(length, 10)},
	)
	h = append(h, fields...)
	if res.ETag != "" {
		h = append(h, HeaderField{headerETag, quoteETag(res.ETag)})
	}
	return h
}

// rangeEmitter streams one range of the resource. Whole and single range bodies are both built on it.
type rangeEmitter struct {
	rng    ByteRange
	source DataSource
}

func (e rangeEmitter) emit(ctx context.Context, w io.Writer) error {
	return emitRange(ctx, w, e.rng, e.source)
}

// emitRange runs the data source for r behind a BoundedWriter and verifies the byte count afterwards.
func emitRange(ctx context.Context, w io.Writer, r ByteRange, source DataSource) error {
	bw := NewBoundedWriter(w, r.Size())
	if err := source(ctx, r, bw); err != nil {
		if bw.overrun != nil && !errors.Is(err, ErrByteCountMismatch) {
			err = errors.WithSecondaryError(bw.overrun, err)
		}
		return errors.Wrapf(err, "data source for range %s", r)
	}

	if err := bw.Verify(); err != nil {
		return errors.Wrapf(err, "emit range %s", r)
	}
	return nil
}

// WholeBody serves the complete resource with status 200.
type WholeBody struct {
	res Resource
	rangeEmitter
}

func (b *WholeBody) Status() int          { return http.StatusOK }
func (b *WholeBody) ContentLength() int64 { return b.res.Size }
func (b *WholeBody) Header() Header {
	return baseHeader(b.res, b.ContentLength(), HeaderField{headerContentType, b.res.contentType()})
}

func (b *WholeBody) Emit(ctx context.Context, w io.Writer) error { return b.emit(ctx, w) }

// SingleRangeBody serves one range of the resource with status 206.
type SingleRangeBody struct {
	res Resource
	rangeEmitter
}

func (b *SingleRangeBody) Status() int          { return http.StatusPartialContent }
func (b *SingleRangeBody) ContentLength() int64 { return b.rng.Size() }
func (b *SingleRangeBody) Header() Header {
	return baseHeader(b.res, b.ContentLength(),
		HeaderField{headerContentType, b.res.contentType()},
		HeaderField{headerContentRange, b.rng.ContentRange(b.res.Size)},
	)
}

func (b *SingleRangeBody) Emit(ctx context.Context, w io.Writer) error { return b.emit(ctx, w) }

// Range returns the range that is served.
func (b *SingleRangeBody) Range() ByteRange { return b.rng }

// EmptyBody serves a zero length resource. Like [NotModifiedBody] it carries no Content-Type.
type EmptyBody struct{ res Resource }

func (b *EmptyBody) Status() int                           { return http.StatusOK }
func (b *EmptyBody) ContentLength() int64                  { return 0 }
func (b *EmptyBody) Header() Header                        { return baseHeader(b.res, 0) }
func (b *EmptyBody) Emit(context.Context, io.Writer) error { return nil }

// NotModifiedBody answers a matching If-None-Match with status 304.
type NotModifiedBody struct{ res Resource }

func (b *NotModifiedBody) Status() int                           { return http.StatusNotModified }
func (b *NotModifiedBody) ContentLength() int64                  { return 0 }
func (b *NotModifiedBody) Header() Header                        { return baseHeader(b.res, 0) }
func (b *NotModifiedBody) Emit(context.Context, io.Writer) error { return nil }

// UnsatisfiableBody answers a range request none of whose ranges overlap the resource, with status 416.
type UnsatisfiableBody struct{ res Resource }

func (b *UnsatisfiableBody) Status() int          { return http.StatusRequestedRangeNotSatisfiable }
func (b *UnsatisfiableBody) ContentLength() int64 { return 0 }
func (b *UnsatisfiableBody) Header() Header {
	return baseHeader(b.res, 0,
		HeaderField{headerContentType, b.res.contentType()},
		HeaderField{headerContentRange, unsatisfiedContentRange(b.res.Size)},
	)
}

func (b *UnsatisfiableBody) Emit(context.Context, io.Writer) error { return nil }

var (
	_ ResponseBody = (*WholeBody)(nil)
	_ ResponseBody = (*SingleRangeBody)(nil)
	_ ResponseBody = (*MultipartBody)(nil)
	_ ResponseBody = (*EmptyBody)(nil)
	_ ResponseBody = (*NotModifiedBody)(nil)
	_ ResponseBody = (*UnsatisfiableBody)(nil)
)
