package servebyterange

import (
	"crypto/rand"
	"encoding/hex"
	"mime/multipart"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultContentType is used for resources that do not declare a content type.
const DefaultContentType = "application/octet-stream"

// Resource describes the representation being served.
type Resource struct {
	Size        int64
	ContentType string
	// ETag is the entity tag, with or without surrounding quotes.
	ETag string
}

func (r Resource) contentType() string {
	if r.ContentType == "" {
		return DefaultContentType
	}
	return r.ContentType
}

// Request holds the parsed request headers that take part in negotiation. Empty validator strings mean the header
// was absent.
type Request struct {
	// Ranges are the satisfiable ranges of the Range header, see [ParseRange]. Only used when HasRange is set.
	Ranges   []ByteRange
	HasRange bool

	IfRange     string
	IfNoneMatch string
}

// Option configures negotiation.
type Option func(*options)

type options struct {
	boundary     string
	boundaryFunc func() string
}

// WithBoundary fixes the multipart boundary instead of generating one per response.
func WithBoundary(boundary string) Option {
	return func(o *options) { o.boundary = boundary }
}

// WithBoundaryFunc replaces [RandomBoundary] as the source of multipart boundaries.
func WithBoundaryFunc(f func() string) Option {
	return func(o *options) { o.boundaryFunc = f }
}

// RandomBoundary returns 24 random hex characters.
func RandomBoundary() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("servebyterange: read random boundary: " + err.Error())
	}
	return hex.EncodeToString(buf[:])
}

// Negotiate selects the response for a request on res. The returned body calls source when it is emitted; source
// may be nil when the body never needs resource bytes. An error is only returned when the inputs break their
// contract: a negative size, ranges outside the resource, or an unusable boundary.
func Negotiate(res Resource, req Request, source DataSource, opts ...Option) (ResponseBody, error) {
	o := options{boundaryFunc: RandomBoundary}
	for _, opt := range opts {
		opt(&o)
	}

	if res.Size < 0 {
		return nil, errors.Newf("negative resource size: %d", res.Size)
	}

	switch {
	case req.IfNoneMatch != "" && !req.HasRange && req.IfRange == "" && noneMatchHit(req.IfNoneMatch, res.ETag):
		return &NotModifiedBody{res: res}, nil
	case res.Size == 0:
		return &EmptyBody{res: res}, nil
	case req.HasRange && (req.IfRange == "" || ifRangeHit(req.IfRange, res.ETag)):
		return negotiateRanges(res, req.Ranges, source, o)
	}

	if source == nil {
		return nil, errors.New("no data source for a non-empty resource")
	}
	return &WholeBody{res: res, rangeEmitter: rangeEmitter{
		rng:    ByteRange{Begin: 0, End: res.Size - 1},
		source: source,
	}}, nil
}

func negotiateRanges(res Resource, requested []ByteRange, source DataSource, o options) (ResponseBody, error) {
	for _, r := range requested {
		if err := r.validate(res.Size); err != nil {
			return nil, err
		}
	}

	ranges := Coalesce(requested)
	if len(ranges) == 0 {
		return &UnsatisfiableBody{res: res}, nil
	}

	if source == nil {
		return nil, errors.New("no data source for a range response")
	}
	if len(ranges) == 1 {
		return &SingleRangeBody{res: res, rangeEmitter: rangeEmitter{rng: ranges[0], source: source}}, nil
	}

	boundary := o.boundary
	if boundary == "" {
		boundary = o.boundaryFunc()
	}
	if err := multipart.NewWriter(nil).SetBoundary(boundary); err != nil {
		return nil, errors.Wrapf(err, "multipart boundary %q", boundary)
	}

	return newMultipartBody(res, ranges, boundary, source), nil
}

// quoteETag wraps etag in double quotes unless it already is a quoted strong or weak tag.
func quoteETag(etag string) string {
	if isQuoted(strings.TrimPrefix(etag, "W/")) {
		return etag
	}
	return `"` + etag + `"`
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// ifRangeHit compares an If-Range validator to the current etag. If-Range requires a strong match, so weak tags on
// either side never match.
func ifRangeHit(validator, etag string) bool {
	if etag == "" {
		return false
	}

	current := quoteETag(etag)
	if strings.HasPrefix(current, "W/") || strings.HasPrefix(validator, "W/") {
		return false
	}
	return quoteETag(strings.TrimSpace(validator)) == current
}

// noneMatchHit reports whether any tag of an If-None-Match list matches the current etag using weak comparison.
// A "*" matches any current representation.
func noneMatchHit(list, etag string) bool {
	current := strings.TrimPrefix(quoteETag(etag), "W/")
	for _, tag := range strings.Split(list, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		if etag != "" && tag != "" && strings.TrimPrefix(quoteETag(tag), "W/") == current {
			return true
		}
	}
	return false
}
