package servebyterange

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// ByteRange is an inclusive interval of byte offsets into a resource.
type ByteRange struct {
	Begin int64
	End   int64
}

// NewByteRange returns the range [begin, end] after checking that it lies within a resource of the given size.
func NewByteRange(begin, end, size int64) (ByteRange, error) {
	r := ByteRange{Begin: begin, End: end}
	if err := r.validate(size); err != nil {
		return ByteRange{}, err
	}

	return r, nil
}

// Size is the number of bytes covered by the range.
func (r ByteRange) Size() int64 { return r.End - r.Begin + 1 }

// Contains reports whether o lies entirely within r.
func (r ByteRange) Contains(o ByteRange) bool {
	return r.Begin <= o.Begin && r.End >= o.End
}

// ContentRange formats the range as a Content-Range header value for a resource of the given size.
func (r ByteRange) ContentRange(size int64) string {
	return "bytes " + r.String() + "/" + strconv.FormatInt(size, 10)
}

func (r ByteRange) String() string {
	return strconv.FormatInt(r.Begin, 10) + "-" + strconv.FormatInt(r.End, 10)
}

func (r ByteRange) validate(size int64) error {
	if r.Begin < 0 || r.Begin > r.End || r.End >= size {
		return errors.Wrapf(ErrInvalidRange, "range %s does not fit a resource of %d bytes", r, size)
	}

	return nil
}

// unsatisfiedContentRange is the Content-Range value of a 416 response.
func unsatisfiedContentRange(size int64) string {
	return "bytes */" + strconv.FormatInt(size, 10)
}
