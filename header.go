package servebyterange

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	HeaderRange       = "Range"
	HeaderIfRange     = "If-Range"
	HeaderIfNoneMatch = "If-None-Match"
)

// ParseRange parses a Range header value such as "bytes=0-99,200-,-50" for a resource of the given size.
//
// Syntax errors return [ErrMalformedRange]; the header must then be ignored. Specs that are syntactically valid
// but cannot be satisfied, such as a start at or beyond the end of the resource, are dropped, so a valid header
// can yield no ranges at all. End positions past the resource are clamped to its last byte.
func ParseRange(header string, size int64) ([]ByteRange, error) {
	unit, set, ok := strings.Cut(strings.TrimSpace(header), "=")
	if !ok || !strings.EqualFold(strings.TrimSpace(unit), "bytes") {
		return nil, errors.Wrapf(ErrMalformedRange, "unsupported range unit in %q", header)
	}

	ranges := []ByteRange{}
	specs := 0
	for _, spec := range strings.Split(set, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		specs++

		r, ok, err := parseRangeSpec(spec, size)
		if err != nil {
			return nil, errors.Wrapf(err, "range spec %q", spec)
		}
		if ok {
			ranges = append(ranges, r)
		}
	}

	if specs == 0 {
		return nil, errors.Wrapf(ErrMalformedRange, "no range specs in %q", header)
	}
	return ranges, nil
}

// parseRangeSpec parses "a-b", "a-" or "-n". It reports false for specs that are valid but not satisfiable.
func parseRangeSpec(spec string, size int64) (ByteRange, bool, error) {
	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return ByteRange{}, false, ErrMalformedRange
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)

	if first == "" {
		n, err := parseOffset(last)
		if err != nil {
			return ByteRange{}, false, err
		}
		if n == 0 || size == 0 {
			return ByteRange{}, false, nil
		}
		return ByteRange{Begin: max(size-n, 0), End: size - 1}, true, nil
	}

	begin, err := parseOffset(first)
	if err != nil {
		return ByteRange{}, false, err
	}

	end := size - 1
	if last != "" {
		if end, err = parseOffset(last); err != nil {
			return ByteRange{}, false, err
		}
		if end < begin {
			return ByteRange{}, false, ErrMalformedRange
		}
		end = min(end, size-1)
	}

	if begin >= size {
		return ByteRange{}, false, nil
	}
	return ByteRange{Begin: begin, End: end}, true, nil
}

func parseOffset(s string) (int64, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, ErrMalformedRange
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Mark(err, ErrMalformedRange)
	}
	return n, nil
}
