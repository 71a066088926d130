// Package blobsource serves objects of a gocloud.dev/blob bucket through [servebyterange.Handler].
//
// Object attributes provide the size, content type and ETag of the resource; each range is read with its own
// range reader so no object is ever read further than requested.
package blobsource

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	sbr "github.com/julik/serve-byte-range"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Source resolves request paths to objects in a bucket.
type Source struct {
	bucket      *blob.Bucket
	prefix      string
	contentType string
}

// Option configures a [Source].
type Option func(*Source)

// WithPrefix prepends prefix to every object key.
func WithPrefix(prefix string) Option {
	return func(s *Source) { s.prefix = prefix }
}

// WithDefaultContentType is used for objects that carry no content type.
func WithDefaultContentType(ct string) Option {
	return func(s *Source) { s.contentType = ct }
}

// New creates a source for bucket. The bucket stays owned by the caller.
func New(bucket *blob.Bucket, opts ...Option) *Source {
	s := &Source{bucket: bucket, contentType: sbr.DefaultContentType}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup implements [servebyterange.Lookup]. The object key is the request path without its leading slash.
func (s *Source) Lookup(r *http.Request) (sbr.Resource, sbr.DataSource, error) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" || strings.HasSuffix(name, "/") {
		return sbr.Resource{}, nil, sbr.NewError(sbr.CodeNotFound, errors.Newf("no object at %q", r.URL.Path))
	}

	return s.Resolve(r.Context(), s.prefix+name)
}

// Resolve describes the object at key and returns a data source reading from it.
func (s *Source) Resolve(ctx context.Context, key string) (sbr.Resource, sbr.DataSource, error) {
	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return sbr.Resource{}, nil, sbr.NewError(sbr.CodeNotFound, errors.Wrapf(err, "object %q", key))
		}
		return sbr.Resource{}, nil, errors.Wrapf(err, "read attributes of %q", key)
	}

	res := sbr.Resource{Size: attrs.Size, ContentType: attrs.ContentType, ETag: attrs.ETag}
	if res.ContentType == "" {
		res.ContentType = s.contentType
	}

	return res, s.rangeReader(key), nil
}

func (s *Source) rangeReader(key string) sbr.DataSource {
	return func(ctx context.Context, r sbr.ByteRange, w io.Writer) error {
		rd, err := s.bucket.NewRangeReader(ctx, key, r.Begin, r.Size(), nil)
		if err != nil {
			return errors.Wrapf(err, "open range %s of %q", r, key)
		}
		defer rd.Close()

		if _, err := io.Copy(w, rd); err != nil {
			return errors.Wrapf(err, "copy range %s of %q", r, key)
		}
		return nil
	}
}
