// Package servebyterange answers HTTP range requests for resources of known size without buffering them.
//
// # Overview
//
// A request is resolved in two steps. [Negotiate] looks at the resource and the request's Range, If-Range and
// If-None-Match headers and returns a [ResponseBody] whose status, headers and exact content length are known
// before a single resource byte is read. Emitting that body then pulls the bytes through a caller supplied
// [DataSource], one range at a time:
//
//	res := servebyterange.Resource{Size: 474, ContentType: "text/plain", ETag: "v1"}
//	req := servebyterange.Request{
//	    HasRange: true,
//	    Ranges:   []servebyterange.ByteRange{{Begin: 1, End: 2}, {Begin: 4, End: 9}},
//	}
//
//	body, err := servebyterange.Negotiate(res, req, servebyterange.ReaderAtSource(file))
//	if err != nil {
//	    return err
//	}
//
//	body.Header().Apply(w.Header())
//	w.WriteHeader(body.Status())
//	return body.Emit(ctx, w)
//
// # Response shapes
//
// Negotiation picks exactly one of:
//
//   - [*NotModifiedBody] (304): If-None-Match matches and neither Range nor If-Range was sent
//   - [*EmptyBody] (200): the resource has no bytes
//   - [*UnsatisfiableBody] (416): a Range was sent but none of its ranges overlap the resource
//   - [*SingleRangeBody] (206): the requested ranges coalesce into one
//   - [*MultipartBody] (206): they coalesce into several, served as multipart/byteranges
//   - [*WholeBody] (200): no Range, or an If-Range that no longer matches
//
// # Coalescing
//
// Overlapping ranges are merged by [Coalesce] before a shape is chosen. The merged intervals keep the order in
// which the client first asked for them, so "bytes=400-,0-10" is answered with the tail first.
//
// # Byte accounting
//
// The content length is advertised before streaming, so a data source must write exactly the bytes of the range it
// is given. Every call receives a [BoundedWriter]: writing past the range fails with a [*RangeOverrunError] and
// returning early fails with a [*RangeUnderrunError]. Both match [ErrByteCountMismatch] and are returned from
// [ResponseBody.Emit] unchanged in meaning; nothing is padded or truncated.
//
// # net/http
//
// [Handler] wires negotiation into an http.Handler. A [Lookup] resolves the requested resource; returning an
// [*Error] created with [NewError] selects the status, for example:
//
//	return servebyterange.Resource{}, nil, servebyterange.NewError(servebyterange.CodeNotFound, err)
//
// Range headers are parsed with [ParseRange]; malformed ones are ignored as HTTP requires.
package servebyterange
