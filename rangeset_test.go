package servebyterange_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	sbr "github.com/julik/serve-byte-range"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func br(begin, end int64) sbr.ByteRange { return sbr.ByteRange{Begin: begin, End: end} }

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name string
		in   []sbr.ByteRange
		want []sbr.ByteRange
	}{
		{"empty", nil, nil},
		{"single", []sbr.ByteRange{br(4, 9)}, []sbr.ByteRange{br(4, 9)}},
		{"overlapping", []sbr.ByteRange{br(1, 2), br(2, 8), br(4, 9)}, []sbr.ByteRange{br(1, 9)}},
		{"disjoint keeps request order", []sbr.ByteRange{br(472, 473), br(1, 2), br(4, 9)},
			[]sbr.ByteRange{br(472, 473), br(1, 2), br(4, 9)}},
		{"duplicates once at first position", []sbr.ByteRange{br(4, 9), br(1, 2), br(4, 9), br(4, 9)},
			[]sbr.ByteRange{br(4, 9), br(1, 2)}},
		{"sharing a byte", []sbr.ByteRange{br(0, 5), br(5, 9)}, []sbr.ByteRange{br(0, 9)}},
		{"neighbours stay apart", []sbr.ByteRange{br(0, 1), br(2, 3)}, []sbr.ByteRange{br(0, 1), br(2, 3)}},
		{"merged interval takes first position", []sbr.ByteRange{br(10, 20), br(0, 1), br(15, 30)},
			[]sbr.ByteRange{br(10, 30), br(0, 1)}},
		{"contained range", []sbr.ByteRange{br(3, 4), br(0, 100)}, []sbr.ByteRange{br(0, 100)}},
		{"same begin", []sbr.ByteRange{br(400, 410), br(0, 10), br(400, 473)},
			[]sbr.ByteRange{br(400, 473), br(0, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, sbr.Coalesce(tt.in))
		})
	}
}

func TestCoalesceDoesNotMutateInput(t *testing.T) {
	in := []sbr.ByteRange{br(10, 20), br(0, 12), br(5, 6)}
	before := slices.Clone(in)

	_ = sbr.Coalesce(in)
	require.Equal(t, before, in)
}

func TestCoalesceProperties(t *testing.T) {
	const domain = 200
	rnd := rand.New(rand.NewPCG(7, 11))

	for i := range 500 {
		in := make([]sbr.ByteRange, 1+rnd.IntN(8))
		for j := range in {
			begin := rnd.Int64N(domain)
			in[j] = br(begin, begin+rnd.Int64N(domain-begin))
		}

		out := sbr.Coalesce(in)

		assert.ElementsMatch(t, out, sbr.Coalesce(out), "idempotent, case %d: %v", i, in)
		assert.Equal(t, coverage(in, domain), coverage(out, domain), "same union, case %d: %v", i, in)

		sorted := slices.SortedFunc(slices.Values(out), func(a, b sbr.ByteRange) int { return int(a.Begin - b.Begin) })
		for k := 1; k < len(sorted); k++ {
			assert.Less(t, sorted[k-1].End, sorted[k].Begin, "disjoint, case %d: %v", i, in)
		}

		for _, r := range in {
			assert.True(t, slices.ContainsFunc(out, func(c sbr.ByteRange) bool { return c.Contains(r) }),
				"every input is covered, case %d: %v", i, in)
		}
	}
}

func coverage(ranges []sbr.ByteRange, domain int) []bool {
	covered := make([]bool, domain)
	for _, r := range ranges {
		for i := r.Begin; i <= r.End; i++ {
			covered[i] = true
		}
	}
	return covered
}

func TestByteRange(t *testing.T) {
	r, err := sbr.NewByteRange(4, 9, 474)
	require.NoError(t, err)
	require.Equal(t, int64(6), r.Size())
	require.Equal(t, "bytes 4-9/474", r.ContentRange(474))
	require.Equal(t, "4-9", r.String())

	for _, bad := range []sbr.ByteRange{br(-1, 2), br(5, 4), br(0, 474)} {
		_, err := sbr.NewByteRange(bad.Begin, bad.End, 474)
		require.ErrorIs(t, err, sbr.ErrInvalidRange, "range %s", bad)
	}
}
