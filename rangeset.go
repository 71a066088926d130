package servebyterange

import (
	"slices"

	"github.com/samber/lo"
)

// Coalesce merges overlapping and touching ranges into the smallest set of covering intervals. The result is ordered
// by where each interval was first requested: a merged interval takes the position of the earliest range it absorbed.
// The input is not modified.
func Coalesce(ranges []ByteRange) []ByteRange {
	if len(ranges) < 2 {
		return slices.Clone(ranges)
	}

	sorted := slices.Clone(ranges)
	slices.SortStableFunc(sorted, func(a, b ByteRange) int {
		switch {
		case a.Begin < b.Begin:
			return -1
		case a.Begin > b.Begin:
			return 1
		default:
			return 0
		}
	})

	merged := make([]ByteRange, 0, len(sorted))
	merged = append(merged, sorted[0])
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if last.End >= next.Begin {
			last.Begin = min(last.Begin, next.Begin)
			last.End = max(last.End, next.End)
			continue
		}
		merged = append(merged, next)
	}

	// merged intervals are disjoint, so equality identifies the interval
	return lo.Uniq(lo.Map(ranges, func(r ByteRange, _ int) ByteRange {
		return containing(merged, r)
	}))
}

// containing finds the interval in the sorted, disjoint set that covers r. Coalescing only grows intervals so
// there always is one.
func containing(set []ByteRange, r ByteRange) ByteRange {
	idx, _ := slices.BinarySearchFunc(set, r.Begin, func(c ByteRange, begin int64) int {
		switch {
		case c.End < begin:
			return -1
		case c.Begin > begin:
			return 1
		default:
			return 0
		}
	})

	if idx >= len(set) || !set[idx].Contains(r) {
		panic("servebyterange: coalesced set does not cover " + r.String())
	}

	return set[idx]
}
