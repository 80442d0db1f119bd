package encode

import (
	"sort"
	"strings"
)

// Interval is a half-open [Start, End) span of source text.
type Interval struct {
	Start int
	End   int
}

// CompactSource builds the minimal source string covering every interval,
// preserving the "inner function is textually inside its outer function"
// relationship, and returns it with a map from original start offsets to
// compacted offsets.
//
// Intervals are processed in ascending start order. An interval fully
// inside the current covering interval contributes no new text, only an
// offset mapping. An interval extending past current coverage appends its
// uncovered suffix and becomes the new covering interval.
func CompactSource(full string, intervals []Interval) (string, map[int]int) {
	offsets := make(map[int]int, len(intervals))
	if len(intervals) == 0 {
		return "", offsets
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var compacted strings.Builder
	curStart, curEnd := -1, 0
	for _, iv := range sorted {
		if curStart >= 0 && iv.End <= curEnd {
			// Fully covered; record the position mapping only.
			offsets[iv.Start] = offsets[curStart] + (iv.Start - curStart)
			continue
		}
		if curStart < 0 || iv.Start >= curEnd {
			// Disjoint from current coverage.
			offsets[iv.Start] = compacted.Len()
			compacted.WriteString(full[iv.Start:iv.End])
		} else {
			// Overlaps the tail of current coverage: the prefix is
			// already present and contiguous, append the rest.
			offsets[iv.Start] = offsets[curStart] + (iv.Start - curStart)
			compacted.WriteString(full[curEnd:iv.End])
		}
		curStart, curEnd = iv.Start, iv.End
	}
	return compacted.String(), offsets
}
