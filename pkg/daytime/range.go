package daytime

import (
	"fmt"
	"sort"
)

type Range struct {
	Start Minute `json:"start"`
	End   Minute `json:"end"`
}

func NewRange(start, end Minute) Range {
	return Range{Start: start, End: end}
}

func (r Range) Minutes() int {
	return int(r.End - r.Start)
}

func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Overlaps reports whether two half-open ranges share at least one minute.
// Ranges that merely touch do not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Touches reports whether two ranges overlap or share an endpoint.
func (r Range) Touches(o Range) bool {
	return r.Start <= o.End && o.Start <= r.End
}

func (r Range) Contains(o Range) bool {
	return o.Start >= r.Start && o.End <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Merge returns the ranges sorted by start with every overlapping or
// touching pair collapsed into one. Empty ranges are dropped. The input is
// not modified.
func Merge(ranges []Range) []Range {
	sorted := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if !r.IsEmpty() {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return []Range{}
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if last.Touches(r) {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// FirstOverlap returns the first range in sorted that overlaps r.
func FirstOverlap(r Range, sorted []Range) (Range, bool) {
	for _, o := range sorted {
		if o.Start >= r.End {
			break
		}
		if r.Overlaps(o) {
			return o, true
		}
	}
	return Range{}, false
}
