package service

import "slotkeeper/pkg/daytime"

// Pack lays slots of duration minutes back to back from the window start.
// When a candidate would intersect an occupied range the cursor jumps to
// that range's end and packing resumes from there. occupied must be sorted
// and disjoint, as returned by the occupancy aggregator.
func Pack(window daytime.Range, occupied []daytime.Range, duration int) []daytime.Range {
	slots := []daytime.Range{}
	if duration <= 0 || window.IsEmpty() {
		return slots
	}

	cursor := window.Start
	next := 0
	for cursor.Add(duration) <= window.End {
		candidate := daytime.NewRange(cursor, cursor.Add(duration))

		for next < len(occupied) && occupied[next].End <= cursor {
			next++
		}
		if next < len(occupied) && candidate.Overlaps(occupied[next]) {
			cursor = occupied[next].End
			continue
		}

		slots = append(slots, candidate)
		cursor = candidate.End
	}
	return slots
}
