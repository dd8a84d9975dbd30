package hearing

import "time"

// Overlaps reports whether the half-open intervals [startA, endA) and [startB, endB)
// intersect. Intervals that only touch do not overlap.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}
