package booking

import "drively-backend/internal/ordindex"

// fits decides whether the candidate interval [start, stop] can be accepted
// against the index of active reservations for one vehicle. Because accepted
// intervals never overlap each other, probing the nearest neighbor on each
// side of the candidate start is sufficient: O(log n) instead of a scan.
//
// Intervals are closed on both ends, so an interval stopping exactly where
// the candidate starts (or vice versa) is not a conflict: back-to-back
// bookings are allowed.
func fits(idx *ordindex.Tree, led *Ledger, start, stop int64) bool {
	if right, ok := idx.Ceiling(start); ok {
		r, err := led.Get(right.Value)
		if err == nil && r.StartTime < stop {
			return false
		}
	}
	if left, ok := idx.Floor(start); ok {
		r, err := led.Get(left.Value)
		if err == nil && r.StopTime > start {
			return false
		}
	}
	return true
}
