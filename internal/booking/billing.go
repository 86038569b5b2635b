package booking

const secondsPerHour = 3600

// CeilHours converts a duration in seconds to billed hours, rounding any
// partial hour up to a whole one. Zero or negative durations bill zero hours.
func CeilHours(seconds int64) int64 {
	if seconds <= 0 {
		return 0
	}
	return (seconds + secondsPerHour - 1) / secondsPerHour
}

// RentCents prices the interval [start, stop] at hourlyRateCents per
// ceiling-rounded hour.
func RentCents(hourlyRateCents, start, stop int64) int64 {
	return hourlyRateCents * CeilHours(stop-start)
}

// LateHours is the number of extra hours billed for a return at now on a
// reservation booked [start, stop] with now >= stop. Any late return bills at
// least one extra hour.
func LateHours(start, stop, now int64) int64 {
	extra := CeilHours(now-start) - CeilHours(stop-start)
	if extra < 1 {
		return 1
	}
	return extra
}
