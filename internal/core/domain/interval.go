package domain

import "time"

// IntervalWidth is the fixed size of one poll window.
const IntervalWidth = 10 * time.Minute

// IntervalID maps an instant to the identifier of the 10-minute bucket it
// falls in, e.g. "20240207T0410". Identifiers are UTC, sortable, and
// byte-identical for any two instants inside the same bucket.
func IntervalID(t time.Time) string {
	return IntervalStart(t).Format("20060102T1504")
}

// IntervalStart returns the beginning of the bucket the instant falls in.
func IntervalStart(t time.Time) time.Time {
	return t.UTC().Truncate(IntervalWidth)
}
