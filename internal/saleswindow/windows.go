package saleswindow

import "time"

// Window is one fixed calendar-day range, inclusive on both ends.
type Window struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the window. Only the calendar
// date matters; time-of-day is ignored.
func (w Window) Contains(day time.Time) bool {
	d := DateOnly(day)
	return !d.Before(w.Start) && !d.After(w.End)
}

// AnchorDate returns the last fully elapsed calendar day before now, in now's
// location. The caller computes this exactly once per run and threads the
// value through: re-deriving it mid-aggregation could shift every window if
// the run straddles midnight.
func AnchorDate(now time.Time) time.Time {
	return DateOnly(now).AddDate(0, 0, -1)
}

// DateOnly truncates a timestamp to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildWindows returns the eight reporting windows anchored to a single date.
// Ranges are disjoint except for the combined 1-28 bucket, which spans the
// four weekly windows and feeds the three-month average.
func BuildWindows(anchor time.Time) []Window {
	anchor = DateOnly(anchor)
	day := func(offset int) time.Time { return anchor.AddDate(0, 0, -offset) }

	return []Window{
		{Name: "1 Day", Start: day(0), End: day(0)},
		{Name: "7 Days", Start: day(6), End: day(0)},
		{Name: "8-14", Start: day(13), End: day(7)},
		{Name: "15-21", Start: day(20), End: day(14)},
		{Name: "22-28", Start: day(27), End: day(21)},
		{Name: "1-28", Start: day(27), End: day(0)},
		{Name: "29-56", Start: day(55), End: day(28)},
		{Name: "57-84", Start: day(83), End: day(56)},
	}
}

// FullRange returns the earliest start and latest end across all windows for
// an anchor, i.e. the span of daily data a run needs to fetch.
func FullRange(anchor time.Time) (start, end time.Time) {
	anchor = DateOnly(anchor)
	return anchor.AddDate(0, 0, -83), anchor
}
