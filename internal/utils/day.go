package utils

import "time"

// CalendarDay truncates t to midnight of its date in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// CooldownElapsed reports whether a once-per-day action last done at last
// may run again at now. A zero last means never done.
func CooldownElapsed(last, now time.Time, loc *time.Location) bool {
	if last.IsZero() {
		return true
	}
	return CalendarDay(last, loc).Before(CalendarDay(now, loc))
}
