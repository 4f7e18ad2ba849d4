// Package workdays provides the pure date arithmetic behind expiration
// windows. No I/O, no clock: callers pass the reference time in.
package workdays

import "time"

// IsBusinessDay reports whether t falls on a Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// AddBusinessDays advances t one calendar day at a time, counting a day only
// when it lands on a weekday, until n business days have been counted.
// AddBusinessDays(t, 0) returns t unchanged.
func AddBusinessDays(t time.Time, n int) time.Time {
	for counted := 0; counted < n; {
		t = t.AddDate(0, 0, 1)
		if IsBusinessDay(t) {
			counted++
		}
	}
	return t
}

// AddCalendarDays advances t by n calendar days, weekends included.
func AddCalendarDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
