package models

import "time"

// DateLayout is the canonical calendar-date format used in replies and JSON.
const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight of its calendar day, keeping t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts whole calendar days from a to b. Daylight-saving shifts are ignored.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
