// Package dates holds the calendar-day arithmetic shared by the event
// store, the reminder scheduler, and view callers. Two instants belong to
// the same day iff their year, month, and day components match; time-of-day
// never participates.
package dates

import (
	"fmt"
	"time"
)

// DayFormat is the serialized calendar-date layout. It carries no
// time-of-day and no zone, so a round-trip through it can never shift an
// event across a day boundary.
const DayFormat = "2006-01-02"

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Normalize truncates t to midnight of its calendar day, keeping the
// location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// At combines a calendar day with a zero-padded "HH:MM" wall-clock time
// into a single instant in the day's location.
func At(day time.Time, clock string) (time.Time, error) {
	// time.Parse tolerates unpadded hours; the fixed-width contract does not.
	if len(clock) != 5 || clock[2] != ':' {
		return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM: %w", clock, err)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

// WeekBounds returns the Monday 00:00 start and Sunday end of the ISO week
// containing t. The week starts on Monday regardless of locale.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day := Normalize(t)
	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return monday, sunday
}

// DaysInRange returns one midnight per calendar day from start to end
// inclusive, in order. It is a pure function of its bounds; an end before
// start yields nil.
func DaysInRange(start, end time.Time) []time.Time {
	first := Normalize(start)
	last := Normalize(end)
	if last.Before(first) {
		return nil
	}
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
