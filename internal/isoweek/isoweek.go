// Package isoweek computes ISO-8601 week numbers and week start dates.
package isoweek

import "time"

// MaxWeek is the highest week number the week navigation reaches.
// Week 53 is not modeled.
const MaxWeek = 52

// Week is an ISO week-numbering year and week index.
type Week struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// Of returns the ISO week containing the calendar date of t in t's location.
func Of(t time.Time) Week {
	year, week := t.ISOWeek()
	return Week{Year: year, Week: week}
}

// StartDate returns the Monday (00:00 UTC) that starts the given ISO week.
func StartDate(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -offset)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

// Clamp limits w to [1, MaxWeek].
func Clamp(w int) int {
	if w < 1 {
		return 1
	}
	if w > MaxWeek {
		return MaxWeek
	}
	return w
}

// Next returns the week after w, wrapping from MaxWeek to 1.
func Next(w int) int {
	if w >= MaxWeek {
		return 1
	}
	return Clamp(w + 1)
}

// Prev returns the week before w, wrapping from 1 to MaxWeek.
func Prev(w int) int {
	if w <= 1 {
		return MaxWeek
	}
	return Clamp(w - 1)
}

// Valid reports whether w is a week the statistics cover.
func Valid(w int) bool {
	return w >= 1 && w <= MaxWeek
}
