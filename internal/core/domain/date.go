package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf drops the clock part of t and returns its calendar date as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and [bStart, bEnd] share a day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// EachDate calls fn for every calendar date in [start, end], ascending.
func EachDate(start, end time.Time, fn func(day time.Time)) {
	for d := DateOf(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}
