// Package booking holds the reservation rules that do not depend on storage:
// the closed-interval conflict validator used before every reservation write
// and the containment predicate behind the room availability query.
package booking

import (
	"errors"
	"strings"
	"time"
)

// Interval is a reserved time span.  Both bounds are inclusive: an interval
// that ends at 12:00 and one that starts at 12:00 share an instant.
type Interval struct {
	From time.Time
	To   time.Time
}

// Overlaps reports whether a and b share at least one instant.
func Overlaps(a, b Interval) bool {
	return !a.From.After(b.To) && !b.From.After(a.To)
}

// Contains reports whether inner lies entirely within outer, bounds included.
func Contains(outer, inner Interval) bool {
	return !inner.From.Before(outer.From) && !inner.To.After(outer.To)
}

// ErrBadDateTime is returned by ParseDateTime for values that are not ISO-8601.
var ErrBadDateTime = errors.New("date-time is not in ISO format")

// isoLayouts are tried in order.  Layouts without an offset are read as UTC,
// which is the store's native timezone.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02 15",
	"2006-01-02",
}

// maxFracDigits is the store's DATETIME(6) precision.
const maxFracDigits = 6

// ParseDateTime parses an ISO-8601 date-time such as "2021-01-20 23:00:00",
// "2021-01-20T23:00:00+03:00" or "2021-01-20".  The result is in UTC.
// Fractions finer than a microsecond are rejected, since the store would
// round them and keep a different instant from the one validated.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || fracDigits(s) > maxFracDigits {
		return time.Time{}, ErrBadDateTime
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrBadDateTime
}

// fracDigits counts the digits of the seconds fraction in s.
func fracDigits(s string) int {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	n := 0
	for _, r := range s[i+1:] {
		if r < '0' || r > '9' {
			break
		}
		n++
	}
	return n
}
