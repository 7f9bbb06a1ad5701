// Package period turns named period tokens into concrete date ranges.
//
// Ranges are inclusive on both ends. Callers that build adjacent ranges by hand
// must leave a gap, or a record stamped exactly on the shared boundary is counted
// in both windows. Calendar ranges end at 23:59:59, so a record stamped in the
// final fraction of that second falls outside the day.
package period

import (
	"strings"
	"time"
)

// Token names a period requested by a client.
type Token string

const (
	Daily   Token = "daily"
	Weekly  Token = "weekly"
	Monthly Token = "monthly"
	Yearly  Token = "yearly"
	Custom  Token = "custom"
)

// Mode selects how a period ends.
type Mode int

const (
	// Calendar ranges cover whole calendar units, ending at 23:59:59 of the last day.
	// Weeks run Sunday through Saturday.
	Calendar Mode = iota
	// ToDate ranges end at now. Weeks are the trailing seven days.
	ToDate
)

// Range is an inclusive [Start, End] window.
type Range struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// Contains reports whether t lies within the range, boundaries included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Duration is the span between start and end.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// ParseToken normalizes a client supplied token. Aliases (today, week, month, year)
// map to their canonical names and anything unrecognized maps to Monthly.
func ParseToken(s string) Token {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "today", "day":
		return Daily
	case "weekly", "week":
		return Weekly
	case "monthly", "month":
		return Monthly
	case "yearly", "year":
		return Yearly
	case "custom":
		return Custom
	default:
		return Monthly
	}
}

// Request is a period lookup as received from a client.
type Request struct {
	Token Token
	// Start and End are only consulted for Custom.
	Start *time.Time
	End   *time.Time
}

// Resolve maps a token to a concrete range relative to now. A custom request with a
// missing or inverted bound falls back to the monthly range.
func Resolve(req Request, now time.Time, mode Mode) Range {
	switch req.Token {
	case Daily:
		start := startOfDay(now)
		if mode == ToDate {
			return Range{Start: start, End: now}
		}
		return Range{Start: start, End: endOfDay(start)}
	case Weekly:
		if mode == ToDate {
			return Range{Start: now.AddDate(0, 0, -7), End: now}
		}
		start := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
		return Range{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
	case Yearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		if mode == ToDate {
			return Range{Start: start, End: now}
		}
		return Range{Start: start, End: endOfDay(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()))}
	case Custom:
		if req.Start != nil && req.End != nil && !req.Start.After(*req.End) {
			return Range{Start: *req.Start, End: *req.End}
		}
	}
	return monthly(now, mode)
}

func monthly(now time.Time, mode Mode) Range {
	start := StartOfMonth(now)
	if mode == ToDate {
		return Range{Start: start, End: now}
	}
	return Range{Start: start, End: endOfDay(start.AddDate(0, 1, -1))}
}

// Preceding returns the window of equal length that ends just before r starts.
func Preceding(r Range) Range {
	end := r.Start.Add(-time.Nanosecond)
	return Range{Start: end.Add(-r.Duration()), End: end}
}

// LastDays is the trailing window of n days ending at now.
func LastDays(now time.Time, n int) Range {
	return Range{Start: now.AddDate(0, 0, -n), End: now}
}

// MonthsBack starts at the first day of the month n-1 months before now and ends at now,
// so MonthsBack(now, 1) is the current month to date.
func MonthsBack(now time.Time, n int) Range {
	if n < 1 {
		n = 1
	}
	return Range{Start: StartOfMonth(now).AddDate(0, -(n - 1), 0), End: now}
}

// StartOfMonth is midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
}
