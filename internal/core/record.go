package core

import (
	"fmt"
	"strings"
	"time"
)

// Kind names one of the independent record collections.
type Kind string

const (
	KindExpense    Kind = "expense"
	KindBodyWeight Kind = "body_weight"
	KindWholesale  Kind = "wholesale"
)

// Kinds lists every stored record kind.
var Kinds = []Kind{KindExpense, KindBodyWeight, KindWholesale}

// Record is implemented by every stored record kind.
type Record interface {
	RecordID() string
	RecordDate() time.Time
}

const dateOnlyLayout = "2006-01-02"

// ParseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates, the latter at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
}

func checkLength(verr *ValidationError, field, value string, max int) {
	if n := len([]rune(value)); n > max {
		verr.Add(field, "cannot exceed %d characters", max)
	}
}

func checkNotFuture(verr *ValidationError, field string, date, now time.Time) {
	if date.After(now) {
		verr.Add(field, "cannot be in the future")
	}
}

func applyDate(verr *ValidationError, field string, raw *string, dst *time.Time, loc *time.Location) {
	if raw == nil {
		return
	}
	t, err := ParseDate(*raw, loc)
	if err != nil {
		verr.Add(field, "must be a valid date")
		return
	}
	*dst = t.In(loc)
}
