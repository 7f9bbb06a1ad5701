package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mysphere/internal/analytics"
	"mysphere/internal/core"
	"mysphere/internal/period"
	"mysphere/internal/storage"
)

const maxBodyBytes = 10 << 20

// decodeJSON reads a JSON object into dst. Malformed bodies and type
// mismatches come back as validation errors.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	verr := &core.ValidationError{}
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		verr.Add(typeErr.Field, "must be a %s", typeErr.Type.String())
	case errors.Is(err, io.EOF):
		verr.Add("body", "request body is required")
	default:
		verr.Add("body", "must be a valid JSON object")
	}
	return verr
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// queryParser collects every malformed query parameter before failing.
type queryParser struct {
	q    url.Values
	loc  *time.Location
	verr core.ValidationError
}

func newQueryParser(r *http.Request, loc *time.Location) *queryParser {
	return &queryParser{q: r.URL.Query(), loc: loc}
}

func (p *queryParser) text(key string) string {
	return sanitizeInput(p.q.Get(key))
}

// intParam returns 0 when key is absent.
func (p *queryParser) intParam(key string) int {
	raw := strings.TrimSpace(p.q.Get(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		p.verr.Add(key, "must be a non-negative integer")
		return 0
	}
	return v
}

func (p *queryParser) floatParam(key string) *float64 {
	raw := strings.TrimSpace(p.q.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.verr.Add(key, "must be a number")
		return nil
	}
	return &v
}

// dateParam parses a date or timestamp. A bare end date covers its whole day.
func (p *queryParser) dateParam(key string, endOfDay bool) *time.Time {
	t, err := p.parseDate(key, endOfDay)
	if err != nil {
		p.verr.Add(key, "must be a valid date")
		return nil
	}
	return t
}

func (p *queryParser) parseDate(key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(p.q.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := core.ParseDate(raw, p.loc)
	if err != nil {
		return nil, err
	}
	if endOfDay && len(raw) == len("2006-01-02") {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func (p *queryParser) page() storage.PageRequest {
	return storage.PageRequest{
		Page:      p.intParam("page"),
		Limit:     p.intParam("limit"),
		SortBy:    p.text("sortBy"),
		SortOrder: strings.ToLower(p.text("sortOrder")),
	}
}

// period reads the analytics window. Unparsable bounds are dropped so a
// custom range falls back to the monthly default.
func (p *queryParser) period() analytics.PeriodRequest {
	start, _ := p.parseDate("startDate", false)
	end, _ := p.parseDate("endDate", true)
	return analytics.PeriodRequest{
		Token: period.ParseToken(p.q.Get("period")),
		Start: start,
		End:   end,
	}
}

func (p *queryParser) trend() analytics.TrendRequest {
	return analytics.TrendRequest{
		Granularity: analytics.ParseGranularity(p.q.Get("period"), ""),
		Months:      p.intParam("months"),
		Limit:       p.intParam("limit"),
	}
}

func (p *queryParser) err() error {
	if err := p.verr.Err(); err != nil {
		return fmt.Errorf("parse query: %w", err)
	}
	return nil
}
