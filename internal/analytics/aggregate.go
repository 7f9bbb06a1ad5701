package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mysphere/internal/core"
	"mysphere/internal/period"
)

// Granularity is the calendar unit records are bucketed by.
type Granularity string

const (
	Day   Granularity = "daily"
	Week  Granularity = "weekly"
	Month Granularity = "monthly"
	Year  Granularity = "yearly"
)

// ParseGranularity accepts both the period tokens (daily, week, ...) and unit names
// (day, month, ...). Unknown values yield def.
func ParseGranularity(s string, def Granularity) Granularity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "today":
		return Day
	case "weekly", "week":
		return Week
	case "monthly", "month":
		return Month
	case "yearly", "year":
		return Year
	default:
		return def
	}
}

// Key identifies a bucket. Calendar keys fill the date parts relevant to their
// granularity; field keys only carry Label.
type Key struct {
	Year  int
	Month int
	Week  int
	Day   int
	Label string

	granularity Granularity
}

// CalendarKey extracts the bucket key of t in loc. Weeks follow ISO-8601: they start
// on Monday and belong to the year that holds their Thursday.
func CalendarKey(t time.Time, g Granularity, loc *time.Location) Key {
	if loc != nil {
		t = t.In(loc)
	}
	switch g {
	case Day:
		return Key{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), granularity: g}
	case Week:
		year, week := t.ISOWeek()
		return Key{Year: year, Week: week, granularity: g}
	case Year:
		return Key{Year: t.Year(), granularity: g}
	default:
		return Key{Year: t.Year(), Month: int(t.Month()), granularity: Month}
	}
}

// LabelKey groups by an arbitrary string field.
func LabelKey(label string) Key {
	return Key{Label: label}
}

func (k Key) String() string {
	switch k.granularity {
	case Day:
		return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
	case Week:
		return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
	case Month:
		return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
	case Year:
		return fmt.Sprintf("%04d", k.Year)
	default:
		return k.Label
	}
}

func (k Key) less(o Key) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	if k.Month != o.Month {
		return k.Month < o.Month
	}
	if k.Week != o.Week {
		return k.Week < o.Week
	}
	if k.Day != o.Day {
		return k.Day < o.Day
	}
	return k.Label < o.Label
}

// Metric extracts a numeric value from a record. ok is false when the record has no value.
type Metric[R any] struct {
	Name  string
	Value func(R) (float64, bool)
}

// Field is a metric every record carries.
func Field[R any](name string, f func(R) float64) Metric[R] {
	return Metric[R]{Name: name, Value: func(r R) (float64, bool) { return f(r), true }}
}

// Optional is a metric that may be absent. Absent values are skipped, not counted as zero.
func Optional[R any](name string, f func(R) *float64) Metric[R] {
	return Metric[R]{Name: name, Value: func(r R) (float64, bool) {
		if v := f(r); v != nil {
			return *v, true
		}
		return 0, false
	}}
}

// Stat reduces the present values of one metric within a bucket.
// First and Last follow date order.
type Stat struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
	First float64
	Last  float64
}

func (s *Stat) add(v float64) {
	if s.Count == 0 {
		s.Min, s.Max, s.First = v, v, v
	}
	if v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	s.Sum += v
	s.Last = v
	s.Count++
}

// Avg is the arithmetic mean of present values, or 0 when there are none.
func (s Stat) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// AvgPtr is like Avg but returns nil when no value was present.
func (s Stat) AvgPtr(places int32) *float64 {
	if s.Count == 0 {
		return nil
	}
	v := core.Round(s.Avg(), places)
	return &v
}

// Bucket is one group of records and the reductions of every requested metric.
type Bucket struct {
	Key   Key
	Count int
	stats map[string]Stat
}

// Stat returns the reduction of the named metric; unknown names yield a zero Stat.
func (b Bucket) Stat(name string) Stat {
	return b.stats[name]
}

type Order int

const (
	Ascending Order = iota
	Descending
)

// Query describes one aggregation.
type Query[R core.Record] struct {
	// Range keeps records whose date lies within it, both ends inclusive. Nil keeps all.
	Range *period.Range
	// GroupBy assigns each record to a bucket. Nil puts everything in one bucket.
	GroupBy func(R) Key
	Metrics []Metric[R]
	Order   Order
	// Limit caps the number of buckets after sorting; 0 means no cap.
	Limit int
}

// Aggregate filters, groups and reduces records. Records are sorted by date before
// reduction so First and Last are well defined regardless of input order.
func Aggregate[R core.Record](records []R, q Query[R]) []Bucket {
	matching := make([]R, 0, len(records))
	for _, r := range records {
		if q.Range == nil || q.Range.Contains(r.RecordDate()) {
			matching = append(matching, r)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].RecordDate().Before(matching[j].RecordDate())
	})

	index := make(map[Key]int)
	var buckets []Bucket
	for _, r := range matching {
		var key Key
		if q.GroupBy != nil {
			key = q.GroupBy(r)
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, stats: make(map[string]Stat, len(q.Metrics))})
		}
		b := &buckets[i]
		b.Count++
		for _, m := range q.Metrics {
			if v, present := m.Value(r); present {
				s := b.stats[m.Name]
				s.add(v)
				b.stats[m.Name] = s
			}
		}
	}

	sort.Slice(buckets, func(i, j int) bool {
		if q.Order == Descending {
			return buckets[j].Key.less(buckets[i].Key)
		}
		return buckets[i].Key.less(buckets[j].Key)
	})
	if q.Limit > 0 && len(buckets) > q.Limit {
		buckets = buckets[:q.Limit]
	}
	return buckets
}

// Total reduces every matching record into a single bucket. With no matching records
// it returns an empty bucket whose stats are all zero.
func Total[R core.Record](records []R, q Query[R]) Bucket {
	q.GroupBy, q.Limit = nil, 0
	if buckets := Aggregate(records, q); len(buckets) > 0 {
		return buckets[0]
	}
	return Bucket{stats: map[string]Stat{}}
}

// MostRecent keeps the n latest buckets of an ascending series, still in ascending order.
func MostRecent(buckets []Bucket, n int) []Bucket {
	if n <= 0 || len(buckets) <= n {
		return buckets
	}
	desc := make([]Bucket, len(buckets))
	copy(desc, buckets)
	sort.SliceStable(desc, func(i, j int) bool { return desc[j].Key.less(desc[i].Key) })
	desc = desc[:n]
	for i, j := 0, len(desc)-1; i < j; i, j = i+1, j-1 {
		desc[i], desc[j] = desc[j], desc[i]
	}
	return desc
}

// Ranking selects what TopBy orders buckets by.
type Ranking int

const (
	BySum Ranking = iota
	ByCount
)

// TopBy orders buckets by the named metric's sum (or by bucket size), largest first,
// keeping key order between equals, and returns at most n of them.
func TopBy(buckets []Bucket, metric string, rank Ranking, n int) []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	value := func(b Bucket) float64 {
		if rank == ByCount {
			return float64(b.Count)
		}
		return b.Stat(metric).Sum
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := value(out[i]), value(out[j])
		if vi != vj {
			return vi > vj
		}
		return out[i].Key.less(out[j].Key)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
