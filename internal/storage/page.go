package storage

import (
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects one page of a listing. Zero values mean page 1 of 10 newest first.
type PageRequest struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (p PageRequest) normalized() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one slice of a listing plus the size of the whole result.
type Page[R any] struct {
	Items []R
	Total int
	Page  int
	Limit int
}

func (p Page[R]) TotalPages() int {
	if p.Limit < 1 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

func (p Page[R]) HasNext() bool { return p.Page < p.TotalPages() }
func (p Page[R]) HasPrev() bool { return p.Page > 1 }

// sortColumns maps accepted sortBy values to columns. The "" entry is the default.
type sortColumns map[string]string

func (s sortColumns) orderBy(sortBy, sortOrder string) string {
	col, ok := s[sortBy]
	if !ok {
		col = s[""]
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return " ORDER BY " + col + " " + dir + ", id " + dir
}

// filter accumulates AND-ed conditions with their arguments.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, args ...any) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
}

func (f filter) clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
