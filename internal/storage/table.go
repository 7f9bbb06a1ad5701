package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mysphere/internal/core"
	"mysphere/internal/log"
	"mysphere/internal/period"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// recordTable holds the SQL shared by every record kind. columns starts with
// "id" and must contain "date" and "created_at".
type recordTable[R core.Record] struct {
	db      *sql.DB
	loc     *time.Location
	kind    core.Kind
	name    string
	columns []string
	scan    func(rowScanner, *time.Location) (R, error)
	values  func(R) ([]any, error)
	sorts   sortColumns
}

func (t *recordTable[R]) selectSQL() string {
	return "SELECT " + strings.Join(t.columns, ", ") + " FROM " + t.name
}

// Create inserts rec as a new row.
func (t *recordTable[R]) Create(ctx context.Context, rec R) error {
	vals, err := t.values(rec)
	if err != nil {
		return fmt.Errorf("create %s: %w", t.kind, err)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columns, ", "), placeholders)
	if _, err := t.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("create %s: %w", t.kind, err)
	}

	slog.DebugContext(ctx, "Record inserted",
		log.FieldComponent, log.ComponentStorage,
		log.FieldKind, string(t.kind),
		log.FieldRecordID, rec.RecordID())
	return nil
}

// Get loads one record. Unknown ids yield core.ErrNotFound.
func (t *recordTable[R]) Get(ctx context.Context, id string) (R, error) {
	row := t.db.QueryRowContext(ctx, t.selectSQL()+" WHERE id = ?", id)
	rec, err := t.scan(row, t.loc)
	if errors.Is(err, sql.ErrNoRows) {
		var zero R
		return zero, fmt.Errorf("get %s %s: %w", t.kind, id, core.ErrNotFound)
	}
	if err != nil {
		var zero R
		return zero, fmt.Errorf("get %s %s: %w", t.kind, id, err)
	}
	return rec, nil
}

// Update overwrites every column except id and created_at.
func (t *recordTable[R]) Update(ctx context.Context, rec R) error {
	vals, err := t.values(rec)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.kind, err)
	}

	sets := make([]string, 0, len(t.columns))
	args := make([]any, 0, len(t.columns))
	for i, col := range t.columns {
		if col == "id" || col == "created_at" {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, vals[i])
	}
	args = append(args, rec.RecordID())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, strings.Join(sets, ", "))
	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", t.kind, rec.RecordID(), err)
	}
	return t.expectRow(res, "update", rec.RecordID())
}

// Delete removes one record. Unknown ids yield core.ErrNotFound.
func (t *recordTable[R]) Delete(ctx context.Context, id string) error {
	res, err := t.db.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", t.kind, id, err)
	}
	return t.expectRow(res, "delete", id)
}

func (t *recordTable[R]) expectRow(res sql.Result, verb, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", verb, t.kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s %s: %w", verb, t.kind, id, core.ErrNotFound)
	}
	return nil
}

// Query returns the records dated inside r (all records when r is nil), oldest first.
func (t *recordTable[R]) Query(ctx context.Context, r *period.Range) ([]R, error) {
	query := t.selectSQL()
	var args []any
	if r != nil {
		query += " WHERE date BETWEEN ? AND ?"
		args = append(args, formatTime(r.Start), formatTime(r.End))
	}
	query += " ORDER BY date ASC, id ASC"

	recs, err := t.collect(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.kind, err)
	}
	return recs, nil
}

// Latest returns the n most recently dated records, newest first. n <= 0 means all.
func (t *recordTable[R]) Latest(ctx context.Context, n int) ([]R, error) {
	if n <= 0 {
		n = -1
	}
	recs, err := t.collect(ctx, t.selectSQL()+" ORDER BY date DESC, id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("latest %s: %w", t.kind, err)
	}
	return recs, nil
}

func (t *recordTable[R]) list(ctx context.Context, where filter, req PageRequest) (Page[R], error) {
	req = req.normalized()
	clause := where.clause()

	var total int
	if err := t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name+clause, where.args...).Scan(&total); err != nil {
		return Page[R]{}, fmt.Errorf("count %s: %w", t.kind, err)
	}

	query := t.selectSQL() + clause + t.sorts.orderBy(req.SortBy, req.SortOrder) + " LIMIT ? OFFSET ?"
	args := append(append([]any{}, where.args...), req.Limit, req.offset())
	items, err := t.collect(ctx, query, args...)
	if err != nil {
		return Page[R]{}, fmt.Errorf("list %s: %w", t.kind, err)
	}
	return Page[R]{Items: items, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

func (t *recordTable[R]) collect(ctx context.Context, query string, args ...any) ([]R, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []R{}
	for rows.Next() {
		rec, err := t.scan(rows, t.loc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
