package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	ports "mysphere/internal/sheets"
)

// Store is an in-process journal. With an output writer it also prints each
// row as a tab separated line, which makes it usable as a dry-run target.
type Store struct {
	mu   sync.Mutex
	rows map[string][][]any
	out  io.Writer
}

var _ ports.Journal = (*Store)(nil)

func New(out io.Writer) *Store {
	return &Store{rows: map[string][][]any{}, out: out}
}

func (s *Store) AppendRow(_ context.Context, tab string, row []any) error {
	if tab == "" {
		return fmt.Errorf("append row: empty tab name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tab] = append(s.rows[tab], append([]any(nil), row...))
	if s.out != nil {
		fmt.Fprintf(s.out, "%s\t%s\n", tab, joinCells(row))
	}
	return nil
}

// EnsureTabs writes the header row of every tab that has no rows yet.
func (s *Store) EnsureTabs(ctx context.Context, headers map[string][]any) error {
	for tab, header := range headers {
		s.mu.Lock()
		_, exists := s.rows[tab]
		s.mu.Unlock()
		if exists {
			continue
		}
		if err := s.AppendRow(ctx, tab, header); err != nil {
			return err
		}
	}
	return nil
}

// Rows returns a copy of everything appended to tab, header included.
func (s *Store) Rows(tab string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows[tab]))
	copy(out, s.rows[tab])
	return out
}

func joinCells(row []any) string {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = fmt.Sprint(v)
	}
	return strings.Join(cells, "\t")
}
