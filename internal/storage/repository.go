package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mysphere/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the database handle and one store per record kind.
type SQLiteRepository struct {
	db *sql.DB

	Expenses    *ExpenseStore
	BodyWeights *BodyWeightStore
	Wholesale   *WholesaleStore
}

// Option configures a SQLiteRepository.
type Option func(*options)

type options struct {
	loc *time.Location
}

// WithLocation sets the zone that scanned timestamps are presented in. The
// default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and migrates it.
func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	o := options{loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite repository ready",
		log.FieldComponent, log.ComponentStorage,
		"path", dbPath,
		"timezone", o.loc.String())

	return &SQLiteRepository{
		db:          db,
		Expenses:    newExpenseStore(db, o.loc),
		BodyWeights: newBodyWeightStore(db, o.loc),
		Wholesale:   newWholesaleStore(db, o.loc),
	}, nil
}

// Ping checks that the database still answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// dsn turns on WAL and a busy timeout; analytics reads run concurrently with writes.
func dsn(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}
