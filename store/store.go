package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"go.uber.org/zap"

	"github.com/vargraph/vargraph/internal/storeerr"
)

// Terminal node ids, seeded at store init per spec.md §6.
const (
	PathStartNodeID int64 = 1
	PathEndNodeID   int64 = 2
)

// Config configures a Store. Zero value is usable: DSN defaults to an
// in-memory database and Logger defaults to a no-op logger.
type Config struct {
	// DSN is the modernc.org/sqlite data source name, e.g. "file:test.db"
	// or "file::memory:?cache=shared". Empty means ":memory:".
	DSN string

	SequenceCacheSize   int
	PathCacheSize       int
	BlockGroupCacheSize int

	Logger *zap.Logger
}

func (c Config) dsn() string {
	if c.DSN == "" {
		return ":memory:"
	}
	return c.DSN
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Store owns the *sql.DB handle and the process-wide logger. Per spec.md §5
// the core assumes a single writer and never suspends mid-operation; Store
// does not pool multiple writer connections for that reason.
type Store struct {
	DB     *sql.DB
	Log    *zap.Logger
	Config Config
}

// Open opens (creating if necessary) the backing store at cfg's DSN and
// applies the schema migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.dsn())
	if err != nil {
		return nil, storeerr.NewStore("open", err)
	}
	// Core assumes a single writer (spec.md §5); a single connection avoids
	// SQLite's "database is locked" surprises under the default rollback
	// journal.
	db.SetMaxOpenConns(1)

	s := &Store{DB: db, Log: cfg.logger(), Config: cfg}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the backing connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Tx runs fn inside a single transaction, committing on success and rolling
// back on error or panic. spec.md §5 requires that a logical operation's
// writes be grouped into one all-or-nothing transaction; this is the core's
// only transaction boundary primitive. Within this module it is used by the
// schema migration and collection.Collections.BulkCreate; the other
// multi-statement mutations (BlockGroup.Clone, BlockGroup.InsertChange, ...)
// do not run inside a transaction opened here.
func (s *Store) Tx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return storeerr.NewStore("begin", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return storeerr.NewStore("rollback", errors.Join(err, rbErr))
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return storeerr.NewStore("commit", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a UNIQUE/PRIMARY KEY constraint
// failure from the sqlite driver. modernc.org/sqlite surfaces these as a
// plain error whose message contains SQLite's own wording; matching on that
// text is the documented way to classify them since the driver does not
// export a typed constraint-code API as rich as CGo sqlite3 bindings do.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// InsertOrFetch executes insert; if it fails with a unique-constraint
// violation, it runs fetch to recover the existing identity instead of
// propagating the error. Any other error is wrapped as a storeerr.Store.
// This is the single recovery point every idempotent-create operation
// (Sequence.Intern, Node.Create, Edge.Create, BlockGroup.Create) funnels
// through, per spec.md §7's "uniqueness violations on idempotent creation
// ... are recovered locally."
func InsertOrFetch[T any](ctx context.Context, op string, insert func(context.Context) (T, error), fetch func(context.Context) (T, error)) (T, error) {
	v, err := insert(ctx)
	if err == nil {
		return v, nil
	}
	if IsUniqueViolation(err) {
		v, fetchErr := fetch(ctx)
		if fetchErr != nil {
			var zero T
			return zero, storeerr.NewStore(op+":fetch-after-conflict", fetchErr)
		}
		return v, nil
	}
	var zero T
	return zero, storeerr.NewStore(op, err)
}

// execResultID runs a statement that returns the new row id via
// RETURNING (id) and scans that id. The create operations in this module
// do not call it; they use ExecContext and LastInsertId.
func execResultID(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("query row: %w", err)
	}
	return id, nil
}
