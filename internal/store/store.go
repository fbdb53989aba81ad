package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/folio/internal/compiler"
	"github.com/roach88/folio/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added single-parent and single-successor indexes on relation tables
const currentSchemaVersion = 1

// Store provides durable storage for compiled bibliographic graphs.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	ids compiler.IDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the ID source for Persons created during resolution.
// Default: compiler.UUIDv7Generator.
func WithIDGenerator(g compiler.IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and a compilation holds
	// its transaction for the whole pass.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, ids: compiler.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 enforces relation topology in both spaces: a node has at most
// one Aggregation parent, one Sequence successor and one Sequence predecessor.
func migrateToV1(db *sql.DB) error {
	stmts := []string{}
	for _, table := range []string{"work_relations", "expression_relations"} {
		stmts = append(stmts,
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_one_parent
				ON %s(to_id) WHERE kind = 'aggregation'`, table, table),
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_one_successor
				ON %s(from_id) WHERE kind = 'sequence'`, table, table),
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_one_predecessor
				ON %s(to_id) WHERE kind = 'sequence'`, table, table),
		)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// Compile runs one compilation inside a single transaction. Fallback names
// are resolved to Persons in the same transaction before the outline is
// read. The transaction commits only if the whole compilation succeeds.
func (s *Store) Compile(ctx context.Context, req Request, opts ...compiler.Option) (*compiler.Result, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("compile: begin tx: %w", err)
	}
	defer sqlTx.Rollback() // No-op if committed

	tx := &Tx{tx: sqlTx, ids: s.ids}

	fallback, err := resolveAll(ctx, tx, req.FallbackNames)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	res, err := compiler.Compile(ctx, tx, compiler.Input{
		Text:      req.Text,
		RootTitle: req.RootTitle,
		Fallback:  fallback,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	res.PersonsCreated = tx.personsCreated

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("compile: commit: %w", err)
	}
	return res, nil
}

// Request is one outline to compile into the store.
type Request struct {
	Text          string
	RootTitle     string
	FallbackNames []string
}

func resolveAll(ctx context.Context, tx *Tx, names []string) ([]ir.Person, error) {
	out := make([]ir.Person, 0, len(names))
	for _, name := range names {
		p, err := tx.ResolvePerson(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve fallback %q: %w", name, err)
		}
		out = append(out, p)
	}
	return out, nil
}
