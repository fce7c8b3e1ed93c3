// Package database wraps the SQL drivers behind the executor and
// introspection operations the rest of the service consumes. Statements
// are executed as-is; the database itself is the only validator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
)

const (
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
)

type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// DB owns a pooled connection to the target database. It is safe for
// concurrent use; every operation acquires and releases its own
// connection through the pool.
type DB struct {
	db     *sql.DB
	driver string
}

func Open(ctx context.Context, cfg Config) (*DB, error) {
	driverName, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverPostgres && cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{db: db, driver: cfg.Driver}, nil
}

// NewWithDB wires an existing database handle, used by tests.
func NewWithDB(db *sql.DB, driver string) *DB {
	return &DB{db: db, driver: driver}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) HealthCheck(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// ExecutionError reports a statement the database rejected. The driver
// message is preserved verbatim for the caller.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return "execute statement: " + e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Execute runs a single statement and materializes every returned row
// before releasing the connection. Column order follows the driver's
// result metadata. Statements without a result set yield the empty
// Result. Failures come back as *ExecutionError; there is no retry and
// no statement validation beyond what the database enforces.
func (d *DB) Execute(ctx context.Context, sqlText string) (Result, error) {
	if strings.TrimSpace(sqlText) == "" {
		return Result{}, &ExecutionError{Err: fmt.Errorf("sql is required")}
	}

	rows, err := d.db.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, &ExecutionError{Err: err}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, &ExecutionError{Err: err}
	}

	result := Result{Columns: columns, Rows: make([][]any, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return Result{}, &ExecutionError{Err: err}
		}
		result.Rows = append(result.Rows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return Result{}, &ExecutionError{Err: err}
	}

	return result, nil
}

// SampleRows returns up to limit rows from a table for schema browsing.
// The table name is identifier-quoted; everything else about the
// statement is fixed.
func (d *DB) SampleRows(ctx context.Context, table string, limit int) (Result, error) {
	if strings.TrimSpace(table) == "" {
		return Result{}, fmt.Errorf("table name is required")
	}
	if limit <= 0 {
		limit = 5
	}
	return d.Execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(table), limit))
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "pgx", nil
	case DriverDuckDB:
		return "duckdb", nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", driver)
	}
}
