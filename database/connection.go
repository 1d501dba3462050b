package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects SQL flavour details such as type names and catalog queries.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Rows is the subset of a result set used by this module.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Conn is a database connection borrowed from the caller. Statements are
// executed as given; errors are returned as the driver reports them.
type Conn interface {
	Dialect() Dialect
	Exec(ctx context.Context, stmt string) error
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Close()
}

// Open connects to the database named by url. postgres:// and
// postgresql:// URLs use pgx; sqlite:// URLs, file: URIs and plain paths
// use SQLite. "sqlite://" alone opens a private in-memory database. Any
// other scheme is rejected.
func Open(ctx context.Context, url string) (Conn, error) {
	switch {
	case url == "":
		return nil, fmt.Errorf("database URL not set")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(ctx, url)
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			path = ":memory:"
		}
		return OpenSQLite(ctx, path)
	case strings.HasPrefix(url, "file:"):
		return OpenSQLite(ctx, url)
	case strings.Contains(url, "://"):
		scheme, _, _ := strings.Cut(url, "://")
		return nil, fmt.Errorf("unsupported database URL scheme %q (want postgres://, postgresql://, sqlite:// or a file path)", scheme)
	default:
		return OpenSQLite(ctx, url)
	}
}

// OpenPostgres creates a pgx pool and checks that the server answers.
func OpenPostgres(ctx context.Context, url string) (Conn, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return &pgxConn{pool: pool}, nil
}

// OpenSQLite opens a SQLite database file. The pool is limited to a single
// connection so that an in-memory database is shared by all statements.
func OpenSQLite(ctx context.Context, path string) (Conn, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return &sqlConn{db: db, dialect: SQLite}, nil
}

// FromDB wraps an already opened *sql.DB.
func FromDB(db *sql.DB, dialect Dialect) Conn {
	return &sqlConn{db: db, dialect: dialect, borrowed: true}
}

type pgxConn struct {
	pool *pgxpool.Pool
}

func (c *pgxConn) Dialect() Dialect { return Postgres }

func (c *pgxConn) Exec(ctx context.Context, stmt string) error {
	_, err := c.pool.Exec(ctx, stmt)
	return err
}

func (c *pgxConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *pgxConn) Close() {
	c.pool.Close()
}

type sqlConn struct {
	db       *sql.DB
	dialect  Dialect
	borrowed bool
}

func (c *sqlConn) Dialect() Dialect { return c.dialect }

func (c *sqlConn) Exec(ctx context.Context, stmt string) error {
	_, err := c.db.ExecContext(ctx, stmt)
	return err
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

// Close closes the database unless it was supplied by the caller.
func (c *sqlConn) Close() {
	if !c.borrowed {
		c.db.Close()
	}
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	r.Rows.Close()
}
