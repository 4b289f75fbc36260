// Package database handles the relational store: users, login sessions and
// saved listing analyses.
//
// Go Pattern: We use the `sqlx` package which extends Go's standard `database/sql`
// with convenient features like scanning rows into structs. Unlike an ORM
// you write raw SQL, which gives you full control.
//
// Two backends are supported behind the same methods: PostgreSQL (lib/pq)
// for deployments and SQLite (modernc.org/sqlite, pure Go) for local use
// and tests. Queries are written with `?` placeholders and passed through
// Rebind, which rewrites them to `$1, $2, ...` for PostgreSQL.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"  // PostgreSQL driver, registers "postgres"
	"modernc.org/sqlite" // SQLite driver, registers "sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel errors returned by the store. Handlers map them to HTTP codes
// with errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Driver names as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// Tell sqlx which placeholder style the modernc driver expects.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB wraps the sqlx database connection with our application-specific methods.
// Go Pattern: Embedding (*sqlx.DB) gives us all of sqlx's methods automatically,
// plus we can add our own. This is Go's version of inheritance: composition.
type DB struct {
	*sqlx.DB
}

// ParseURL splits a database URL into a database/sql driver name and DSN.
// postgres:// and postgresql:// URLs go to lib/pq unchanged; sqlite://path
// opens a SQLite file with WAL, a busy timeout and foreign keys enabled.
func ParseURL(databaseURL string) (driverName, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL %q has no file path", databaseURL)
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dsn = "file:" + path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite"
		return DriverSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database URL %q (want postgres:// or sqlite://)", databaseURL)
	}
}

// New creates a new database connection with connection pooling configured.
func New(databaseURL string) (*DB, error) {
	driverName, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	// sqlx.Connect both opens the connection and pings the database
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driverName == DriverSQLite {
		// SQLite allows one writer at a time; a single connection avoids
		// "database is locked" errors under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(2 * time.Minute)
		db.SetConnMaxIdleTime(30 * time.Second)
	}

	return &DB{db}, nil
}

// IsSQLite reports whether the connection uses the SQLite driver.
func (db *DB) IsSQLite() bool {
	return db.DriverName() == DriverSQLite
}

// HealthCheck verifies the database connection is alive.
// Go Pattern: context.Context is passed to functions that may be slow or
// need cancellation (like database queries, HTTP requests).
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// now is the timestamp written into created_at style columns. Always UTC so
// SQLite's text timestamps sort chronologically.
func now() time.Time {
	return time.Now().UTC()
}

// isUniqueViolation reports whether err is a unique-constraint failure on
// either backend.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
