// Package db opens the subscriber store and applies its migrations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/Nazarious-ucu/waitlist-api/migrations"

	// database/sql drivers for the supported dialects
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DialectSQLite = "sqlite"
	DialectPgx    = "pgx"
)

var ErrUnsupportedDialect = errors.New("unsupported database dialect")

// Open connects to the store. For sqlite, source is a file name (or a full
// "file:" URI); for pgx it is a PostgreSQL connection string.
func Open(ctx context.Context, dialect, source string) (*sql.DB, error) {
	if source == "" {
		return nil, errors.New("database name cannot be empty")
	}

	var dsn string
	switch dialect {
	case DialectSQLite:
		dsn = source
		if !strings.HasPrefix(source, "file:") {
			dsn = "file:" + source + "?cache=shared&mode=rwc&_time_format=sqlite"
		}
	case DialectPgx:
		dsn = source
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the embedded goose migrations for the dialect.
func Migrate(db *sql.DB, dialect string) error {
	var gooseDialect, dir string
	switch dialect {
	case DialectSQLite:
		gooseDialect, dir = "sqlite3", "sqlite"
	case DialectPgx:
		gooseDialect, dir = "postgres", "postgres"
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}

	return goose.Up(db, dir)
}
