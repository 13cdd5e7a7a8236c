// Package sqlite is a ContactDatabase backed by an SQLite file.
//
// Its schema is embedded in the binary and applied on Open,
// so a single-host deployment needs no database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	kdb "github.com/opst/contactbook/pkg/db"
	"github.com/opst/contactbook/pkg/db/sqlite/migrations"
	xe "github.com/opst/contactbook/pkg/errors"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists contacts in SQLite.
type Store struct {
	sqlDB    *sql.DB
	users    *users
	profiles *profiles
	sessions *sessions
	keychain *keychain
	schema   *schema
}

var _ kdb.ContactDatabase = &Store{}

// Open opens the SQLite database file at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, xe.New("storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, xe.WrapWithNote("open sqlite db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, xe.WrapWithNote("ping sqlite db", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		sqlDB.Close()
		return nil, xe.WrapWithNote("run migrations", err)
	}

	return &Store{
		sqlDB:    sqlDB,
		users:    &users{db: sqlDB},
		profiles: &profiles{db: sqlDB},
		sessions: &sessions{db: sqlDB},
		keychain: &keychain{db: sqlDB},
		schema:   &schema{db: sqlDB},
	}, nil
}

func (s *Store) Users() kdb.UserInterface {
	return s.users
}

func (s *Store) Profiles() kdb.ProfileInterface {
	return s.profiles
}

func (s *Store) Sessions() kdb.SessionInterface {
	return s.sessions
}

func (s *Store) Keychain() kdb.KeychainInterface {
	return s.keychain
}

func (s *Store) Schema() kdb.SchemaInterface {
	return s.schema
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// schema of SQLite store is embedded, so it is always up to date after Open.
type schema struct {
	db *sql.DB
}

func (s *schema) Version(ctx context.Context) (int, error) {
	return countApplied(ctx, s.db)
}

func (s *schema) Upgrade(ctx context.Context) error {
	return applyMigrations(ctx, s.db, migrations.FS)
}

func (s *schema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0, false
	}
	return sqliteErr.Code(), true
}

func isUniqueViolation(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	switch code {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func identity(column string, value any) string {
	return fmt.Sprintf("%s=%v", column, value)
}
