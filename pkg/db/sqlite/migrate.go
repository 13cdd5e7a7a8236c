package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	xe "github.com/opst/contactbook/pkg/errors"
)

const migrationTable = "schema_migrations"

const (
	markUp   = "-- +migrate Up"
	markDown = "-- +migrate Down"
)

// applyMigrations executes *.sql files in migrationFS at most once per file,
// in filename order.
func applyMigrations(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS) error {
	files, err := migrationFiles(migrationFS)
	if err != nil {
		return err
	}

	if _, err := sqlDB.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);`, migrationTable)); err != nil {
		return xe.WrapWithNote("ensure migration table", err)
	}

	for _, file := range files {
		applied, err := isApplied(ctx, sqlDB, file)
		if err != nil {
			return xe.WrapWithNote("check migration "+file, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return xe.WrapWithNote("read migration "+file, err)
		}
		up := extractUpMigration(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}

		if err := func() error {
			tx, err := sqlDB.BeginTx(ctx, nil)
			if err != nil {
				return err
			}
			defer tx.Rollback()

			if _, err := tx.ExecContext(ctx, up); err != nil && !isAlreadyExistsError(err) {
				return err
			}
			if _, err := tx.ExecContext(
				ctx,
				fmt.Sprintf(`INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)`, migrationTable),
				file, toMillis(time.Now()),
			); err != nil {
				return err
			}
			return tx.Commit()
		}(); err != nil {
			return xe.WrapWithNote("apply migration "+file, err)
		}
	}
	return nil
}

func migrationFiles(migrationFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return nil, xe.WrapWithNote("read migrations dir", err)
	}

	files := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// countApplied returns how many migrations are recorded as applied.
//
// A database before any migration has 0.
func countApplied(ctx context.Context, sqlDB *sql.DB) (int, error) {
	var exists int
	if err := sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`,
		migrationTable,
	).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, xe.Wrap(err)
	}

	var count int
	if err := sqlDB.QueryRowContext(
		ctx, `SELECT count(*) FROM `+migrationTable,
	).Scan(&count); err != nil {
		return 0, xe.Wrap(err)
	}
	return count, nil
}

// extractUpMigration returns the SQL in the "-- +migrate Up" section.
//
// Files without the marker are executed as a whole.
func extractUpMigration(content string) string {
	upIdx := strings.Index(content, markUp)
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, markDown)
	if downIdx == -1 {
		return content[upIdx+len(markUp):]
	}
	return content[upIdx+len(markUp) : downIdx]
}

func isAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

func isApplied(ctx context.Context, sqlDB *sql.DB, name string) (bool, error) {
	var found int
	if err := sqlDB.QueryRowContext(
		ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name,
	).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
