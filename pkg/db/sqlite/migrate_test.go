package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/opst/contactbook/pkg/utils/try"
)

func TestExtractUpMigration(t *testing.T) {
	type When struct {
		content string
	}
	type Then struct {
		up string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			got := strings.TrimSpace(extractUpMigration(when.content))
			if got != then.up {
				t.Errorf("got %q, want %q", got, then.up)
			}
		}
	}

	t.Run("without markers, whole content", theory(
		When{content: "CREATE TABLE a (x INTEGER);"},
		Then{up: "CREATE TABLE a (x INTEGER);"},
	))
	t.Run("with Up only", theory(
		When{content: "-- comment\n-- +migrate Up\nCREATE TABLE a (x INTEGER);\n"},
		Then{up: "CREATE TABLE a (x INTEGER);"},
	))
	t.Run("with Up and Down", theory(
		When{content: "-- +migrate Up\nCREATE TABLE a (x INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"},
		Then{up: "CREATE TABLE a (x INTEGER);"},
	))
}

func TestApplyMigrations(t *testing.T) {
	ctx := context.Background()
	sqlDB := try.To(sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "m.db"))).OrFatal(t)
	defer sqlDB.Close()

	if v := try.To(countApplied(ctx, sqlDB)).OrFatal(t); v != 0 {
		t.Errorf("fresh database: version = %d", v)
	}

	fs1 := fstest.MapFS{
		"001_a.sql":  {Data: []byte("-- +migrate Up\nCREATE TABLE a (x INTEGER);\n-- +migrate Down\nDROP TABLE a;")},
		"README.txt": {Data: []byte("not a migration")},
	}
	if err := applyMigrations(ctx, sqlDB, fs1); err != nil {
		t.Fatal(err)
	}
	if v := try.To(countApplied(ctx, sqlDB)).OrFatal(t); v != 1 {
		t.Errorf("after first: version = %d", v)
	}

	fs2 := fstest.MapFS{
		"001_a.sql": fs1["001_a.sql"],
		"002_b.sql": {Data: []byte("INSERT INTO a (x) VALUES (1);")},
	}
	for range 2 {
		if err := applyMigrations(ctx, sqlDB, fs2); err != nil {
			t.Fatal(err)
		}
	}
	if v := try.To(countApplied(ctx, sqlDB)).OrFatal(t); v != 2 {
		t.Errorf("after second: version = %d", v)
	}

	var rows int
	if err := sqlDB.QueryRowContext(ctx, `SELECT count(*) FROM a`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("002_b.sql is applied %d times", rows)
	}
}
