package schema_test

import (
	"context"
	"io"
	"log"
	"strconv"
	"strings"
	"testing"

	"github.com/opst/contactbook/cmd/contactadm/subcommands/internal/commandline"
	"github.com/opst/contactbook/cmd/contactadm/subcommands/schema"
	"github.com/opst/contactbook/pkg/utils/try"
)

func TestSchemaTasks(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", log.LstdFlags)
	cb := commandline.SQLiteContactbook(t)

	run := func(t *testing.T, task func(*strings.Builder) error) int {
		t.Helper()
		stdout := new(strings.Builder)
		if err := task(stdout); err != nil {
			t.Fatal(err)
		}
		return try.To(strconv.Atoi(strings.TrimSpace(stdout.String()))).OrFatal(t)
	}
	cl := func(stdout *strings.Builder) commandline.MockCommandline[struct{}] {
		return commandline.MockCommandline[struct{}]{
			Fullname_: "contactadm schema", Stdout_: stdout, Stderr_: io.Discard,
		}
	}

	expected := try.To(cb.Database().Schema().Version(ctx)).OrFatal(t)
	if expected == 0 {
		t.Fatal("sqlite database has no schema")
	}

	t.Run("version prints the current version", func(t *testing.T) {
		got := run(t, func(stdout *strings.Builder) error {
			return schema.VersionTask()(ctx, logger, cb, cl(stdout), nil)
		})
		if got != expected {
			t.Errorf("version: got %d, want %d", got, expected)
		}
	})

	t.Run("upgrade of the latest schema changes nothing", func(t *testing.T) {
		got := run(t, func(stdout *strings.Builder) error {
			return schema.UpgradeTask()(ctx, logger, cb, cl(stdout), nil)
		})
		if got != expected {
			t.Errorf("version: got %d, want %d", got, expected)
		}
	})
}
