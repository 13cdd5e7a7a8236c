package schema

import (
	"context"
	"fmt"
	"log"

	"github.com/opst/contactbook/cmd/contactadm/subcommands/common"
	contactbook "github.com/opst/contactbook/pkg"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	upgrade, err := flarc.NewCommand(
		"upgrade database schema",
		struct{}{},
		flarc.Args{},
		common.NewTask(UpgradeTask()),
		flarc.WithDescription(`
Apply schema versions newer than the one in the database.

For postgres, versions are read from the schema repository (--schema).
For sqlite, migrations built in contactd are applied.

The version after upgrade is printed to stdout.
`),
	)
	if err != nil {
		return nil, err
	}

	version, err := flarc.NewCommand(
		"show database schema version",
		struct{}{},
		flarc.Args{},
		common.NewTask(VersionTask()),
	)
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage database schema.",
		struct{}{},
		flarc.WithSubcommand("upgrade", upgrade),
		flarc.WithSubcommand("version", version),
	)
}

func UpgradeTask() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cb contactbook.Contactbook,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		schema := cb.Database().Schema()
		before, err := schema.Version(ctx)
		if err != nil {
			return err
		}
		if err := schema.Upgrade(ctx); err != nil {
			return err
		}
		after, err := schema.Version(ctx)
		if err != nil {
			return err
		}

		if before == after {
			logger.Printf("schema is up to date: version %d", after)
		} else {
			logger.Printf("schema is upgraded: version %d -> %d", before, after)
		}
		_, err = fmt.Fprintln(cl.Stdout(), after)
		return err
	}
}

func VersionTask() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cb contactbook.Contactbook,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		v, err := cb.Database().Schema().Version(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cl.Stdout(), v)
		return err
	}
}
