package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	contactbook "github.com/opst/contactbook/pkg"
	sconf "github.com/opst/contactbook/pkg/configs/server"
	"github.com/youta-t/flarc"
)

// CommonFlags are flags of the root command, shared by all subcommands.
type CommonFlags struct {
	Config string `flag:"config" help:"path to the server config file. (env: CONTACTBOOK_CONFIG)"`
	Schema string `flag:"schema" help:"path to the postgres schema repository. Overrides database.schemaRepository in the config. (env: CONTACTBOOK_SCHEMA)"`
}

func DefaultCommonFlags() CommonFlags {
	return CommonFlags{
		Config: os.Getenv("CONTACTBOOK_CONFIG"),
		Schema: os.Getenv("CONTACTBOOK_SCHEMA"),
	}
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	cb contactbook.Contactbook,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask connects to the database in the server config, and runs task.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}
		if commonFlag.Config == "" {
			return fmt.Errorf("%w: flag --config (or env CONTACTBOOK_CONFIG) is required", flarc.ErrUsage)
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		conf, err := sconf.LoadServerConfig(commonFlag.Config)
		if err != nil {
			return fmt.Errorf("can not read configuration: %w", err)
		}
		repo := conf.Database().SchemaRepository()
		if commonFlag.Schema != "" {
			repo = commonFlag.Schema
		}
		db, err := contactbook.Connect(ctx, conf.Database(), repo)
		if err != nil {
			return fmt.Errorf("can not connect to database: %w", err)
		}
		defer db.Close()

		return task(ctx, logger, contactbook.Attach(conf, db), cl, newpos)
	}
}
