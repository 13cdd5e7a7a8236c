package user

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/opst/contactbook/cmd/contactadm/subcommands/common"
	contactbook "github.com/opst/contactbook/pkg"
	kdb "github.com/opst/contactbook/pkg/db"
	"github.com/youta-t/flarc"
)

type AddFlag struct {
	Password string `flag:"password" help:"password of the new user. When omitted, the first line of stdin is read."`
}

const ARG_USERNAME = "USERNAME"

func New() (flarc.Command, error) {
	add, err := flarc.NewCommand(
		"register a new user",
		AddFlag{},
		flarc.Args{
			{
				Name: ARG_USERNAME, Required: true,
				Help: "name of the new user.",
			},
		},
		common.NewTask(AddTask()),
		flarc.WithDescription(`
Register a new user, as the registration form of contactd does.

Example:

	echo "s3cret" | contactadm user add alice
`),
	)
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage users.",
		struct{}{},
		flarc.WithSubcommand("add", add),
	)
}

func AddTask() common.Task[AddFlag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cb contactbook.Contactbook,
		cl flarc.Commandline[AddFlag],
		params []any,
	) error {
		username := cl.Args()[ARG_USERNAME][0]
		if username == "" {
			return fmt.Errorf("%w: %s should not be empty", flarc.ErrUsage, ARG_USERNAME)
		}

		password := cl.Flags().Password
		if password == "" {
			line, err := bufio.NewReader(cl.Stdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("can not read password from stdin: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return fmt.Errorf("%w: password should not be empty", flarc.ErrUsage)
		}

		hash, err := cb.Passwords().Hash(password)
		if err != nil {
			return err
		}
		u, err := cb.Database().Users().Register(ctx, username, hash)
		if errors.Is(err, kdb.ErrConflict) {
			return fmt.Errorf("username is already taken: %s: %w", username, err)
		} else if err != nil {
			return err
		}

		logger.Printf("user is registered: %s", u.Username)
		_, err = fmt.Fprintf(cl.Stdout(), "%d\t%s\n", u.Id, u.Username)
		return err
	}
}
