package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/opst/contactbook/cmd/contactadm/subcommands/common"
	subschema "github.com/opst/contactbook/cmd/contactadm/subcommands/schema"
	subuser "github.com/opst/contactbook/cmd/contactadm/subcommands/user"
	"github.com/opst/contactbook/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	logger := log.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", path.Base(os.Args[0])))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	schema := try.To(subschema.New()).OrFatal(logger)
	user := try.To(subuser.New()).OrFatal(logger)

	cmd := try.To(
		flarc.NewCommandGroup(
			"contactbook administration",
			common.DefaultCommonFlags(),
			flarc.WithSubcommand("schema", schema),
			flarc.WithSubcommand("user", user),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd, flarc.WithHelp(true)))
}
