package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	contactbook "github.com/opst/contactbook/pkg"
	sconf "github.com/opst/contactbook/pkg/configs/server"
	"github.com/opst/contactbook/pkg/housekeeping"
	"golang.org/x/sync/errgroup"
)

func main() {
	pconfig := flag.String(
		"config", os.Getenv("CONTACTBOOK_CONFIG"), "path to config file",
	)
	schemaRepo := flag.String(
		"schema-repo", os.Getenv("CONTACTBOOK_SCHEMA"),
		"schema repository path (postgres only). overrides database.schemaRepository in config",
	)
	upgrade := flag.Bool("upgrade-schema", false, "upgrade database schema before start (postgres only)")
	loglevel := flag.String("loglevel", "warn", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := sconf.LoadServerConfig(*pconfig)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}

	repo := conf.Database().SchemaRepository()
	if *schemaRepo != "" {
		repo = *schemaRepo
	}
	db, err := contactbook.Connect(ctx, conf.Database(), repo)
	if err != nil {
		log.Fatalf("can not connect to database: %s", err)
	}
	defer db.Close()

	if *upgrade {
		if err := db.Schema().Upgrade(ctx); err != nil {
			log.Fatalf("can not upgrade schema: %s", err)
		}
	}
	{
		ctx_, ccan := db.Schema().Context(ctx)
		defer ccan()
		ctx = ctx_
	}
	if ctx.Err() != nil {
		log.Fatalf("database is not ready: %s", context.Cause(ctx))
	}

	cb := contactbook.Attach(conf, db)

	server, err := BuildServer(cb, *loglevel)
	if err != nil {
		log.Fatalf("can not build server: %s", err)
	}
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	if created, err := contactbook.BootstrapUsers(ctx, cb); err != nil {
		server.Logger.Fatalf("can not register bootstrap users: %s", err)
	} else {
		for _, u := range created {
			server.Logger.Infof("bootstrap user is registered: %s", u.Username)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := housekeeping.PurgeSessions(
			gctx, server.Logger, db.Sessions(), conf.Housekeeping().Interval(),
		); err != nil {
			server.Logger.Warnf("housekeeping stops: %s", err)
		}
		return nil
	})
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", conf.Port())
		var err error
		if *pcert != "" && *pkey != "" {
			err = server.StartTLS(addr, *pcert, *pkey)
		} else {
			err = server.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		server.Logger.Info("shutting down...")
		qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer qcancel()
		return server.Shutdown(qctx)
	})

	exit := 0
	if err := g.Wait(); err != nil {
		server.Logger.Error("server stops with error:", err)
		exit = 1
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		server.Logger.Infof("context has been done: %s", cause)
		exit = 1
	}

	cancel()
	os.Exit(exit)
}
