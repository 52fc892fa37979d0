package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kits-erp/marks-registry/internal/config"
	"github.com/kits-erp/marks-registry/internal/ctxutil"
	"github.com/kits-erp/marks-registry/internal/db"
	"github.com/kits-erp/marks-registry/internal/logging"
	"github.com/kits-erp/marks-registry/internal/observability"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logging.Init(cfg.LogLevel, cfg.Env, "marksctl")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		lg.Base.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	ctxutil.DefaultDBTimeout = cfg.DBTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{MaxOpenConns: cfg.DBMaxConns}, lg.Base)
	if err != nil {
		lg.Base.Error("database", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	e := &env{db: database, log: lg.Base, out: os.Stdout}
	if err := cmd.run(ctx, e, os.Args[2:]); err != nil {
		observability.CaptureOpErr(err, os.Args[1], nil)
		lg.Base.Error(os.Args[1]+" failed", zap.Error(err))
		flush()
		os.Exit(1)
	}
}
