package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kits-erp/marks-registry/internal/app"
	"github.com/kits-erp/marks-registry/internal/config"
	"github.com/kits-erp/marks-registry/internal/ctxutil"
	"github.com/kits-erp/marks-registry/internal/db"
	"github.com/kits-erp/marks-registry/internal/jobs"
	"github.com/kits-erp/marks-registry/internal/logging"
	"github.com/kits-erp/marks-registry/internal/metrics"
	"github.com/kits-erp/marks-registry/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logging.Init(cfg.LogLevel, cfg.Env, "marksd")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	ctxutil.DefaultDBTimeout = cfg.DBTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxConns,
		MaxIdleConns:    cfg.DBMaxConns / 2,
		ConnMaxLifetime: 30 * time.Minute,
	}, logger)
	if err != nil {
		observability.CaptureErr(err)
		logger.Fatal("database", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(ctx, database, logger); err != nil {
		observability.CaptureErr(err)
		logger.Fatal("migrate", zap.Error(err))
	}

	srv, err := app.StartHTTP(cfg.HTTPAddr, database, logger)
	if err != nil {
		observability.CaptureErr(err)
		logger.Fatal("http", zap.Error(err))
	}

	runner := jobs.New(ctx, logger)
	runner.Every(cfg.AuditInterval, "completion_audit", func(ctx context.Context) error {
		ctx, cancel := ctxutil.WithDBTimeout(ctx)
		defer cancel()
		c, err := db.CompletionStatus(ctx, database)
		if err != nil {
			return err
		}
		metrics.SetCompletion(c)
		logger.Debug("completion audit",
			zap.Int("records", c.Records),
			zap.Int("missing", c.Missing()),
			zap.Int("exceeding", c.Exceeds()),
			zap.Bool("ready", c.Ready()),
		)
		return nil
	})

	logger.Info("marksd started", zap.String("env", cfg.Env))
	<-ctx.Done()
	logger.Info("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}
