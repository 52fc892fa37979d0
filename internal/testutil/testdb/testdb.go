//go:build testutil
// +build testutil

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/kits-erp/marks-registry/internal/db/migrations"
)

type DBHandle struct {
	DB     *sql.DB
	cancel func()
	stop   func(context.Context) error
}

func (h *DBHandle) Close() {
	if h.DB != nil {
		_ = h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
	if h.cancel != nil {
		h.cancel()
	}
}

// Start runs a throwaway Postgres container and applies all migrations,
// including the subject seed.
func Start(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:17-alpine"),
		postgres.WithDatabase("marks"),
		postgres.WithUsername("marks"),
		postgres.WithPassword("marks"),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	fail := func(err error) (*DBHandle, error) {
		_ = pg.Terminate(context.Background())
		cancel()
		return nil, err
	}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fail(err)
	}
	db, err := sql.Open("postgres", uri)
	if err != nil {
		return fail(err)
	}
	if err := waitReady(ctx, db); err != nil {
		return fail(err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		return fail(err)
	}

	return &DBHandle{
		DB:     db,
		cancel: cancel,
		stop:   pg.Terminate,
	}, nil
}

// Reset empties all tables and replays the subject seed migration.
func (h *DBHandle) Reset(ctx context.Context) error {
	if _, err := h.DB.ExecContext(ctx, `TRUNCATE marks_master, assignments, subjects`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	seed, err := fs.ReadFile(migrations.FS, seedMigration)
	if err != nil {
		return err
	}
	if _, err := h.DB.ExecContext(ctx, extractGooseUp(string(seed))); err != nil {
		return fmt.Errorf("reseed subjects: %w", err)
	}
	return nil
}

const seedMigration = "00002_seed_subjects.sql"

// extractGooseUp returns the part between "-- +goose Up" and "-- +goose Down".
func extractGooseUp(s string) string {
	upTag := "-- +goose Up"
	downTag := "-- +goose Down"
	upIdx := strings.Index(s, upTag)
	if upIdx == -1 {
		return s
	}
	rest := s[upIdx+len(upTag):]
	if downIdx := strings.Index(rest, downTag); downIdx != -1 {
		return rest[:downIdx]
	}
	return rest
}

func waitReady(ctx context.Context, db *sql.DB) error {
	dead := time.Now().Add(20 * time.Second)
	for time.Now().Before(dead) {
		if err := db.PingContext(ctx); err == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.New("db not ready")
}

func applyMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Println("[migrate] applied:")
	for _, r := range results {
		fmt.Println(" -", r.Source.Path)
	}
	return nil
}
