package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kits-erp/marks-registry/internal/models"
)

// SeedSubjects inserts the default subjects, leaving existing codes untouched.
// It returns how many rows were actually inserted.
func SeedSubjects(ctx context.Context, database *sql.DB, log *zap.Logger) (int, error) {
	inserted := 0
	err := InTx(ctx, database, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO subjects (code, name, course_type, cie_max, ise_max, ese_max, credits)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (code) DO NOTHING`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, s := range models.DefaultSubjects() {
			res, err := stmt.ExecContext(ctx, s.Code, s.Name, string(s.CourseType), s.CIEMax, s.ISEMax, s.ESEMax, s.Credits)
			if err != nil {
				return fmt.Errorf("insert subject %s: %w", s.Code, classify(err))
			}
			if n, _ := res.RowsAffected(); n == 1 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed subjects: %w", err)
	}
	log.Info("subjects seeded", zap.Int("inserted", inserted))
	return inserted, nil
}
