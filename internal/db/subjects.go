package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kits-erp/marks-registry/internal/models"
)

const subjectColumns = `code, name, course_type, cie_max, ise_max, ese_max, credits`

func CreateSubject(ctx context.Context, database *sql.DB, s models.Subject) error {
	_, err := database.ExecContext(ctx, `
		INSERT INTO subjects (code, name, course_type, cie_max, ise_max, ese_max, credits)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.Code, s.Name, string(s.CourseType), s.CIEMax, s.ISEMax, s.ESEMax, s.Credits,
	)
	return wrap("create subject "+s.Code, err)
}

func GetSubject(ctx context.Context, q Querier, code string) (*models.Subject, error) {
	row := q.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE code = $1`, code)
	s, err := scanSubject(row)
	if err != nil {
		return nil, wrap("get subject "+code, err)
	}
	return s, nil
}

// ListSubjects returns subjects ordered by code. A nil courseType lists all.
func ListSubjects(ctx context.Context, database *sql.DB, courseType *models.CourseType) ([]models.Subject, error) {
	q := `SELECT ` + subjectColumns + ` FROM subjects`
	var args []any
	if courseType != nil {
		q += ` WHERE course_type = $1`
		args = append(args, string(*courseType))
	}
	q += ` ORDER BY code`

	rows, err := database.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("list subjects", err)
	}
	defer rows.Close()

	var out []models.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(r rowScanner) (*models.Subject, error) {
	var s models.Subject
	var ct string
	if err := r.Scan(&s.Code, &s.Name, &ct, &s.CIEMax, &s.ISEMax, &s.ESEMax, &s.Credits); err != nil {
		return nil, err
	}
	s.CourseType = models.CourseType(ct)
	return &s, nil
}
