package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kits-erp/marks-registry/internal/models"
)

// AssignFaculty links a faculty member to a subject. A second role for the
// same pair is a uniqueness violation.
func AssignFaculty(ctx context.Context, database *sql.DB, a models.Assignment) error {
	_, err := database.ExecContext(ctx, `
		INSERT INTO assignments (faculty_id, subject_code, role)
		VALUES ($1, $2, $3)`,
		a.FacultyID, a.SubjectCode, string(a.Role),
	)
	return wrap(fmt.Sprintf("assign %s to %s", a.FacultyID, a.SubjectCode), err)
}

func GetAssignment(ctx context.Context, q Querier, facultyID, subjectCode string) (*models.Assignment, error) {
	var a models.Assignment
	var role string
	err := q.QueryRowContext(ctx, `
		SELECT faculty_id, subject_code, role
		FROM assignments
		WHERE faculty_id = $1 AND subject_code = $2`,
		facultyID, subjectCode,
	).Scan(&a.FacultyID, &a.SubjectCode, &role)
	if err != nil {
		return nil, wrap("get assignment", err)
	}
	a.Role = models.Role(role)
	return &a, nil
}

func ListAssignmentsByFaculty(ctx context.Context, database *sql.DB, facultyID string) ([]models.Assignment, error) {
	return listAssignments(ctx, database, `WHERE faculty_id = $1 ORDER BY subject_code`, facultyID)
}

func ListAssignmentsBySubject(ctx context.Context, database *sql.DB, subjectCode string) ([]models.Assignment, error) {
	return listAssignments(ctx, database, `WHERE subject_code = $1 ORDER BY faculty_id`, subjectCode)
}

func listAssignments(ctx context.Context, database *sql.DB, where string, arg string) ([]models.Assignment, error) {
	rows, err := database.QueryContext(ctx, `SELECT faculty_id, subject_code, role FROM assignments `+where, arg)
	if err != nil {
		return nil, wrap("list assignments", err)
	}
	defer rows.Close()

	var out []models.Assignment
	for rows.Next() {
		var a models.Assignment
		var role string
		if err := rows.Scan(&a.FacultyID, &a.SubjectCode, &role); err != nil {
			return nil, err
		}
		a.Role = models.Role(role)
		out = append(out, a)
	}
	return out, rows.Err()
}

func RemoveAssignment(ctx context.Context, database *sql.DB, facultyID, subjectCode string) error {
	res, err := database.ExecContext(ctx, `
		DELETE FROM assignments WHERE faculty_id = $1 AND subject_code = $2`,
		facultyID, subjectCode,
	)
	if err != nil {
		return wrap("remove assignment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("remove assignment %s/%s: %w", facultyID, subjectCode, ErrNotFound)
	}
	return nil
}
