package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kits-erp/marks-registry/internal/models"
)

const marksColumns = `student_id, subject_code, cie_marks, ise_marks, ese_marks, attendance, is_locked, last_updated`

// InsertMarks creates a record holding only table defaults.
func InsertMarks(ctx context.Context, q Querier, studentID, subjectCode string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO marks_master (student_id, subject_code) VALUES ($1, $2)`,
		studentID, subjectCode,
	)
	return wrap(fmt.Sprintf("insert marks %s/%s", studentID, subjectCode), err)
}

func GetMarks(ctx context.Context, q Querier, studentID, subjectCode string) (*models.MarksRecord, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+marksColumns+` FROM marks_master
		WHERE student_id = $1 AND subject_code = $2`,
		studentID, subjectCode,
	)
	r, err := scanMarks(row)
	if err != nil {
		return nil, wrap(fmt.Sprintf("get marks %s/%s", studentID, subjectCode), err)
	}
	return r, nil
}

func ListMarksBySubject(ctx context.Context, q Querier, subjectCode string) ([]models.MarksRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+marksColumns+` FROM marks_master
		WHERE subject_code = $1
		ORDER BY student_id`,
		subjectCode,
	)
	if err != nil {
		return nil, wrap("list marks", err)
	}
	defer rows.Close()

	var out []models.MarksRecord
	for rows.Next() {
		r, err := scanMarks(rows)
		if err != nil {
			return nil, fmt.Errorf("scan marks: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpsertCIE stores CIE marks and attendance, creating the record when absent.
// A locked record is left untouched and ErrLocked is returned.
func UpsertCIE(ctx context.Context, q Querier, studentID, subjectCode string, cie, attendance float64) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO marks_master (student_id, subject_code, cie_marks, attendance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, subject_code)
		DO UPDATE SET cie_marks = EXCLUDED.cie_marks,
		              attendance = EXCLUDED.attendance,
		              last_updated = now()
		WHERE marks_master.is_locked = false`,
		studentID, subjectCode, cie, attendance,
	)
	return upsertResult("upsert cie", studentID, subjectCode, res, err)
}

func UpsertISE(ctx context.Context, q Querier, studentID, subjectCode string, ise float64) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO marks_master (student_id, subject_code, ise_marks)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, subject_code)
		DO UPDATE SET ise_marks = EXCLUDED.ise_marks,
		              last_updated = now()
		WHERE marks_master.is_locked = false`,
		studentID, subjectCode, ise,
	)
	return upsertResult("upsert ise", studentID, subjectCode, res, err)
}

func UpsertESE(ctx context.Context, q Querier, studentID, subjectCode string, ese models.ESEMark) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO marks_master (student_id, subject_code, ese_marks)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, subject_code)
		DO UPDATE SET ese_marks = EXCLUDED.ese_marks,
		              last_updated = now()
		WHERE marks_master.is_locked = false`,
		studentID, subjectCode, string(ese),
	)
	return upsertResult("upsert ese", studentID, subjectCode, res, err)
}

// UpdateESE changes ESE marks of an existing record only.
func UpdateESE(ctx context.Context, q Querier, studentID, subjectCode string, ese models.ESEMark) error {
	res, err := q.ExecContext(ctx, `
		UPDATE marks_master
		SET ese_marks = $3, last_updated = now()
		WHERE student_id = $1 AND subject_code = $2 AND is_locked = false`,
		studentID, subjectCode, string(ese),
	)
	if err != nil {
		return wrap("update ese", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	return explainMiss(ctx, q, "update ese", studentID, subjectCode, time.Time{})
}

// UpdateMarks overwrites all components of r if the stored last_updated
// still equals r.LastUpdated. It returns the stored record after the write.
func UpdateMarks(ctx context.Context, q Querier, r models.MarksRecord) (*models.MarksRecord, error) {
	row := q.QueryRowContext(ctx, `
		UPDATE marks_master
		SET cie_marks = $3, ise_marks = $4, ese_marks = $5, attendance = $6, last_updated = now()
		WHERE student_id = $1 AND subject_code = $2
		  AND is_locked = false
		  AND last_updated = $7
		RETURNING `+marksColumns,
		r.StudentID, r.SubjectCode, r.CIEMarks, r.ISEMarks, string(r.ESEMarks), r.Attendance, r.LastUpdated,
	)
	out, err := scanMarks(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, explainMiss(ctx, q, "update marks", r.StudentID, r.SubjectCode, r.LastUpdated)
	}
	if err != nil {
		return nil, wrap("update marks", err)
	}
	return out, nil
}

func LockMarks(ctx context.Context, q Querier, studentID, subjectCode string) error {
	res, err := q.ExecContext(ctx, `
		UPDATE marks_master
		SET is_locked = true, last_updated = now()
		WHERE student_id = $1 AND subject_code = $2 AND is_locked = false`,
		studentID, subjectCode,
	)
	if err != nil {
		return wrap("lock marks", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	err = explainMiss(ctx, q, "lock marks", studentID, subjectCode, time.Time{})
	if errors.Is(err, ErrLocked) {
		return nil
	}
	return err
}

// LockSubjects locks every unlocked record of the given subjects and
// returns how many records changed.
func LockSubjects(ctx context.Context, q Querier, subjectCodes []string) (int64, error) {
	if len(subjectCodes) == 0 {
		return 0, nil
	}
	res, err := q.ExecContext(ctx, `
		UPDATE marks_master
		SET is_locked = true, last_updated = now()
		WHERE subject_code = ANY($1) AND is_locked = false`,
		pq.Array(subjectCodes),
	)
	if err != nil {
		return 0, wrap("lock subjects", err)
	}
	return res.RowsAffected()
}

func upsertResult(op, studentID, subjectCode string, res sql.Result, err error) error {
	if err != nil {
		return wrap(fmt.Sprintf("%s %s/%s", op, studentID, subjectCode), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s/%s: %w", op, studentID, subjectCode, ErrLocked)
	}
	return nil
}

// explainMiss finds out why a guarded update touched no row.
func explainMiss(ctx context.Context, q Querier, op, studentID, subjectCode string, expected time.Time) error {
	var locked bool
	var updated time.Time
	err := q.QueryRowContext(ctx, `
		SELECT is_locked, last_updated FROM marks_master
		WHERE student_id = $1 AND subject_code = $2`,
		studentID, subjectCode,
	).Scan(&locked, &updated)
	switch {
	case err != nil:
		return wrap(fmt.Sprintf("%s %s/%s", op, studentID, subjectCode), err)
	case locked:
		return fmt.Errorf("%s %s/%s: %w", op, studentID, subjectCode, ErrLocked)
	case !expected.IsZero() && !updated.Equal(expected):
		return fmt.Errorf("%s %s/%s: %w", op, studentID, subjectCode, ErrStale)
	}
	return fmt.Errorf("%s %s/%s: no row changed", op, studentID, subjectCode)
}

func scanMarks(r rowScanner) (*models.MarksRecord, error) {
	var m models.MarksRecord
	var ese string
	if err := r.Scan(&m.StudentID, &m.SubjectCode, &m.CIEMarks, &m.ISEMarks, &ese, &m.Attendance, &m.IsLocked, &m.LastUpdated); err != nil {
		return nil, err
	}
	m.ESEMarks = models.ESEMark(ese)
	return &m, nil
}
