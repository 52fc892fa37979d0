package db

import (
	"context"
	"fmt"

	"github.com/kits-erp/marks-registry/internal/models"
)

// CompletionStatus counts records whose components are still at their
// defaults or above the subject maxima. CIE only counts for theory subjects.
// An absent ESE is complete and scores 0 for the limit check.
func CompletionStatus(ctx context.Context, q Querier) (models.Completion, error) {
	var c models.Completion
	err := q.QueryRowContext(ctx, `
		WITH m AS (
			SELECT mm.*, s.course_type, s.cie_max, s.ise_max, s.ese_max,
			       CASE WHEN mm.ese_marks = 'AB' THEN 0
			            ELSE mm.ese_marks::double precision END AS ese_numeric
			FROM marks_master mm
			JOIN subjects s ON s.code = mm.subject_code
		)
		SELECT count(*),
		       count(*) FILTER (WHERE course_type = 'Theory' AND cie_marks = 0),
		       count(*) FILTER (WHERE ise_marks = 0),
		       count(*) FILTER (WHERE ese_marks = '0'),
		       count(*) FILTER (WHERE cie_marks > cie_max),
		       count(*) FILTER (WHERE ise_marks > ise_max),
		       count(*) FILTER (WHERE ese_numeric > ese_max),
		       count(*) FILTER (WHERE is_locked)
		FROM m`,
	).Scan(&c.Records, &c.MissingCIE, &c.MissingISE, &c.MissingESE,
		&c.ExceedCIE, &c.ExceedISE, &c.ExceedESE, &c.LockedCount)
	if err != nil {
		return models.Completion{}, fmt.Errorf("completion status: %w", classify(err))
	}
	return c, nil
}

// ExceedingRecords lists records with any component above its maximum.
func ExceedingRecords(ctx context.Context, q Querier) ([]models.MarksRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT mm.student_id, mm.subject_code, mm.cie_marks, mm.ise_marks, mm.ese_marks,
		       mm.attendance, mm.is_locked, mm.last_updated
		FROM marks_master mm
		JOIN subjects s ON s.code = mm.subject_code
		WHERE mm.cie_marks > s.cie_max
		   OR mm.ise_marks > s.ise_max
		   OR CASE WHEN mm.ese_marks = 'AB' THEN 0
		           ELSE mm.ese_marks::double precision END > s.ese_max
		ORDER BY mm.subject_code, mm.student_id`)
	if err != nil {
		return nil, wrap("exceeding records", err)
	}
	defer rows.Close()

	var out []models.MarksRecord
	for rows.Next() {
		r, err := scanMarks(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
