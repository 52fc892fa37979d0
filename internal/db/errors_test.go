package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		want       error
		constraint string
	}{
		{"pgx_unique", &pgconn.PgError{Code: "23505", ConstraintName: "subjects_pkey"}, ErrUniqueViolation, "subjects_pkey"},
		{"pgx_fk", &pgconn.PgError{Code: "23503", ConstraintName: "marks_master_subject_code_fkey"}, ErrForeignKeyViolation, "marks_master_subject_code_fkey"},
		{"pq_check", &pq.Error{Code: "23514", Constraint: "assignments_role_check"}, ErrCheckViolation, "assignments_role_check"},
		{"pq_not_null", fmt.Errorf("exec: %w", &pq.Error{Code: "23502"}), ErrCheckViolation, ""},
		{"no_rows", sql.ErrNoRows, ErrNotFound, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
			var ce *ConstraintError
			if errors.As(got, &ce) && ce.Constraint != tc.constraint {
				t.Fatalf("constraint = %q, want %q", ce.Constraint, tc.constraint)
			}
		})
	}
}

func TestClassify_KeepsDriverError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Detail: "Key (code)=(CE101) already exists."}
	got := wrap("create subject", pgErr)

	var back *pgconn.PgError
	if !errors.As(got, &back) || back != pgErr {
		t.Fatalf("driver error lost in %v", got)
	}
	if want := "create subject: uniqueness violation: Key (code)=(CE101) already exists."; got.Error() != want {
		t.Fatalf("message %q, want %q", got.Error(), want)
	}
}

func TestClassify_PassThrough(t *testing.T) {
	other := errors.New("connection reset")
	if got := classify(other); got != other {
		t.Fatalf("unknown error rewritten to %v", got)
	}
	serialization := &pgconn.PgError{Code: "40001"}
	if got := classify(serialization); got != serialization {
		t.Fatalf("non-integrity pg error rewritten to %v", got)
	}
	if classify(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}
