package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	ErrUniqueViolation     = errors.New("uniqueness violation")
	ErrForeignKeyViolation = errors.New("referential violation")
	ErrCheckViolation      = errors.New("domain violation")
	ErrNotFound            = errors.New("not found")
	ErrLocked              = errors.New("marks record is locked")
	ErrStale               = errors.New("marks record was modified concurrently")
)

// SQLSTATE codes of the integrity constraint violation class.
const (
	codeUnique     = "23505"
	codeForeignKey = "23503"
	codeCheck      = "23514"
	codeNotNull    = "23502"
)

// ConstraintError is a storage constraint violation with the offending
// constraint attached. It unwraps to one of the Err*Violation sentinels.
type ConstraintError struct {
	Kind       error
	Constraint string
	Detail     string
	Err        error
}

func (e *ConstraintError) Error() string {
	msg := e.Kind.Error()
	if e.Constraint != "" {
		msg += " on " + e.Constraint
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConstraintError) Unwrap() []error { return []error{e.Kind, e.Err} }

// classify maps driver errors from either pgx or lib/pq onto the package
// sentinels. Errors it does not recognise are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var code, constraint, detail string
	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code, constraint, detail = pgErr.Code, pgErr.ConstraintName, pgErr.Detail
	case errors.As(err, &pqErr):
		code, constraint, detail = string(pqErr.Code), pqErr.Constraint, pqErr.Detail
	default:
		return err
	}

	var kind error
	switch code {
	case codeUnique:
		kind = ErrUniqueViolation
	case codeForeignKey:
		kind = ErrForeignKeyViolation
	case codeCheck, codeNotNull:
		kind = ErrCheckViolation
	default:
		return err
	}
	return &ConstraintError{Kind: kind, Constraint: constraint, Detail: detail, Err: err}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, classify(err))
}
