//go:build testutil
// +build testutil

package db_test

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kits-erp/marks-registry/internal/db"
	"github.com/kits-erp/marks-registry/internal/models"
)

func TestSubjects_SeededRows(t *testing.T) {
	ctx := reset(t)

	got, err := db.ListSubjects(ctx, h.DB, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, models.DefaultSubjects()) {
		t.Fatalf("seeded subjects:\n got %+v\nwant %+v", got, models.DefaultSubjects())
	}
}

func TestSubjects_SeedIsIdempotent(t *testing.T) {
	ctx := reset(t)

	n, err := db.SeedSubjects(ctx, h.DB, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("seed over a seeded table inserted %d rows", n)
	}

	if _, err := h.DB.ExecContext(ctx, `DELETE FROM subjects WHERE code = 'CE103'`); err != nil {
		t.Fatal(err)
	}
	n, err = db.SeedSubjects(ctx, h.DB, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want 1 restored subject, got %d", n)
	}
}

func TestSubjects_DuplicateCode(t *testing.T) {
	ctx := reset(t)

	err := db.CreateSubject(ctx, h.DB, models.NewSubject("CE101", "Another", models.Theory))
	if !errors.Is(err, db.ErrUniqueViolation) {
		t.Fatalf("want uniqueness violation, got %v", err)
	}
	var ce *db.ConstraintError
	if !errors.As(err, &ce) || ce.Constraint != "subjects_pkey" {
		t.Fatalf("want constraint subjects_pkey, got %#v", ce)
	}
}

func TestSubjects_CourseTypeDomain(t *testing.T) {
	ctx := reset(t)

	err := db.CreateSubject(ctx, h.DB, models.NewSubject("CE201", "Fluid Lab", models.CourseType("Lab")))
	if !errors.Is(err, db.ErrCheckViolation) {
		t.Fatalf("want domain violation, got %v", err)
	}
}

func TestSubjects_ColumnDefaults(t *testing.T) {
	ctx := reset(t)

	if _, err := h.DB.ExecContext(ctx, `
		INSERT INTO subjects (code, name, course_type) VALUES ('CE106', 'Geology', 'Theory')`); err != nil {
		t.Fatal(err)
	}
	s, err := db.GetSubject(ctx, h.DB, "CE106")
	if err != nil {
		t.Fatal(err)
	}
	want := models.NewSubject("CE106", "Geology", models.Theory)
	if *s != want {
		t.Fatalf("got %+v, want %+v", *s, want)
	}
}

func TestSubjects_FilterAndMissing(t *testing.T) {
	ctx := reset(t)

	practical := models.Practical
	got, err := db.ListSubjects(ctx, h.DB, &practical)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Code != "CE104" || got[1].Code != "CE105" {
		t.Fatalf("practical subjects: %+v", got)
	}

	if _, err := db.GetSubject(ctx, h.DB, "XX999"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}
