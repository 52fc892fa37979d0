package upload

import (
	"errors"
	"strings"
	"testing"

	"github.com/kits-erp/marks-registry/internal/models"
)

func TestValidate_CIE(t *testing.T) {
	s := models.NewSubject("CE101", "Engineering Mathematics I", models.Theory)
	rows := []Row{
		{Line: 2, StudentID: "S001", Marks: "18", Attendance: "90"},
		{Line: 3, StudentID: "S002", Marks: "20", Attendance: "75.5"},
	}
	got, err := validate(s, models.CIE, rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].value != 20 || got[1].attendance != 75.5 {
		t.Fatalf("entries %+v", got)
	}
}

func TestValidate_RejectsWholeSheet(t *testing.T) {
	s := models.NewSubject("CE101", "Engineering Mathematics I", models.Theory)
	rows := []Row{
		{Line: 2, StudentID: "S001", Marks: "18", Attendance: "90"},
		{Line: 3, StudentID: "S002", Marks: "21", Attendance: "90"},
		{Line: 4, StudentID: "S003", Marks: "x", Attendance: "90"},
		{Line: 5, StudentID: "S004", Marks: "10", Attendance: ""},
		{Line: 6, StudentID: "S001", Marks: "10", Attendance: "90"},
		{Line: 7, StudentID: "S005", Marks: "NaN", Attendance: "90"},
		{Line: 8, StudentID: "S006", Marks: "Inf", Attendance: "90"},
		{Line: 9, StudentID: "S007", Marks: "10", Attendance: "Inf"},
		{Line: 10, StudentID: "S008", Marks: "10", Attendance: "NaN"},
	}
	_, err := validate(s, models.CIE, rows)
	var se *SheetError
	if !errors.As(err, &se) {
		t.Fatalf("want SheetError, got %v", err)
	}
	if len(se.Rows) != 8 {
		t.Fatalf("want 4 bad rows, got %+v", se.Rows)
	}
	if !strings.Contains(se.Rows[0].Reason, "exceed maximum 20") {
		t.Fatalf("first reason %q", se.Rows[0].Reason)
	}
	if !strings.Contains(se.Rows[3].Reason, "duplicate of line 2") {
		t.Fatalf("duplicate reason %q", se.Rows[3].Reason)
	}
}

func TestValidate_ESE(t *testing.T) {
	s := models.NewSubject("CE102", "Engineering Mechanics", models.Theory)
	got, err := validate(s, models.ESE, []Row{
		{Line: 2, StudentID: "S001", Marks: "ab"},
		{Line: 3, StudentID: "S002", Marks: "59.5"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ese != models.Absent || got[1].ese != "59.5" {
		t.Fatalf("entries %+v", got)
	}

	_, err = validate(s, models.ESE, []Row{{Line: 2, StudentID: "S001", Marks: "61"}})
	if err == nil {
		t.Fatal("ESE above maximum accepted")
	}
	_, err = validate(s, models.ESE, []Row{{Line: 2, StudentID: "S001", Marks: "NaN"}})
	if err == nil {
		t.Fatal("NaN ESE accepted")
	}
}

func TestSheetError_Message(t *testing.T) {
	e := &SheetError{}
	for i := 0; i < 7; i++ {
		e.Rows = append(e.Rows, RowError{Line: i + 2, StudentID: "S", Reason: "bad"})
	}
	if msg := e.Error(); !strings.HasPrefix(msg, "7 invalid row(s)") || !strings.HasSuffix(msg, "and 2 more") {
		t.Fatalf("message %q", msg)
	}
}

func TestRejection(t *testing.T) {
	for _, err := range []error{
		&SheetError{Rows: []RowError{{Line: 2}}},
		errors.Join(errors.New("wrapped"), ErrNotAssigned),
		ErrEmptySheet,
	} {
		if !rejection(err) {
			t.Errorf("%v must count as a rejection", err)
		}
	}
	if rejection(errors.New("connection reset by peer")) {
		t.Error("system failure counted as rejection")
	}
}
