package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kits-erp/marks-registry/internal/models"
	"github.com/kits-erp/marks-registry/internal/upload"
)

func TestUploadTemplate_RoundTripsThroughParser(t *testing.T) {
	s := models.DefaultSubjects()[0]
	f, err := UploadTemplate(s, models.ESE, []string{"S001", "S002"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if err := f.SetCellStr(templateSheet, "B2", "45"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStr(templateSheet, "B3", "AB"); err != nil {
		t.Fatal(err)
	}
	note, _ := f.GetCellValue(templateSheet, "D1")
	if !strings.Contains(note, "max 60") || !strings.Contains(note, "AB for absent") {
		t.Fatalf("note %q", note)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	rows, err := upload.ParseXLSX(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].StudentID != "S001" || rows[0].Marks != "45" || rows[1].Marks != "AB" {
		t.Fatalf("rows %+v", rows)
	}
}

func TestTemplateHeader(t *testing.T) {
	if h := TemplateHeader(models.CIE); len(h) != 3 || h[2] != "attendance" {
		t.Fatalf("cie header %v", h)
	}
	if h := TemplateHeader(models.ISE); len(h) != 2 {
		t.Fatalf("ise header %v", h)
	}
}

func TestTemplateFilename(t *testing.T) {
	s := models.Subject{Code: "CE/104"}
	if got := TemplateFilename(s, models.ISE); got != "CE_104 ISE marks.xlsx" {
		t.Fatalf("got %q", got)
	}
}

func TestColumnName(t *testing.T) {
	for n, want := range map[int]string{1: "A", 26: "Z", 27: "AA", 53: "BA"} {
		if got := columnName(n); got != want {
			t.Fatalf("columnName(%d) = %s, want %s", n, got, want)
		}
	}
}
