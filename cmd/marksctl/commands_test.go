package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/kits-erp/marks-registry/internal/models"
)

func TestUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf)
	for name := range commands {
		if !strings.Contains(buf.String(), "  "+name) {
			t.Errorf("usage misses %s", name)
		}
	}
}

func TestParseAssign(t *testing.T) {
	f, err := parseAssign("assign", []string{"-faculty", "F001", "-subject", "CE101", "-role", "Deputy COE"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if f.faculty != "F001" || f.subject != "CE101" || f.role != "Deputy COE" {
		t.Fatalf("flags %+v", f)
	}
	if _, err := parseAssign("unassign", []string{"-faculty", "F001"}, false); err == nil {
		t.Fatal("missing -subject accepted")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" CE101, ,CE104,")
	if want := []string{"CE101", "CE104"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
	if splitList("") != nil {
		t.Fatal("empty list must be nil")
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	c := models.Completion{Records: 2, MissingESE: 1, ExceedCIE: 1}
	over := []models.MarksRecord{{StudentID: "S001", SubjectCode: "CE101", CIEMarks: 21, ISEMarks: 10, ESEMarks: "AB"}}
	if err := printStatus(&buf, c, over); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"ready", "false", "S001", "CE101", "AB", "0 / 0 / 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
}

func TestMergeIDs(t *testing.T) {
	records := []models.MarksRecord{{StudentID: "S002"}, {StudentID: "S001"}}
	got := mergeIDs(records, []string{"S001", "S003"})
	if want := []string{"S002", "S001", "S003"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
