package upload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data line of a marks sheet. Marks stay raw until the
// component is known, since ESE accepts "AB".
type Row struct {
	Line       int
	StudentID  string
	Marks      string
	Attendance string
}

var ErrEmptySheet = errors.New("sheet has no data rows")

// ParseFile reads a .csv or .xlsx marks sheet.
func ParseFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ParseCSV(f)
	case ".xlsx":
		return ParseXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported sheet type %q", ext)
	}
}

func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsFromRecords(records)
}

// ParseXLSX reads the first worksheet of an Excel workbook.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rowsFromRecords(records)
}

type columns struct {
	id, marks, attendance int
}

func locateColumns(header []string) (columns, error) {
	c := columns{id: -1, marks: -1, attendance: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "id", "student_id", "student id":
			c.id = i
		case "marks", "mark", "score":
			c.marks = i
		case "attendance":
			c.attendance = i
		}
	}
	if c.id < 0 || c.marks < 0 {
		return c, fmt.Errorf("header %q must contain id and marks columns", strings.Join(header, ","))
	}
	return c, nil
}

func rowsFromRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}
	cols, err := locateColumns(records[0])
	if err != nil {
		return nil, err
	}

	var out []Row
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := Row{
			Line:       i + 2,
			StudentID:  cell(rec, cols.id),
			Marks:      cell(rec, cols.marks),
			Attendance: cell(rec, cols.attendance),
		}
		if row.StudentID == "" {
			return nil, fmt.Errorf("line %d: empty student id", row.Line)
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, ErrEmptySheet
	}
	return out, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
