package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ESEMark is the stored end-semester value: a decimal literal or Absent.
type ESEMark string

const (
	Absent     ESEMark = "AB"
	DefaultESE ESEMark = "0"
)

// ParseESE normalises raw sheet input. "ab" in any case becomes Absent,
// anything else must be a non-negative number.
func ParseESE(raw string) (ESEMark, error) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, string(Absent)) {
		return Absent, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("ese value %q is neither numeric nor AB", raw)
	}
	return ESEFromFloat(v)
}

func ESEFromFloat(v float64) (ESEMark, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("ese value %g is not a finite number", v)
	}
	if v < 0 {
		return "", fmt.Errorf("ese value %g is negative", v)
	}
	return ESEMark(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

func (e ESEMark) Absent() bool { return e == Absent }

// Numeric returns the score, counting Absent and unparsable values as 0.
func (e ESEMark) Numeric() float64 {
	if e.Absent() {
		return 0
	}
	v, err := strconv.ParseFloat(string(e), 64)
	if err != nil {
		return 0
	}
	return v
}

// Missing reports the untouched default value.
func (e ESEMark) Missing() bool { return e == DefaultESE }

// MarksRecord is one student's marks for one subject.
type MarksRecord struct {
	StudentID   string    `db:"student_id"`
	SubjectCode string    `db:"subject_code"`
	CIEMarks    float64   `db:"cie_marks"`
	ISEMarks    float64   `db:"ise_marks"`
	ESEMarks    ESEMark   `db:"ese_marks"`
	Attendance  float64   `db:"attendance"`
	IsLocked    bool      `db:"is_locked"`
	LastUpdated time.Time `db:"last_updated"`
}

// CheckAgainst validates every component of r against the subject maxima.
func (r MarksRecord) CheckAgainst(s Subject) error {
	if err := s.CheckLimit(CIE, r.CIEMarks); err != nil {
		return err
	}
	if err := s.CheckLimit(ISE, r.ISEMarks); err != nil {
		return err
	}
	if r.ESEMarks.Absent() {
		return nil
	}
	return s.CheckLimit(ESE, r.ESEMarks.Numeric())
}

// Completion summarises how far marks entry has progressed.
type Completion struct {
	Records     int `db:"records"`
	MissingCIE  int `db:"missing_cie"`
	MissingISE  int `db:"missing_ise"`
	MissingESE  int `db:"missing_ese"`
	ExceedCIE   int `db:"exceed_cie"`
	ExceedISE   int `db:"exceed_ise"`
	ExceedESE   int `db:"exceed_ese"`
	LockedCount int `db:"locked"`
}

func (c Completion) Missing() int { return c.MissingCIE + c.MissingISE + c.MissingESE }
func (c Completion) Exceeds() int { return c.ExceedCIE + c.ExceedISE + c.ExceedESE }
func (c Completion) Ready() bool  { return c.Records > 0 && c.Missing() == 0 && c.Exceeds() == 0 }
