package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type CourseType string

const (
	Theory    CourseType = "Theory"
	Practical CourseType = "Practical"
)

func (c CourseType) Valid() bool {
	return c == Theory || c == Practical
}

// Component is one assessed part of a subject's marks.
type Component string

const (
	CIE Component = "cie"
	ISE Component = "ise"
	ESE Component = "ese"
)

func ParseComponent(s string) (Component, error) {
	switch c := Component(strings.ToLower(strings.TrimSpace(s))); c {
	case CIE, ISE, ESE:
		return c, nil
	}
	return "", fmt.Errorf("unknown component %q", s)
}

// Default maxima and credit weight applied by the subjects table.
const (
	DefaultCIEMax  = 20.0
	DefaultISEMax  = 20.0
	DefaultESEMax  = 60.0
	DefaultCredits = 3
)

type Subject struct {
	Code       string     `db:"code"`
	Name       string     `db:"name"`
	CourseType CourseType `db:"course_type"`
	CIEMax     float64    `db:"cie_max"`
	ISEMax     float64    `db:"ise_max"`
	ESEMax     float64    `db:"ese_max"`
	Credits    int        `db:"credits"`
}

// NewSubject fills the table defaults for maxima and credits.
func NewSubject(code, name string, ct CourseType) Subject {
	return Subject{
		Code:       code,
		Name:       name,
		CourseType: ct,
		CIEMax:     DefaultCIEMax,
		ISEMax:     DefaultISEMax,
		ESEMax:     DefaultESEMax,
		Credits:    DefaultCredits,
	}
}

func (s Subject) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Code) == "" {
		errs = append(errs, errors.New("code is empty"))
	}
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if !s.CourseType.Valid() {
		errs = append(errs, fmt.Errorf("course type %q is not Theory or Practical", s.CourseType))
	}
	if s.CIEMax < 0 || s.ISEMax < 0 || s.ESEMax < 0 {
		errs = append(errs, errors.New("maximum marks must be non-negative"))
	}
	return errors.Join(errs...)
}

func (s Subject) MaxFor(c Component) float64 {
	switch c {
	case CIE:
		return s.CIEMax
	case ISE:
		return s.ISEMax
	case ESE:
		return s.ESEMax
	}
	return 0
}

// CheckLimit reports an error when v is not finite, negative or above the
// component maximum.
func (s Subject) CheckLimit(c Component, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s %s: marks %g is not a finite number", s.Code, c, v)
	}
	if v < 0 {
		return fmt.Errorf("%s %s: negative marks %g", s.Code, c, v)
	}
	if m := s.MaxFor(c); v > m {
		return fmt.Errorf("%s %s: marks %g exceed maximum %g", s.Code, c, v, m)
	}
	return nil
}

// DefaultSubjects are the rows seeded into an empty registry.
func DefaultSubjects() []Subject {
	return []Subject{
		{Code: "CE101", Name: "Engineering Mathematics I", CourseType: Theory, CIEMax: 20, ISEMax: 20, ESEMax: 60, Credits: 4},
		{Code: "CE102", Name: "Engineering Mechanics", CourseType: Theory, CIEMax: 20, ISEMax: 20, ESEMax: 60, Credits: 3},
		{Code: "CE103", Name: "Building Materials and Construction", CourseType: Theory, CIEMax: 20, ISEMax: 20, ESEMax: 60, Credits: 3},
		{Code: "CE104", Name: "Surveying Lab", CourseType: Practical, CIEMax: 0, ISEMax: 25, ESEMax: 25, Credits: 1},
		{Code: "CE105", Name: "Engineering Graphics Lab", CourseType: Practical, CIEMax: 0, ISEMax: 25, ESEMax: 25, Credits: 1},
	}
}
