package models

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	Faculty   Role = "Faculty"
	DeputyCOE Role = "Deputy COE"
)

func (r Role) Valid() bool {
	return r == Faculty || r == DeputyCOE
}

// ParseRole accepts the stored spelling and a few shell-friendly aliases.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "faculty":
		return Faculty, nil
	case "deputy coe", "deputy-coe", "deputy_coe", "coe":
		return DeputyCOE, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Assignment links one faculty member to one subject with exactly one role.
type Assignment struct {
	FacultyID   string `db:"faculty_id"`
	SubjectCode string `db:"subject_code"`
	Role        Role   `db:"role"`
}

func (a Assignment) Validate() error {
	var errs []error
	if strings.TrimSpace(a.FacultyID) == "" {
		errs = append(errs, errors.New("faculty id is empty"))
	}
	if strings.TrimSpace(a.SubjectCode) == "" {
		errs = append(errs, errors.New("subject code is empty"))
	}
	if !a.Role.Valid() {
		errs = append(errs, fmt.Errorf("role %q is not Faculty or Deputy COE", a.Role))
	}
	return errors.Join(errs...)
}

// UploaderRole returns the role allowed to enter component c for a subject
// of type ct. ok is false when the component does not apply to the course type.
func UploaderRole(ct CourseType, c Component) (role Role, ok bool) {
	switch ct {
	case Theory:
		if c == ESE {
			return DeputyCOE, true
		}
		return Faculty, c == CIE || c == ISE
	case Practical:
		return Faculty, c == ISE || c == ESE
	}
	return "", false
}
