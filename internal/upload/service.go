package upload

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kits-erp/marks-registry/internal/ctxutil"
	"github.com/kits-erp/marks-registry/internal/db"
	"github.com/kits-erp/marks-registry/internal/metrics"
	"github.com/kits-erp/marks-registry/internal/models"
	"github.com/kits-erp/marks-registry/internal/observability"
)

var (
	ErrNotApplicable = errors.New("component does not apply to this course type")
	ErrNotAssigned   = errors.New("faculty is not assigned to this subject with the required role")
)

// RowError points at one rejected sheet line.
type RowError struct {
	Line      int
	StudentID string
	Reason    string
}

// SheetError rejects a whole sheet. Nothing is written when it is returned.
type SheetError struct {
	Rows []RowError
}

func (e *SheetError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d invalid row(s)", len(e.Rows))
	for i, r := range e.Rows {
		if i == 5 {
			fmt.Fprintf(&b, "; and %d more", len(e.Rows)-i)
			break
		}
		fmt.Fprintf(&b, "; line %d (%s): %s", r.Line, r.StudentID, r.Reason)
	}
	return b.String()
}

type Request struct {
	FacultyID   string
	SubjectCode string
	Component   models.Component
	Rows        []Row
}

// Result reports what happened to each accepted row.
type Result struct {
	Applied int
	Locked  []string
	Missing []string
}

type Service struct {
	db  *sql.DB
	log *zap.Logger
}

func New(database *sql.DB, log *zap.Logger) *Service {
	return &Service{db: database, log: log}
}

// entry is a validated row ready to be written.
type entry struct {
	studentID  string
	value      float64
	ese        models.ESEMark
	attendance float64
}

// Apply checks the uploader's assignment, validates every row against the
// subject maxima and writes the sheet in one transaction.
func (s *Service) Apply(ctx context.Context, req Request) (*Result, error) {
	ctx = ctxutil.WithOp(ctxutil.WithActor(ctx, req.FacultyID), "upload_"+string(req.Component))
	log := s.log.With(
		zap.String("faculty_id", req.FacultyID),
		zap.String("subject", req.SubjectCode),
		zap.String("component", string(req.Component)),
	)

	res, err := s.apply(ctx, req)
	if err != nil {
		metrics.UploadErrors.Inc()
		log.Warn("upload rejected", zap.Error(err))
		if !rejection(err) {
			report(ctx, err)
		}
		return nil, err
	}
	metrics.UploadRows.WithLabelValues(string(req.Component), "applied").Add(float64(res.Applied))
	metrics.UploadRows.WithLabelValues(string(req.Component), "locked").Add(float64(len(res.Locked)))
	metrics.UploadRows.WithLabelValues(string(req.Component), "missing").Add(float64(len(res.Missing)))
	log.Info("upload applied",
		zap.Int("applied", res.Applied),
		zap.Int("locked", len(res.Locked)),
		zap.Int("missing", len(res.Missing)),
	)
	return res, nil
}

// rejection reports errors caused by the sheet or the uploader rather than
// by the system.
func rejection(err error) bool {
	var se *SheetError
	return errors.As(err, &se) ||
		errors.Is(err, ErrNotApplicable) ||
		errors.Is(err, ErrNotAssigned) ||
		errors.Is(err, ErrEmptySheet) ||
		errors.Is(err, db.ErrNotFound) ||
		errors.Is(err, db.ErrCheckViolation)
}

func report(ctx context.Context, err error) {
	op, _ := ctxutil.Op(ctx)
	tags := map[string]string{}
	if actor, ok := ctxutil.Actor(ctx); ok {
		tags["faculty_id"] = actor
	}
	observability.CaptureOpErr(err, op, tags)
}

func (s *Service) apply(ctx context.Context, req Request) (*Result, error) {
	subject, role, err := s.authorize(ctx, req)
	if err != nil {
		return nil, err
	}
	entries, err := validate(*subject, req.Component, req.Rows)
	if err != nil {
		return nil, err
	}

	// Theory ESE only fills records that faculty uploads already created.
	updateOnly := req.Component == models.ESE && role == models.DeputyCOE

	res := &Result{}
	err = db.InTx(ctx, s.db, func(tx *sql.Tx) error {
		*res = Result{}
		for _, e := range entries {
			err := write(ctx, tx, subject.Code, req.Component, updateOnly, e)
			switch {
			case err == nil:
				res.Applied++
			case errors.Is(err, db.ErrLocked):
				res.Locked = append(res.Locked, e.studentID)
			case updateOnly && errors.Is(err, db.ErrNotFound):
				res.Missing = append(res.Missing, e.studentID)
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("write %s marks for %s: %w", req.Component, subject.Code, err)
	}
	return res, nil
}

func (s *Service) authorize(ctx context.Context, req Request) (*models.Subject, models.Role, error) {
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	subject, err := db.GetSubject(dbCtx, s.db, req.SubjectCode)
	if err != nil {
		return nil, "", err
	}
	role, ok := models.UploaderRole(subject.CourseType, req.Component)
	if !ok {
		return nil, "", fmt.Errorf("%s on %s subject %s: %w", req.Component, subject.CourseType, subject.Code, ErrNotApplicable)
	}
	a, err := db.GetAssignment(dbCtx, s.db, req.FacultyID, subject.Code)
	if errors.Is(err, db.ErrNotFound) {
		return nil, "", fmt.Errorf("%s on %s needs role %s: %w", req.FacultyID, subject.Code, role, ErrNotAssigned)
	}
	if err != nil {
		return nil, "", err
	}
	if a.Role != role {
		return nil, "", fmt.Errorf("%s is %s on %s, %s upload needs %s: %w", req.FacultyID, a.Role, subject.Code, req.Component, role, ErrNotAssigned)
	}
	return subject, role, nil
}

func validate(subject models.Subject, c models.Component, rows []Row) ([]entry, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	var bad []RowError
	reject := func(r Row, format string, args ...any) {
		bad = append(bad, RowError{Line: r.Line, StudentID: r.StudentID, Reason: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]int, len(rows))
	out := make([]entry, 0, len(rows))
	for _, r := range rows {
		if prev, dup := seen[r.StudentID]; dup {
			reject(r, "duplicate of line %d", prev)
			continue
		}
		seen[r.StudentID] = r.Line

		e := entry{studentID: r.StudentID}
		if c == models.ESE {
			ese, err := models.ParseESE(r.Marks)
			if err != nil {
				reject(r, "%v", err)
				continue
			}
			if !ese.Absent() {
				if err := subject.CheckLimit(models.ESE, ese.Numeric()); err != nil {
					reject(r, "%v", err)
					continue
				}
			}
			e.ese = ese
		} else {
			v, err := strconv.ParseFloat(r.Marks, 64)
			if err != nil {
				reject(r, "marks %q is not a number", r.Marks)
				continue
			}
			if err := subject.CheckLimit(c, v); err != nil {
				reject(r, "%v", err)
				continue
			}
			e.value = v
		}
		if c == models.CIE {
			att, err := strconv.ParseFloat(r.Attendance, 64)
			if err != nil || att < 0 || math.IsNaN(att) || math.IsInf(att, 0) {
				reject(r, "attendance %q is not a non-negative number", r.Attendance)
				continue
			}
			e.attendance = att
		}
		out = append(out, e)
	}
	if len(bad) > 0 {
		return nil, &SheetError{Rows: bad}
	}
	return out, nil
}

func write(ctx context.Context, tx *sql.Tx, subjectCode string, c models.Component, updateOnly bool, e entry) error {
	switch c {
	case models.CIE:
		return db.UpsertCIE(ctx, tx, e.studentID, subjectCode, e.value, e.attendance)
	case models.ISE:
		return db.UpsertISE(ctx, tx, e.studentID, subjectCode, e.value)
	case models.ESE:
		if updateOnly {
			return db.UpdateESE(ctx, tx, e.studentID, subjectCode, e.ese)
		}
		return db.UpsertESE(ctx, tx, e.studentID, subjectCode, e.ese)
	}
	return fmt.Errorf("unknown component %q", c)
}
