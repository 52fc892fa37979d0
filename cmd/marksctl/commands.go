package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/kits-erp/marks-registry/internal/db"
	"github.com/kits-erp/marks-registry/internal/export"
	"github.com/kits-erp/marks-registry/internal/metrics"
	"github.com/kits-erp/marks-registry/internal/models"
	"github.com/kits-erp/marks-registry/internal/upload"
)

type env struct {
	db  *sql.DB
	log *zap.Logger
	out io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"migrate":  {"apply pending schema migrations", runMigrate},
	"seed":     {"insert the default subjects if missing", runSeed},
	"assign":   {"assign a faculty member to a subject", runAssign},
	"unassign": {"remove a faculty assignment", runUnassign},
	"upload":   {"upload a CSV or XLSX marks sheet", runUpload},
	"lock":     {"lock marks of a subject or one student", runLock},
	"status":   {"show marks completion status", runStatus},
	"template": {"write a blank XLSX upload sheet", runTemplate},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: marksctl <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-9s %s\n", n, commands[n].summary)
	}
}

func runMigrate(ctx context.Context, e *env, args []string) error {
	if err := flag.NewFlagSet("migrate", flag.ContinueOnError).Parse(args); err != nil {
		return err
	}
	return db.Migrate(ctx, e.db, e.log)
}

func runSeed(ctx context.Context, e *env, args []string) error {
	if err := flag.NewFlagSet("seed", flag.ContinueOnError).Parse(args); err != nil {
		return err
	}
	n, err := db.SeedSubjects(ctx, e.db, e.log)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d subject(s) inserted\n", n)
	return nil
}

type assignFlags struct {
	faculty, subject, role string
}

func parseAssign(name string, args []string, withRole bool) (assignFlags, error) {
	var f assignFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.faculty, "faculty", "", "faculty id")
	fs.StringVar(&f.subject, "subject", "", "subject code")
	if withRole {
		fs.StringVar(&f.role, "role", string(models.Faculty), `role: "Faculty" or "Deputy COE"`)
	}
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.faculty == "" || f.subject == "" {
		return f, errors.New("-faculty and -subject are required")
	}
	return f, nil
}

func runAssign(ctx context.Context, e *env, args []string) error {
	f, err := parseAssign("assign", args, true)
	if err != nil {
		return err
	}
	role, err := models.ParseRole(f.role)
	if err != nil {
		return err
	}
	a := models.Assignment{FacultyID: f.faculty, SubjectCode: f.subject, Role: role}
	if err := a.Validate(); err != nil {
		return err
	}
	if err := db.AssignFaculty(ctx, e.db, a); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s assigned to %s as %s\n", a.FacultyID, a.SubjectCode, a.Role)
	return nil
}

func runUnassign(ctx context.Context, e *env, args []string) error {
	f, err := parseAssign("unassign", args, false)
	if err != nil {
		return err
	}
	return db.RemoveAssignment(ctx, e.db, f.faculty, f.subject)
}

func runUpload(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	faculty := fs.String("faculty", "", "uploading faculty id")
	subject := fs.String("subject", "", "subject code")
	component := fs.String("component", "", "cie, ise or ese")
	file := fs.String("file", "", "path to .csv or .xlsx sheet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *faculty == "" || *subject == "" || *file == "" {
		return errors.New("-faculty, -subject and -file are required")
	}
	c, err := models.ParseComponent(*component)
	if err != nil {
		return err
	}
	rows, err := upload.ParseFile(*file)
	if err != nil {
		metrics.UploadErrors.Inc()
		return err
	}

	res, err := upload.New(e.db, e.log).Apply(ctx, upload.Request{
		FacultyID:   *faculty,
		SubjectCode: *subject,
		Component:   c,
		Rows:        rows,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d row(s) applied\n", res.Applied)
	if len(res.Locked) > 0 {
		fmt.Fprintf(e.out, "locked, not changed: %s\n", strings.Join(res.Locked, ", "))
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(e.out, "no marks record yet: %s\n", strings.Join(res.Missing, ", "))
	}
	return nil
}

func runLock(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	subjects := fs.String("subject", "", "comma separated subject codes")
	student := fs.String("student", "", "lock only this student's record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	codes := splitList(*subjects)
	if len(codes) == 0 {
		return errors.New("-subject is required")
	}
	if *student != "" {
		if len(codes) != 1 {
			return errors.New("-student needs exactly one -subject")
		}
		if err := db.LockMarks(ctx, e.db, *student, codes[0]); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s/%s locked\n", *student, codes[0])
		return nil
	}
	n, err := db.LockSubjects(ctx, e.db, codes)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d record(s) locked\n", n)
	return nil
}

func runStatus(ctx context.Context, e *env, args []string) error {
	if err := flag.NewFlagSet("status", flag.ContinueOnError).Parse(args); err != nil {
		return err
	}
	c, err := db.CompletionStatus(ctx, e.db)
	if err != nil {
		return err
	}
	over, err := db.ExceedingRecords(ctx, e.db)
	if err != nil {
		return err
	}
	return printStatus(e.out, c, over)
}

func runTemplate(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	subject := fs.String("subject", "", "subject code")
	component := fs.String("component", "", "cie, ise or ese")
	students := fs.String("students", "", "comma separated student ids added to those already on record")
	dir := fs.String("dir", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := models.ParseComponent(*component)
	if err != nil {
		return err
	}
	s, err := db.GetSubject(ctx, e.db, *subject)
	if err != nil {
		return err
	}
	if _, ok := models.UploaderRole(s.CourseType, c); !ok {
		return fmt.Errorf("%s does not apply to %s subject %s", c, s.CourseType, s.Code)
	}
	records, err := db.ListMarksBySubject(ctx, e.db, s.Code)
	if err != nil {
		return err
	}
	ids := mergeIDs(records, splitList(*students))

	f, err := export.UploadTemplate(*s, c, ids)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	path := filepath.Join(*dir, export.TemplateFilename(*s, c))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	fmt.Fprintf(e.out, "%s written with %d student(s)\n", path, len(ids))
	return nil
}

// mergeIDs keeps record order and appends extra ids not yet on record.
func mergeIDs(records []models.MarksRecord, extra []string) []string {
	seen := make(map[string]bool, len(records)+len(extra))
	out := make([]string, 0, len(records)+len(extra))
	for _, r := range records {
		if !seen[r.StudentID] {
			seen[r.StudentID] = true
			out = append(out, r.StudentID)
		}
	}
	for _, id := range extra {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func printStatus(w io.Writer, c models.Completion, over []models.MarksRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "records\t%d\n", c.Records)
	fmt.Fprintf(tw, "locked\t%d\n", c.LockedCount)
	fmt.Fprintf(tw, "missing CIE / ISE / ESE\t%d / %d / %d\n", c.MissingCIE, c.MissingISE, c.MissingESE)
	fmt.Fprintf(tw, "above maximum CIE / ISE / ESE\t%d / %d / %d\n", c.ExceedCIE, c.ExceedISE, c.ExceedESE)
	fmt.Fprintf(tw, "ready\t%t\n", c.Ready())
	if len(over) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "student\tsubject\tcie\tise\tese")
		for _, r := range over {
			fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\n", r.StudentID, r.SubjectCode, r.CIEMarks, r.ISEMarks, r.ESEMarks)
		}
	}
	return tw.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
