// Package bulkimport implements the spreadsheet onboarding pipeline: decode,
// validate, deduplicate, materialize, persist, notify, aggregate. Rows are
// independent units of work; no row failure aborts the job, and only an
// unreadable or empty file aborts before row processing begins.
package bulkimport

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core"
	"github.com/elimulabs/tuzo/core/college"
	"github.com/elimulabs/tuzo/core/student"
)

type Importer struct {
	students   student.Repository
	colleges   college.Repository
	mailer     core.Mailer
	logger     core.Logger
	credFn     core.CredentialFunc
	bcryptCost int
	appName    string
	loginURL   string
}

func NewImporter(
	students student.Repository,
	colleges college.Repository,
	mailer core.Mailer,
	logger core.Logger,
	conf *core.Config,
) *Importer {
	return &Importer{
		students:   students,
		colleges:   colleges,
		mailer:     mailer,
		logger:     logger,
		credFn:     core.DefaultCredentialFunc(conf.DefaultCredentialSuffix),
		bcryptCost: conf.BcryptCost,
		appName:    conf.AppName,
		loginURL:   conf.FrontendBaseURL + "/login",
	}
}

// Run executes one import job over an uploaded spreadsheet buffer. Rows are
// processed sequentially so two rows in the same file cannot race to claim
// the same natural key; the store's unique constraints stay the correctness
// boundary across concurrent jobs. The returned error is non-nil only for
// job aborts (ErrMalformedFile, ErrEmptyFile, ErrUnknownKind).
func (imp *Importer) Run(ctx context.Context, buf []byte, kind RecordKind, caller Caller) (*JobSummary, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := ReadWorkbook(buf)
	if err != nil {
		return nil, err
	}

	summary := newJobSummary(len(rows))
	for _, row := range rows {
		summary.add(imp.processRow(ctx, schema, row, caller))
	}
	return summary, nil
}

// processRow walks one row through every stage and always resolves it to
// exactly one terminal outcome. A panic inside row processing is caught here
// and classified as that row's error, never the job's.
func (imp *Importer) processRow(ctx context.Context, schema RecordSchema, row RawRow, caller Caller) (out RowOutcome) {
	out = RowOutcome{Row: row.Number}
	defer func() {
		if r := recover(); r != nil {
			imp.logger.Error(fmt.Sprintf("import row %d panicked: %v", row.Number, r))
			out.Status = RowError
			out.Reasons = []string{fmt.Sprintf("row processing failed: %v", r)}
			out.Email = nil
		}
	}()

	if reasons := schema.Validate(row); len(reasons) > 0 {
		out.Status = RowInvalid
		out.Reasons = reasons
		return out
	}

	switch schema.Kind {
	case KindStudent:
		return imp.processStudent(ctx, row, caller, out)
	default:
		return imp.processCollege(ctx, row, caller, out)
	}
}

func (imp *Importer) processStudent(ctx context.Context, row RawRow, caller Caller, out RowOutcome) RowOutcome {
	email := core.CleanString(row.Value("email"), true /* lower */)
	studentID := row.Value("studentid")

	// best-effort pre-check; the students_email_key/students_student_id_key
	// constraints are the authoritative uniqueness layer
	existing, err := imp.students.GetStudentByNaturalKey(ctx, email, studentID)
	if err == nil {
		out.Status = RowDuplicate
		out.Existing = existing.Email
		return out
	}
	if errors.Cause(err) != student.ErrNotFound {
		out.Status = RowError
		out.Reasons = []string{"duplicate check failed: " + err.Error()}
		return out
	}

	std, plain, err := imp.materializeStudent(row, caller)
	if err != nil {
		out.Status = RowError
		out.Reasons = []string{err.Error()}
		return out
	}

	created, err := imp.students.CreateStudent(ctx, std)
	if err != nil {
		out.Status = RowError
		out.Reasons = []string{persistenceReason(err)}
		return out
	}

	out.Status = RowCreated
	out.EntityID = created.ID
	out.Email = imp.sendWelcome(ctx, "welcome-student", created.FullName(), created.Email, plain)
	return out
}

func (imp *Importer) processCollege(ctx context.Context, row RawRow, caller Caller, out RowOutcome) RowOutcome {
	email := core.CleanString(row.Value("email"), true /* lower */)
	code := core.CleanString(row.Value("code"), true)

	existing, err := imp.colleges.GetCollegeByNaturalKey(ctx, email, code)
	if err == nil {
		out.Status = RowDuplicate
		out.Existing = existing.Email
		return out
	}
	if errors.Cause(err) != college.ErrNotFound {
		out.Status = RowError
		out.Reasons = []string{"duplicate check failed: " + err.Error()}
		return out
	}

	col, plain, err := imp.materializeCollege(row, caller)
	if err != nil {
		out.Status = RowError
		out.Reasons = []string{err.Error()}
		return out
	}

	created, err := imp.colleges.CreateCollege(ctx, col)
	if err != nil {
		out.Status = RowError
		out.Reasons = []string{persistenceReason(err)}
		return out
	}

	out.Status = RowCreated
	out.EntityID = created.ID
	out.Email = imp.sendWelcome(ctx, "welcome-college", created.Name, created.Email, plain)
	return out
}

// persistenceReason classifies a store write failure. A unique violation here
// means the pre-check raced another writer; it is reported as a persistence
// error, not folded back into the duplicate category.
func persistenceReason(err error) string {
	switch errors.Cause(err) {
	case student.ErrEmailExists, student.ErrStudentIDExists, college.ErrEmailExists, college.ErrCodeExists:
		return "duplicate key: " + err.Error()
	default:
		return "store write failed: " + err.Error()
	}
}

// sendWelcome delivers the credential email for a created record. Failure is
// recorded and never unwinds the create.
func (imp *Importer) sendWelcome(ctx context.Context, template, name, email, plain string) *EmailOutcome {
	msg := core.WelcomeEmail(imp.appName, template, core.WelcomeEmailData{
		Name:     name,
		Email:    email,
		Password: plain,
		LoginURL: imp.loginURL,
	})
	id, err := imp.mailer.Send(ctx, msg)
	if err != nil {
		imp.logger.Warn("welcome email failed for "+email, err)
		return &EmailOutcome{Status: EmailFailed, Reason: err.Error()}
	}
	return &EmailOutcome{Status: EmailSent, MessageID: id}
}
