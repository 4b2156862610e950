package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrEmailExists     = errors.New("a student with this email already exists")
	ErrStudentIDExists = errors.New("a student with this student ID already exists")
)

type (
	Repository interface {
		// GetStudentByNaturalKey matches on email OR studentID.
		GetStudentByNaturalKey(ctx context.Context, email, studentID string) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		UpdateStudentPassword(ctx context.Context, id string, hash []byte) error
	}

	Service struct {
		repo   Repository
		mailer core.Mailer
		logger core.Logger
		conf   *core.Config
		credFn core.CredentialFunc
	}
)

func NewService(repo Repository, mailer core.Mailer, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:   repo,
		mailer: mailer,
		logger: logger,
		conf:   conf,
		credFn: core.DefaultCredentialFunc(conf.DefaultCredentialSuffix),
	}
}

// Create registers a single student. The same natural-key rules as the bulk
// import apply: email and studentID must be unique, an omitted password
// defaults to the derived credential, and the plaintext is only ever sent in
// the welcome email.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if existing, err := svc.repo.GetStudentByNaturalKey(ctx, ns.Email, ns.StudentID); err == nil {
		field := "student_id"
		if existing.Email == ns.Email {
			field = "email"
		}
		return Student{}, core.NewValidationError(
			errors.New("student already exists"),
			core.FieldError{Field: field, Error: "a student with this value already exists"},
		)
	} else if errors.Cause(err) != ErrNotFound {
		return Student{}, errors.Wrap(err, "checking student uniqueness")
	}

	plain := ns.Password
	if plain == "" {
		plain = svc.credFn(ns.StudentID)
	}

	now := time.Now().UTC()
	std := Student{
		Name:           Name{First: ns.FirstName, Last: ns.LastName},
		Email:          ns.Email,
		StudentID:      ns.StudentID,
		Department:     ns.Department,
		Coordinator:    ns.Coordinator,
		ContactNumber:  ns.ContactNumber,
		Address:        ns.Address,
		Gender:         ns.Gender,
		EnrollmentYear: ns.EnrollmentYear,
		Batch:          ns.Batch,
		GPA:            ns.GPA,
		Attendance:     ns.Attendance,
		Skills:         Skills{Technical: ns.Skills},
		Status:         ns.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ns.DOB != "" {
		dob, err := time.Parse("2006-01-02", ns.DOB)
		if err != nil {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "dob", Error: "must be a date in YYYY-MM-DD format"})
		}
		std.DOB = dob
	}
	if std.EnrollmentYear == 0 {
		std.EnrollmentYear = now.Year()
	}
	if std.Batch == "" {
		std.Batch = now.Format("2006")
	}
	if std.Status == "" {
		std.Status = StatusActive
	}
	if err := std.SetPassword(plain, svc.conf.BcryptCost); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}

	created, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}

	// credential delivery is best-effort; the account exists either way
	msg := core.WelcomeEmail(svc.conf.AppName, "welcome-student", core.WelcomeEmailData{
		Name:     created.FullName(),
		Email:    created.Email,
		Password: plain,
		LoginURL: svc.conf.FrontendBaseURL + "/login",
	})
	if _, err = svc.mailer.Send(ctx, msg); err != nil {
		svc.logger.Warn("welcome email failed for "+created.Email, err)
	}
	return created, nil
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

// ResetPassword rehashes and stores a new password for the student matching
// the given email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	std, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = std.SetPassword(pwd, svc.conf.BcryptCost); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdateStudentPassword(ctx, std.ID, std.PasswordHash)
}
