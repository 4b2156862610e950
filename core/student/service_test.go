package student_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/elimulabs/tuzo/core"
	"github.com/elimulabs/tuzo/core/student"
	emailsvc "github.com/elimulabs/tuzo/services/email"
	logsvc "github.com/elimulabs/tuzo/services/logger"
	inmemdb "github.com/elimulabs/tuzo/storage/database/inmem"
)

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(logsvc.NewStdLogger(nil))
	os.Exit(m.Run())
}

func setup(t *testing.T) (*student.Service, student.Repository, *emailsvc.MailerMock) {
	t.Helper()
	conf := &core.Config{
		AppName:                 "Tuzo",
		FrontendBaseURL:         "http://localhost:3000",
		BcryptCost:              bcrypt.MinCost,
		DefaultCredentialSuffix: "@123",
	}
	db := inmemdb.Open()
	repo := inmemdb.NewStudentRepository(db)
	mailer := emailsvc.NewMailerMock()
	svc := student.NewService(repo, mailer, logsvc.NewStdLogger(nil), conf)
	return svc, repo, mailer
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults are applied and the credential is derived", func(t *testing.T) {
		svc, _, mailer := setup(t)

		std, err := svc.Create(ctx, student.NewStudent{
			FirstName: "John",
			LastName:  "Doe",
			Email:     "john@example.com",
			StudentID: "stu001",
		})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		year := time.Now().UTC().Year()
		assert.NotEmpty(t, std.ID)
		assert.Equal(t, year, std.EnrollmentYear)
		assert.Equal(t, student.StatusActive, std.Status)
		assert.NoError(t, std.CheckPassword("STU001@123"))

		if assert.Len(t, mailer.SentMessages, 1) {
			data := mailer.SentMessages[0].TemplateData.(core.WelcomeEmailData)
			assert.Equal(t, "STU001@123", data.Password)
		}
	})

	t.Run("duplicate natural key is a validation error", func(t *testing.T) {
		svc, _, _ := setup(t)

		ns := student.NewStudent{FirstName: "John", LastName: "Doe", Email: "john@example.com", StudentID: "STU001"}
		if _, err := svc.Create(ctx, ns); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		_, err := svc.Create(ctx, ns)
		vErr, ok := err.(*core.ValidationError)
		if !ok {
			t.Fatalf("Create() error = %v; want *core.ValidationError", err)
		}
		if assert.Len(t, vErr.Fields, 1) {
			assert.Equal(t, "email", vErr.Fields[0].Field)
		}
	})

	t.Run("failed welcome email does not revert the create", func(t *testing.T) {
		svc, repo, mailer := setup(t)
		mailer.FailAll = true

		_, err := svc.Create(ctx, student.NewStudent{
			FirstName: "Jane", LastName: "Smith", Email: "jane@example.com", StudentID: "STU002",
		})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if _, err = repo.GetStudentByEmail(ctx, "jane@example.com"); err != nil {
			t.Errorf("GetStudentByEmail() failed: %v", err)
		}
	})
}

func TestServiceResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(t)

	if _, err := svc.Create(ctx, student.NewStudent{
		FirstName: "John", LastName: "Doe", Email: "john@example.com", StudentID: "STU001",
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := svc.ResetPassword(ctx, "John@Example.com", "n3w-pass"); err != nil {
		t.Fatalf("ResetPassword() failed: %v", err)
	}

	std, err := repo.GetStudentByEmail(ctx, "john@example.com")
	if err != nil {
		t.Fatalf("GetStudentByEmail() failed: %v", err)
	}
	assert.NoError(t, std.CheckPassword("n3w-pass"))
	assert.Error(t, std.CheckPassword("STU001@123"))
}
