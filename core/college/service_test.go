package college_test

import (
	"context"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/elimulabs/tuzo/core"
	"github.com/elimulabs/tuzo/core/college"
	emailsvc "github.com/elimulabs/tuzo/services/email"
	logsvc "github.com/elimulabs/tuzo/services/logger"
	inmemdb "github.com/elimulabs/tuzo/storage/database/inmem"
)

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(logsvc.NewStdLogger(nil))
	os.Exit(m.Run())
}

func setup(t *testing.T) (*college.Service, college.Repository) {
	t.Helper()
	conf := &core.Config{
		AppName:                 "Tuzo",
		FrontendBaseURL:         "http://localhost:3000",
		BcryptCost:              bcrypt.MinCost,
		DefaultCredentialSuffix: "@123",
	}
	db := inmemdb.Open()
	repo := inmemdb.NewCollegeRepository(db)
	svc := college.NewService(repo, emailsvc.NewMailerMock(), logsvc.NewStdLogger(nil), conf)
	return svc, repo
}

func TestCollegeTypeValidator(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	college.InitValidators(validate, translator)

	nc := college.NewCollege{Name: "College of Engineering", Code: "coe", Email: "coe@example.edu", Type: "Cooking College"}
	assert.Error(t, nc.Validate(validate))

	nc.Type = college.TypeEngineering
	assert.NoError(t, nc.Validate(validate))
	assert.Equal(t, "COE", nc.Code, "code should be upper-cased during validation")
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults and derived credential", func(t *testing.T) {
		svc, _ := setup(t)

		col, err := svc.Create(ctx, college.NewCollege{
			Name: "College of Engineering", Code: "COE", Email: "coe@example.edu", Institute: "inst-1",
		})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		assert.Equal(t, college.TypeOther, col.Type)
		assert.Equal(t, college.StatusActive, col.Status)
		assert.NoError(t, col.CheckPassword("COE@123"))
	})

	t.Run("duplicate code is a validation error", func(t *testing.T) {
		svc, _ := setup(t)

		nc := college.NewCollege{Name: "College of Engineering", Code: "COE", Email: "coe@example.edu", Institute: "inst-1"}
		if _, err := svc.Create(ctx, nc); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		nc.Email = "other@example.edu"
		_, err := svc.Create(ctx, nc)
		vErr, ok := err.(*core.ValidationError)
		if !ok {
			t.Fatalf("Create() error = %v; want *core.ValidationError", err)
		}
		if assert.Len(t, vErr.Fields, 1) {
			assert.Equal(t, "code", vErr.Fields[0].Field)
		}
	})
}
