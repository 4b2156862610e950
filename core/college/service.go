package college

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core"
)

var (
	// errors
	ErrNotFound    = errors.New("college not found")
	ErrEmailExists = errors.New("a college with this email already exists")
	ErrCodeExists  = errors.New("a college with this code already exists")
)

var (
	collegeTypeTag  = "collegetype"
	collegeTypeText = "must be a recognized college type"
)

// InitValidators registers this package's custom validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(collegeTypeTag, func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, t := range Types {
			if t == val {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, collegeTypeTag, collegeTypeText)
}

type (
	Repository interface {
		// GetCollegeByNaturalKey matches on email OR code.
		GetCollegeByNaturalKey(ctx context.Context, email, code string) (College, error)
		GetCollegeByEmail(ctx context.Context, email string) (College, error)
		CreateCollege(ctx context.Context, col College) (College, error)
		QueryAllColleges(ctx context.Context) ([]College, error)
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

// Create registers a single college under an institute. Semantics mirror the
// bulk import: unique email and code, derived default credential, plaintext
// only ever leaves through the welcome email.
func (svc *Service) Create(ctx context.Context, nc NewCollege) (College, error) {
	if existing, err := svc.repo.GetCollegeByNaturalKey(ctx, nc.Email, nc.Code); err == nil {
		field := "code"
		if existing.Email == nc.Email {
			field = "email"
		}
		return College{}, core.NewValidationError(
			errors.New("college already exists"),
			core.FieldError{Field: field, Error: "a college with this value already exists"},
		)
	} else if errors.Cause(err) != ErrNotFound {
		return College{}, errors.Wrap(err, "checking college uniqueness")
	}

	plain := nc.Password
	if plain == "" {
		plain = svc.credFn(nc.Code)
	}

	now := time.Now().UTC()
	col := College{
		Name:          nc.Name,
		Code:          nc.Code,
		Email:         nc.Email,
		Institute:     nc.Institute,
		ContactNumber: nc.ContactNumber,
		Address:       nc.Address,
		Website:       nc.Website,
		Type:          nc.Type,
		Status:        nc.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if col.Type == "" {
		col.Type = TypeOther
	}
	if col.Status == "" {
		col.Status = StatusActive
	}
	if err := col.SetPassword(plain, svc.conf.BcryptCost); err != nil {
		return College{}, errors.Wrap(err, "hashing password")
	}

	created, err := svc.repo.CreateCollege(ctx, col)
	if err != nil {
		return College{}, errors.Wrap(err, "creating college")
	}

	msg := core.WelcomeEmail(svc.conf.AppName, "welcome-college", core.WelcomeEmailData{
		Name:     created.Name,
		Email:    created.Email,
		Password: plain,
		LoginURL: svc.conf.FrontendBaseURL + "/login",
	})
	if _, err = svc.mailer.Send(ctx, msg); err != nil {
		svc.logger.Warn("welcome email failed for "+created.Email, err)
	}
	return created, nil
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (College, error) {
	return svc.repo.GetCollegeByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]College, error) {
	return svc.repo.QueryAllColleges(ctx)
}
