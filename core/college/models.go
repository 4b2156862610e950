package college

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/elimulabs/tuzo/core"
	"github.com/elimulabs/tuzo/core/student"
)

// Types
const (
	TypeEngineering = "Engineering College"
	TypeMedical     = "Medical College"
	TypeArts        = "Arts College"
	TypeScience     = "Science College"
	TypeCommerce    = "Commerce College"
	TypeLaw         = "Law College"
	TypeOther       = "Other"
)

// Statuses
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

var (
	Types    = []string{TypeEngineering, TypeMedical, TypeArts, TypeScience, TypeCommerce, TypeLaw, TypeOther}
	Statuses = []string{StatusActive, StatusInactive}
)

type College struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	Email         string          `json:"email"`
	Institute     string          `json:"institute"`
	ContactNumber string          `json:"contact_number"`
	Address       student.Address `json:"address"`
	Website       string          `json:"website"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	PasswordHash  []byte          `json:"-"`
	CreatedAt     time.Time       `json:"created_at"` // UTC
	UpdatedAt     time.Time       `json:"updated_at"` // UTC
}

func (c *College) SetPassword(pwd string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return nil
}

func (c *College) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(pwd))
}

// NewCollege contains information needed to create a new College. Institute
// defaults to the acting institute when not supplied.
type NewCollege struct {
	Name          string          `json:"name" validate:"required,min=2"`
	Code          string          `json:"code" validate:"required,min=2"`
	Email         string          `json:"email" validate:"required,email"`
	Institute     string          `json:"institute"`
	ContactNumber string          `json:"contact_number"`
	Address       student.Address `json:"address"`
	Website       string          `json:"website"`
	Type          string          `json:"type" validate:"omitempty,collegetype"`
	Status        string          `json:"status" validate:"omitempty,oneof=Active Inactive"`
	Password      string          `json:"password"`
}

func (nc *NewCollege) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = strings.ToUpper(core.CleanString(nc.Code))
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.Type = core.CleanString(nc.Type)
	nc.Status = core.CleanString(nc.Status)
	return validate.Struct(nc)
}
