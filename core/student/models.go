package student

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/elimulabs/tuzo/core"
)

// Statuses
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

var (
	Genders  = []string{"Male", "Female", "Other"}
	Statuses = []string{StatusActive, StatusInactive}
)

type (
	Name struct {
		First string `json:"first"`
		Last  string `json:"last"`
	}

	Address struct {
		Line1   string `json:"line1"`
		Line2   string `json:"line2"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
		Pincode string `json:"pincode"`
	}

	Skills struct {
		Technical []string `json:"technical"`
		Soft      []string `json:"soft"`
	}

	Student struct {
		ID             string    `json:"id"`
		Name           Name      `json:"name"`
		Email          string    `json:"email"`
		StudentID      string    `json:"student_id"`
		Department     string    `json:"department"`
		Coordinator    string    `json:"coordinator"`
		ContactNumber  string    `json:"contact_number"`
		Address        Address   `json:"address"`
		DOB            time.Time `json:"dob,omitempty"`
		Gender         string    `json:"gender,omitempty"`
		EnrollmentYear int       `json:"enrollment_year"`
		Batch          string    `json:"batch"`
		GPA            *float64  `json:"gpa,omitempty"`
		Attendance     *float64  `json:"attendance,omitempty"`
		Skills         Skills    `json:"skills"`
		Status         string    `json:"status"`
		PasswordHash   []byte    `json:"-"`
		CreatedAt      time.Time `json:"created_at"` // UTC
		UpdatedAt      time.Time `json:"updated_at"` // UTC
	}
)

func (s *Student) FullName() string {
	return strings.TrimSpace(s.Name.First + " " + s.Name.Last)
}

func (s *Student) SetPassword(pwd string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// NewStudent contains information needed to create a new Student.
// Department and Coordinator come from the acting faculty, never from the
// client payload.
type NewStudent struct {
	FirstName      string   `json:"first_name" validate:"required"`
	LastName       string   `json:"last_name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	StudentID      string   `json:"student_id" validate:"required"`
	ContactNumber  string   `json:"contact_number"`
	Address        Address  `json:"address"`
	DOB            string   `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender         string   `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	EnrollmentYear int      `json:"enrollment_year" validate:"omitempty,min=1900,max=2100"`
	Batch          string   `json:"batch"`
	GPA            *float64 `json:"gpa" validate:"omitempty,min=0,max=10"`
	Attendance     *float64 `json:"attendance" validate:"omitempty,min=0,max=100"`
	Skills         []string `json:"skills"`
	Password       string   `json:"password"`
	Status         string   `json:"status" validate:"omitempty,oneof=Active Inactive"`

	Department  string `json:"-"`
	Coordinator string `json:"-"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.Gender = core.CleanString(ns.Gender)
	ns.Status = core.CleanString(ns.Status)
	return validate.Struct(ns)
}
