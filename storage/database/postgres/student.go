// Package pgrepos implements the domain repositories on Postgres via sqlx.
// The unique constraints on the natural-key columns are the authoritative
// duplicate check; violations are mapped to the domain sentinel errors.
package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

type dbStudent struct {
	ID             string         `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	StudentID      string         `db:"student_id"`
	Department     string         `db:"department"`
	Coordinator    string         `db:"coordinator"`
	ContactNumber  string         `db:"contact_number"`
	AddrLine1      string         `db:"addr_line1"`
	AddrLine2      string         `db:"addr_line2"`
	AddrCity       string         `db:"addr_city"`
	AddrState      string         `db:"addr_state"`
	AddrCountry    string         `db:"addr_country"`
	AddrPincode    string         `db:"addr_pincode"`
	DOB            *time.Time     `db:"dob"`
	Gender         string         `db:"gender"`
	EnrollmentYear int            `db:"enrollment_year"`
	Batch          string         `db:"batch"`
	GPA            *float64       `db:"gpa"`
	Attendance     *float64       `db:"attendance"`
	TechSkills     pq.StringArray `db:"tech_skills"`
	SoftSkills     pq.StringArray `db:"soft_skills"`
	Status         string         `db:"status"`
	PasswordHash   []byte         `db:"password_hash"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (repo studentRepository) pack(std student.Student) dbStudent {
	row := dbStudent{
		ID:             std.ID,
		FirstName:      std.Name.First,
		LastName:       std.Name.Last,
		Email:          std.Email,
		StudentID:      std.StudentID,
		Department:     std.Department,
		Coordinator:    std.Coordinator,
		ContactNumber:  std.ContactNumber,
		AddrLine1:      std.Address.Line1,
		AddrLine2:      std.Address.Line2,
		AddrCity:       std.Address.City,
		AddrState:      std.Address.State,
		AddrCountry:    std.Address.Country,
		AddrPincode:    std.Address.Pincode,
		Gender:         std.Gender,
		EnrollmentYear: std.EnrollmentYear,
		Batch:          std.Batch,
		GPA:            std.GPA,
		Attendance:     std.Attendance,
		TechSkills:     std.Skills.Technical,
		SoftSkills:     std.Skills.Soft,
		Status:         std.Status,
		PasswordHash:   std.PasswordHash,
		CreatedAt:      std.CreatedAt.UTC(),
		UpdatedAt:      std.UpdatedAt.UTC(),
	}
	if !std.DOB.IsZero() {
		dob := std.DOB
		row.DOB = &dob
	}
	if row.TechSkills == nil {
		row.TechSkills = pq.StringArray{}
	}
	if row.SoftSkills == nil {
		row.SoftSkills = pq.StringArray{}
	}
	return row
}

func (repo studentRepository) unpack(row dbStudent) student.Student {
	std := student.Student{
		ID:             row.ID,
		Name:           student.Name{First: row.FirstName, Last: row.LastName},
		Email:          row.Email,
		StudentID:      row.StudentID,
		Department:     row.Department,
		Coordinator:    row.Coordinator,
		ContactNumber:  row.ContactNumber,
		Address: student.Address{
			Line1:   row.AddrLine1,
			Line2:   row.AddrLine2,
			City:    row.AddrCity,
			State:   row.AddrState,
			Country: row.AddrCountry,
			Pincode: row.AddrPincode,
		},
		Gender:         row.Gender,
		EnrollmentYear: row.EnrollmentYear,
		Batch:          row.Batch,
		GPA:            row.GPA,
		Attendance:     row.Attendance,
		Skills:         student.Skills{Technical: row.TechSkills, Soft: row.SoftSkills},
		Status:         row.Status,
		PasswordHash:   row.PasswordHash,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.DOB != nil {
		std.DOB = *row.DOB
	}
	return std
}

func (repo *studentRepository) GetStudentByNaturalKey(ctx context.Context, email, studentID string) (student.Student, error) {
	var row dbStudent
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM students WHERE email = $1 OR student_id = $2 LIMIT 1`, email, studentID)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "querying student by natural key")
	}
	return repo.unpack(row), nil
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	var row dbStudent
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM students WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "querying student by email")
	}
	return repo.unpack(row), nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if std.ID == "" {
		std.ID = uuid.NewString()
	}
	row := repo.pack(std)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO students (
			id, first_name, last_name, email, student_id, department, coordinator,
			contact_number, addr_line1, addr_line2, addr_city, addr_state,
			addr_country, addr_pincode, dob, gender, enrollment_year, batch,
			gpa, attendance, tech_skills, soft_skills, status, password_hash,
			created_at, updated_at
		) VALUES (
			:id, :first_name, :last_name, :email, :student_id, :department, :coordinator,
			:contact_number, :addr_line1, :addr_line2, :addr_city, :addr_state,
			:addr_country, :addr_pincode, :dob, :gender, :enrollment_year, :batch,
			:gpa, :attendance, :tech_skills, :soft_skills, :status, :password_hash,
			:created_at, :updated_at
		)`, row)
	if err != nil {
		return student.Student{}, studentConstraintErr(err)
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []dbStudent
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM students ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unpack(row))
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudentPassword(ctx context.Context, id string, hash []byte) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "updating student password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

// studentConstraintErr maps a 23505 unique violation to the matching domain
// sentinel; anything else passes through wrapped.
func studentConstraintErr(err error) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "students_email_key":
			return student.ErrEmailExists
		case "students_student_id_key":
			return student.ErrStudentIDExists
		}
	}
	return errors.Wrap(err, "inserting student")
}
