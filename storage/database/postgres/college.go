package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core/college"
	"github.com/elimulabs/tuzo/core/student"
)

type collegeRepository struct {
	db *sqlx.DB
}

var _ college.Repository = (*collegeRepository)(nil) // interface compliance check

func NewCollegeRepository(db *sqlx.DB) *collegeRepository {
	return &collegeRepository{db: db}
}

type dbCollege struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Code          string    `db:"code"`
	Email         string    `db:"email"`
	Institute     string    `db:"institute"`
	ContactNumber string    `db:"contact_number"`
	AddrLine1     string    `db:"addr_line1"`
	AddrLine2     string    `db:"addr_line2"`
	AddrCity      string    `db:"addr_city"`
	AddrState     string    `db:"addr_state"`
	AddrCountry   string    `db:"addr_country"`
	AddrPincode   string    `db:"addr_pincode"`
	Website       string    `db:"website"`
	Type          string    `db:"type"`
	Status        string    `db:"status"`
	PasswordHash  []byte    `db:"password_hash"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (repo collegeRepository) pack(col college.College) dbCollege {
	return dbCollege{
		ID:            col.ID,
		Name:          col.Name,
		Code:          col.Code,
		Email:         col.Email,
		Institute:     col.Institute,
		ContactNumber: col.ContactNumber,
		AddrLine1:     col.Address.Line1,
		AddrLine2:     col.Address.Line2,
		AddrCity:      col.Address.City,
		AddrState:     col.Address.State,
		AddrCountry:   col.Address.Country,
		AddrPincode:   col.Address.Pincode,
		Website:       col.Website,
		Type:          col.Type,
		Status:        col.Status,
		PasswordHash:  col.PasswordHash,
		CreatedAt:     col.CreatedAt.UTC(),
		UpdatedAt:     col.UpdatedAt.UTC(),
	}
}

func (repo collegeRepository) unpack(row dbCollege) college.College {
	return college.College{
		ID:            row.ID,
		Name:          row.Name,
		Code:          row.Code,
		Email:         row.Email,
		Institute:     row.Institute,
		ContactNumber: row.ContactNumber,
		Address: student.Address{
			Line1:   row.AddrLine1,
			Line2:   row.AddrLine2,
			City:    row.AddrCity,
			State:   row.AddrState,
			Country: row.AddrCountry,
			Pincode: row.AddrPincode,
		},
		Website:      row.Website,
		Type:         row.Type,
		Status:       row.Status,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo *collegeRepository) GetCollegeByNaturalKey(ctx context.Context, email, code string) (college.College, error) {
	var row dbCollege
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM colleges WHERE email = $1 OR code = UPPER($2) LIMIT 1`, email, code)
	if err == sql.ErrNoRows {
		return college.College{}, college.ErrNotFound
	}
	if err != nil {
		return college.College{}, errors.Wrap(err, "querying college by natural key")
	}
	return repo.unpack(row), nil
}

func (repo *collegeRepository) GetCollegeByEmail(ctx context.Context, email string) (college.College, error) {
	var row dbCollege
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM colleges WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return college.College{}, college.ErrNotFound
	}
	if err != nil {
		return college.College{}, errors.Wrap(err, "querying college by email")
	}
	return repo.unpack(row), nil
}

func (repo *collegeRepository) CreateCollege(ctx context.Context, col college.College) (college.College, error) {
	if col.ID == "" {
		col.ID = uuid.NewString()
	}
	row := repo.pack(col)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO colleges (
			id, name, code, email, institute, contact_number, addr_line1,
			addr_line2, addr_city, addr_state, addr_country, addr_pincode,
			website, type, status, password_hash, created_at, updated_at
		) VALUES (
			:id, :name, :code, :email, :institute, :contact_number, :addr_line1,
			:addr_line2, :addr_city, :addr_state, :addr_country, :addr_pincode,
			:website, :type, :status, :password_hash, :created_at, :updated_at
		)`, row)
	if err != nil {
		return college.College{}, collegeConstraintErr(err)
	}
	return col, nil
}

func (repo *collegeRepository) QueryAllColleges(ctx context.Context) ([]college.College, error) {
	var rows []dbCollege
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM colleges ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying colleges")
	}
	colleges := make([]college.College, 0, len(rows))
	for _, row := range rows {
		colleges = append(colleges, repo.unpack(row))
	}
	return colleges, nil
}

func collegeConstraintErr(err error) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "colleges_email_key":
			return college.ErrEmailExists
		case "colleges_code_key":
			return college.ErrCodeExists
		}
	}
	return errors.Wrap(err, "inserting college")
}
