package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/elimulabs/tuzo/core/college"
)

type collegeRepository struct {
	db *collegeTable
}

var _ college.Repository = (*collegeRepository)(nil)

func NewCollegeRepository(db *DB) *collegeRepository {
	return &collegeRepository{db: db.colleges}
}

func (repo *collegeRepository) query() []college.College {
	colleges := make([]college.College, 0, len(repo.db.table))
	for _, col := range repo.db.table {
		colleges = append(colleges, *col)
	}
	sort.Slice(colleges, func(i, j int) bool { return colleges[i].CreatedAt.Before(colleges[j].CreatedAt) })
	return colleges
}

func (repo *collegeRepository) GetCollegeByNaturalKey(_ context.Context, email, code string) (college.College, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	code = strings.ToUpper(code)
	for _, col := range repo.db.table {
		if col.Email == email || col.Code == code {
			return *col, nil
		}
	}
	return college.College{}, college.ErrNotFound
}

func (repo *collegeRepository) GetCollegeByEmail(_ context.Context, email string) (college.College, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, col := range repo.db.table {
		if col.Email == email {
			return *col, nil
		}
	}
	return college.College{}, college.ErrNotFound
}

func (repo *collegeRepository) CreateCollege(_ context.Context, col college.College) (college.College, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.table {
		if existing.Email == col.Email {
			return college.College{}, college.ErrEmailExists
		}
		if existing.Code == col.Code {
			return college.College{}, college.ErrCodeExists
		}
	}
	if col.ID == "" {
		col.ID = uuid.NewString()
	}
	repo.db.table[col.ID] = &col
	return col, nil
}

func (repo *collegeRepository) QueryAllColleges(_ context.Context) ([]college.College, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}
