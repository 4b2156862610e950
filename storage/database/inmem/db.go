// Package inmemdb provides in-memory implementations of the domain
// repositories for local development and tests. Natural-key uniqueness is
// enforced the same way the Postgres constraints do it.
package inmemdb

import (
	"sync"

	"github.com/elimulabs/tuzo/core/college"
	"github.com/elimulabs/tuzo/core/student"
)

type (
	DB struct {
		students *studentTable
		colleges *collegeTable
	}

	studentTable struct {
		mutex sync.RWMutex
		table map[string]*student.Student // by ID
	}

	collegeTable struct {
		mutex sync.RWMutex
		table map[string]*college.College // by ID
	}
)

func Open() *DB {
	return &DB{
		students: &studentTable{table: make(map[string]*student.Student)},
		colleges: &collegeTable{table: make(map[string]*college.College)},
	}
}
