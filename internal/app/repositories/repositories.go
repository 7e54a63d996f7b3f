package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is the shared sentinel for missing rows; the per-entity
// not-found errors alias it so callers can match either.
var ErrNotFound = errors.New("record not found")

// Repositories holds all the repository instances
type Repositories struct {
	AdminRepository      *AdminRepository
	StudentRepository    *StudentRepository
	CourseRepository     *CourseRepository
	EnrollmentRepository *EnrollmentRepository
	UnitMarkRepository   *UnitMarkRepository
	FeeRepository        *FeeRepository
	CounterRepository    *CounterRepository
	AcademicsRepository  *AcademicsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		AdminRepository:      NewAdminRepository(db),
		StudentRepository:    NewStudentRepository(db),
		CourseRepository:     NewCourseRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),
		UnitMarkRepository:   NewUnitMarkRepository(db),
		FeeRepository:        NewFeeRepository(db),
		CounterRepository:    NewCounterRepository(db),
		AcademicsRepository:  NewAcademicsRepository(db),
	}
}
