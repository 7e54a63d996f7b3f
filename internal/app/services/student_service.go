package services

import (
	"context"
	"fmt"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/logger"
)

// StudentService covers student records and enrollment management.
type StudentService struct {
	studentRepo    *repositories.StudentRepository
	courseRepo     *repositories.CourseRepository
	enrollmentRepo *repositories.EnrollmentRepository
}

// NewStudentService creates a new student service instance
func NewStudentService(studentRepo *repositories.StudentRepository, courseRepo *repositories.CourseRepository, enrollmentRepo *repositories.EnrollmentRepository) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// GetStudent retrieves one student by ID.
func (s *StudentService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// EnrollStudent enrolls a student into a course. Both sides must exist;
// a second enrollment into the same course is rejected.
func (s *StudentService) EnrollStudent(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID: student.ID,
		CourseID:  course.ID,
	}
	id, err := s.enrollmentRepo.Create(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	enrollment.ID = id
	enrollment.Course = course

	logger.Info().Int64("studentID", studentID).Int64("courseID", courseID).Int64("enrollmentID", id).Msg("Student enrolled")
	return enrollment, nil
}

// ListEnrollments returns all of a student's enrollments with courses.
func (s *StudentService) ListEnrollments(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}

// SetActive toggles the soft-deactivation flag. A deactivated student
// keeps all records but cannot log in.
func (s *StudentService) SetActive(ctx context.Context, studentID int64, active bool) error {
	if err := s.studentRepo.SetActive(ctx, studentID, active); err != nil {
		return fmt.Errorf("error updating student active flag: %w", err)
	}
	logger.Info().Int64("studentID", studentID).Bool("active", active).Msg("Student active flag updated")
	return nil
}
