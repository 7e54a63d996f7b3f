package dto

import "github.com/twoem/portal/internal/app/models"

// RegisterStudentRequest represents an admin registering a new student.
// The registration number is allocated server-side, never supplied.
type RegisterStudentRequest struct {
	FirstName   string  `json:"firstName" binding:"required"`
	SecondName  *string `json:"secondName,omitempty"`
	LastName    string  `json:"lastName" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// StudentResponse is the student payload returned to admins.
type StudentResponse struct {
	Student *models.Student `json:"student"`
}

// EnrollStudentRequest represents enrolling a student into a course.
type EnrollStudentRequest struct {
	StudentID int64 `json:"studentId" binding:"required,min=1"`
	CourseID  int64 `json:"courseId" binding:"required,min=1"`
}
