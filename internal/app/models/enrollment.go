package models

import "time"

// Enrollment links one student to one course, unique per (student, course).
// The academic result fields are written atomically together: FinalGrade is
// non-nil only when AverageUnitMarks, MainExamTheoryMarks and
// MainExamPracticalMarks are all non-nil.
type Enrollment struct {
	ID                     int64       `json:"id" db:"id"`
	StudentID              int64       `json:"studentId" db:"student_id"`
	CourseID               int64       `json:"courseId" db:"course_id"`
	EnrollmentDate         time.Time   `json:"enrollmentDate" db:"enrollment_date"`
	AverageUnitMarks       *float64    `json:"averageUnitMarks,omitempty" db:"average_unit_marks"`
	MainExamTheoryMarks    *int        `json:"mainExamTheoryMarks,omitempty" db:"main_exam_theory_marks"`
	MainExamPracticalMarks *int        `json:"mainExamPracticalMarks,omitempty" db:"main_exam_practical_marks"`
	FinalGrade             *FinalGrade `json:"finalGrade,omitempty" db:"final_grade"`
	CertificateIssuedAt    *time.Time  `json:"certificateIssuedAt,omitempty" db:"certificate_issued_at"`
	CreatedAt              time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time   `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Course *Course `json:"course,omitempty"`
}
