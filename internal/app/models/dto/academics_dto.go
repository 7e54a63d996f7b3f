package dto

import "github.com/twoem/portal/internal/app/models"

// SaveAcademicMarksRequest carries one grade-save batch for an enrollment.
// A nil mark value means "ungraded": the stored row for that unit is
// deleted rather than set to null. Absent exam scores clear the final grade.
type SaveAcademicMarksRequest struct {
	UnitMarks map[int64]*int `json:"unitMarks"`
	Theory    *int           `json:"theory,omitempty"`
	Practical *int           `json:"practical,omitempty"`
}

// Marks converts the wire shape into the tagged Graded/Ungraded variant.
func (r *SaveAcademicMarksRequest) Marks() map[int64]models.Mark {
	marks := make(map[int64]models.Mark, len(r.UnitMarks))
	for unitID, value := range r.UnitMarks {
		if value == nil {
			marks[unitID] = models.Ungraded
		} else {
			marks[unitID] = models.GradedMark(*value)
		}
	}
	return marks
}

// UnitMarkView is one catalog unit with its recorded mark, if any.
type UnitMarkView struct {
	Unit  models.Unit `json:"unit"`
	Marks *int        `json:"marks,omitempty"`
}

// AcademicsResponse is the marks-entry view for one enrollment.
type AcademicsResponse struct {
	Enrollment   *models.Enrollment `json:"enrollment"`
	Units        []UnitMarkView     `json:"units"`
	PassingGrade int                `json:"passingGrade"`
}

// StudentAcademicsResponse is the student portal view of their results.
type StudentAcademicsResponse struct {
	Enrollments []AcademicsResponse `json:"enrollments"`
}
