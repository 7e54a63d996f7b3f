package models

import "time"

// Mark is the tagged graded/ungraded state of one unit for one enrollment.
// An ungraded unit has no row in student_unit_marks at all; this keeps
// "not yet graded" distinct from an explicit zero.
type Mark struct {
	value  int
	graded bool
}

// Ungraded is the absent-mark state; saving it deletes the stored row.
var Ungraded = Mark{}

// GradedMark returns a Mark carrying a recorded value.
func GradedMark(value int) Mark {
	return Mark{value: value, graded: true}
}

// Graded reports whether a value has been recorded.
func (m Mark) Graded() bool {
	return m.graded
}

// Value returns the recorded value; only meaningful when Graded is true.
func (m Mark) Value() int {
	return m.value
}

// InRange reports whether a graded value lies in [0,100]. Ungraded marks
// are always in range since there is nothing to store.
func (m Mark) InRange() bool {
	return !m.graded || (m.value >= 0 && m.value <= 100)
}

// UnitMark is one stored row per (enrollment, unit) pair.
type UnitMark struct {
	ID                int64     `json:"id" db:"id"`
	EnrollmentID      int64     `json:"enrollmentId" db:"enrollment_id"`
	UnitID            int64     `json:"unitId" db:"unit_id"`
	Marks             int       `json:"marks" db:"marks"`
	LoggedByAdminID   *int64    `json:"loggedByAdminId,omitempty" db:"logged_by_admin_id"`
	LoggedByAdminName *string   `json:"loggedByAdminName,omitempty" db:"logged_by_admin_name"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}
