package models

// Course represents a named training program owning a fixed unit catalog.
type Course struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"` // Nullable

	// Relations (populated when needed)
	Units []Unit `json:"units,omitempty"`
}

// Unit is a gradable sub-topic within a course (e.g. "Microsoft Excel").
// Unit names are unique within their course.
type Unit struct {
	ID          int64   `json:"id" db:"id"`
	CourseID    int64   `json:"courseId" db:"course_id"`
	Name        string  `json:"name" db:"unit_name"`
	Description *string `json:"description,omitempty" db:"description"` // Nullable
}
