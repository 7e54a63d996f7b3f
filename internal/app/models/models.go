package models

// Actor identifies the admin performing a write, for audit stamping.
type Actor struct {
	ID   int64
	Name string
}

// FinalGrade is the Pass/Fail outcome of a completed enrollment.
type FinalGrade string

const (
	GradePass FinalGrade = "Pass"
	GradeFail FinalGrade = "Fail"
)

// Valid reports whether g is one of the known grade values.
func (g FinalGrade) Valid() bool {
	return g == GradePass || g == GradeFail
}
