// Package grading holds the academic grading rules: how per-unit marks,
// theory and practical exam scores combine into a final Pass/Fail grade.
// Everything here is pure computation; persistence is the caller's job.
package grading

import (
	"github.com/twoem/portal/internal/app/models"
)

// Weights applied to the three score components of the total.
const (
	UnitAverageWeight = 0.30
	TheoryWeight      = 0.35
	PracticalWeight   = 0.35
)

// MarkInRange reports whether a mark or exam score is a valid [0,100] value.
func MarkInRange(mark int) bool {
	return mark >= 0 && mark <= 100
}

// AverageResult is the outcome of the unit-average computation.
type AverageResult struct {
	// Average is meaningful only when Complete is true.
	Average  float64
	Complete bool
}

// UnitAverage computes the unit-average for an enrollment. The average is
// defined only once every unit in the course catalog has a recorded mark;
// grading must never run on a partial subset of units. The divisor is the
// catalog size, not the count of marked rows.
func UnitAverage(catalog []models.Unit, marksByUnit map[int64]int) AverageResult {
	if len(catalog) == 0 {
		// A course without units has nothing to average over.
		return AverageResult{}
	}

	sum := 0
	for _, unit := range catalog {
		mark, ok := marksByUnit[unit.ID]
		if !ok {
			return AverageResult{}
		}
		sum += mark
	}

	return AverageResult{
		Average:  float64(sum) / float64(len(catalog)),
		Complete: true,
	}
}

// Result is a finalized grade outcome.
type Result struct {
	TotalScore float64
	FinalGrade models.FinalGrade
}

// FinalGrade combines the unit average with theory and practical exam
// scores. If any input is absent the result is incomplete (ok=false) and
// no grade may be stored; any previously stored grade must be cleared.
// A total score exactly equal to the passing threshold is a Pass.
func FinalGrade(average *float64, theory, practical *int, passingThreshold int) (Result, bool) {
	if average == nil || theory == nil || practical == nil {
		return Result{}, false
	}

	total := *average*UnitAverageWeight + float64(*theory)*TheoryWeight + float64(*practical)*PracticalWeight

	grade := models.GradeFail
	if total >= float64(passingThreshold) {
		grade = models.GradePass
	}

	return Result{TotalScore: total, FinalGrade: grade}, true
}
