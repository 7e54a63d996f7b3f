package grading

import (
	"fmt"
	"math"
	"testing"

	"github.com/twoem/portal/internal/app/models"
)

func catalogOf(size int) []models.Unit {
	units := make([]models.Unit, 0, size)
	for i := 1; i <= size; i++ {
		units = append(units, models.Unit{ID: int64(i), CourseID: 1, Name: fmt.Sprintf("Unit %d", i)})
	}
	return units
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestUnitAverageCompleteCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		marks   []int
		wantAvg float64
	}{
		{"single unit", 1, []int{80}, 80},
		{"all zeros are still graded", 3, []int{0, 0, 0}, 0},
		{"all hundreds", 4, []int{100, 100, 100, 100}, 100},
		{"mixed marks", 8, []int{70, 70, 70, 70, 70, 70, 70, 70}, 70},
		{"non-integer average", 2, []int{70, 71}, 70.5},
		{"sum over catalog size", 5, []int{10, 20, 30, 40, 50}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := catalogOf(tt.size)
			marks := make(map[int64]int, len(tt.marks))
			for i, m := range tt.marks {
				marks[catalog[i].ID] = m
			}

			got := UnitAverage(catalog, marks)
			if !got.Complete {
				t.Fatalf("expected complete result")
			}
			if math.Abs(got.Average-tt.wantAvg) > 1e-9 {
				t.Fatalf("average = %v, want %v", got.Average, tt.wantAvg)
			}
		})
	}
}

func TestUnitAverageIncomplete(t *testing.T) {
	catalog := catalogOf(8)

	// Every possible single missing unit yields incomplete.
	for missing := range catalog {
		marks := make(map[int64]int)
		for i, unit := range catalog {
			if i == missing {
				continue
			}
			marks[unit.ID] = 70
		}

		got := UnitAverage(catalog, marks)
		if got.Complete {
			t.Fatalf("expected incomplete when unit %d is unmarked", catalog[missing].ID)
		}
		if got.Average != 0 {
			t.Fatalf("incomplete result must carry zero average, got %v", got.Average)
		}
	}
}

func TestUnitAverageEmptyMarks(t *testing.T) {
	got := UnitAverage(catalogOf(8), map[int64]int{})
	if got.Complete {
		t.Fatalf("expected incomplete for no marks at all")
	}
}

func TestUnitAverageEmptyCatalog(t *testing.T) {
	got := UnitAverage(nil, map[int64]int{1: 50})
	if got.Complete {
		t.Fatalf("a course without units must never be gradable")
	}
}

func TestUnitAverageIgnoresStrayMarks(t *testing.T) {
	// Marks for units outside the catalog do not affect the average.
	catalog := catalogOf(2)
	marks := map[int64]int{1: 60, 2: 80, 99: 100}

	got := UnitAverage(catalog, marks)
	if !got.Complete {
		t.Fatalf("expected complete result")
	}
	if got.Average != 70 {
		t.Fatalf("average = %v, want 70", got.Average)
	}
}

func TestFinalGradeWeights(t *testing.T) {
	tests := []struct {
		name      string
		average   float64
		theory    int
		practical int
		threshold int
		wantTotal float64
		wantGrade models.FinalGrade
	}{
		{"worked example", 70, 80, 60, 60, 70, models.GradePass},
		{"all perfect", 100, 100, 100, 60, 100, models.GradePass},
		{"all zero", 0, 0, 0, 60, 0, models.GradeFail},
		{"exactly on threshold passes", 60, 60, 60, 60, 60, models.GradePass},
		{"just below threshold fails", 59, 59, 59, 60, 59, models.GradeFail},
		{"high threshold", 80, 80, 80, 90, 80, models.GradeFail},
		{"zero threshold always passes", 0, 0, 0, 0, 0, models.GradePass},
		{"theory carries more weight than average", 0, 100, 100, 60, 70, models.GradePass},
		{"average alone cannot pass", 100, 0, 0, 60, 30, models.GradeFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FinalGrade(floatPtr(tt.average), intPtr(tt.theory), intPtr(tt.practical), tt.threshold)
			if !ok {
				t.Fatalf("expected a finalized grade")
			}
			if math.Abs(got.TotalScore-tt.wantTotal) > 1e-9 {
				t.Fatalf("total = %v, want %v", got.TotalScore, tt.wantTotal)
			}
			if got.FinalGrade != tt.wantGrade {
				t.Fatalf("grade = %s, want %s", got.FinalGrade, tt.wantGrade)
			}
		})
	}
}

func TestFinalGradeIncompleteInputs(t *testing.T) {
	avg := floatPtr(70)
	theory := intPtr(80)
	practical := intPtr(60)

	tests := []struct {
		name      string
		average   *float64
		theory    *int
		practical *int
	}{
		{"missing average", nil, theory, practical},
		{"missing theory", avg, nil, practical},
		{"missing practical", avg, theory, nil},
		{"all missing", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := FinalGrade(tt.average, tt.theory, tt.practical, 60); ok {
				t.Fatalf("expected incomplete result")
			}
		})
	}
}

func TestMarkInRange(t *testing.T) {
	for _, valid := range []int{0, 1, 50, 99, 100} {
		if !MarkInRange(valid) {
			t.Errorf("MarkInRange(%d) = false, want true", valid)
		}
	}
	for _, invalid := range []int{-1, 101, 1000, -100} {
		if MarkInRange(invalid) {
			t.Errorf("MarkInRange(%d) = true, want false", invalid)
		}
	}
}
