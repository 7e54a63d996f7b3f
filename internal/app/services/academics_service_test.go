package services

import (
	"context"
	"errors"
	"testing"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/apperrors"
)

// fakeAcademicsStore is an in-memory AcademicsUnitOfWork. Writes inside
// fn land on a working copy that only replaces the committed state when
// fn returns nil, mirroring transaction commit/rollback.
type fakeAcademicsStore struct {
	enrollment *models.Enrollment
	catalog    []models.Unit

	marks   map[int64]int
	actors  map[int64]models.Actor
	results academicResults
}

type academicResults struct {
	average   *float64
	theory    *int
	practical *int
	grade     *models.FinalGrade
	written   bool
}

func (f *fakeAcademicsStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.AcademicsTx) error) error {
	tx := &fakeAcademicsTx{
		store:   f,
		marks:   map[int64]int{},
		actors:  map[int64]models.Actor{},
		results: f.results,
	}
	for k, v := range f.marks {
		tx.marks[k] = v
	}
	for k, v := range f.actors {
		tx.actors[k] = v
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	f.marks = tx.marks
	f.actors = tx.actors
	f.results = tx.results
	return nil
}

type fakeAcademicsTx struct {
	store   *fakeAcademicsStore
	marks   map[int64]int
	actors  map[int64]models.Actor
	results academicResults
}

func (t *fakeAcademicsTx) EnrollmentByID(_ context.Context, id int64) (*models.Enrollment, error) {
	if t.store.enrollment == nil || t.store.enrollment.ID != id {
		return nil, repositories.ErrEnrollmentNotFound
	}
	e := *t.store.enrollment
	return &e, nil
}

func (t *fakeAcademicsTx) CourseUnits(_ context.Context, courseID int64) ([]models.Unit, error) {
	return t.store.catalog, nil
}

func (t *fakeAcademicsTx) UpsertUnitMark(_ context.Context, enrollmentID, unitID int64, marks int, actor models.Actor) error {
	t.marks[unitID] = marks
	t.actors[unitID] = actor
	return nil
}

func (t *fakeAcademicsTx) DeleteUnitMark(_ context.Context, enrollmentID, unitID int64) error {
	delete(t.marks, unitID)
	delete(t.actors, unitID)
	return nil
}

func (t *fakeAcademicsTx) UnitMarksByEnrollment(_ context.Context, enrollmentID int64) (map[int64]int, error) {
	out := make(map[int64]int, len(t.marks))
	for k, v := range t.marks {
		out[k] = v
	}
	return out, nil
}

func (t *fakeAcademicsTx) UpdateAcademicResults(_ context.Context, enrollmentID int64, average *float64, theory, practical *int, grade *models.FinalGrade) error {
	t.results = academicResults{average: average, theory: theory, practical: practical, grade: grade, written: true}
	return nil
}

func newAcademicsFixture() *fakeAcademicsStore {
	return &fakeAcademicsStore{
		enrollment: &models.Enrollment{ID: 10, StudentID: 1, CourseID: 5},
		catalog: []models.Unit{
			{ID: 101, CourseID: 5, Name: "Introduction to Computers"},
			{ID: 102, CourseID: 5, Name: "Microsoft Word"},
			{ID: 103, CourseID: 5, Name: "Microsoft Excel"},
		},
		marks:  map[int64]int{},
		actors: map[int64]models.Actor{},
	}
}

func intPtr(v int) *int { return &v }

func TestSaveAcademicMarksFullBatch(t *testing.T) {
	store := newAcademicsFixture()
	service := NewAcademicsService(store, nil, nil, nil, 60)
	actor := models.Actor{ID: 7, Name: "Admin User"}

	err := service.SaveAcademicMarks(context.Background(), 10, map[int64]models.Mark{
		101: models.GradedMark(70),
		102: models.GradedMark(75),
		103: models.GradedMark(65),
	}, intPtr(80), intPtr(60), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.marks) != 3 {
		t.Fatalf("stored marks = %d, want 3", len(store.marks))
	}
	if store.actors[101] != actor {
		t.Errorf("mark 101 actor = %+v, want %+v", store.actors[101], actor)
	}
	if store.results.average == nil || *store.results.average != 70 {
		t.Fatalf("average = %v, want 70", store.results.average)
	}
	// 70*0.30 + 80*0.35 + 60*0.35 = 70, on the passing threshold.
	if store.results.grade == nil || *store.results.grade != models.GradePass {
		t.Errorf("grade = %v, want Pass", store.results.grade)
	}
	if store.results.theory == nil || *store.results.theory != 80 {
		t.Errorf("theory = %v, want 80", store.results.theory)
	}
}

func TestSaveAcademicMarksFailGrade(t *testing.T) {
	store := newAcademicsFixture()
	service := NewAcademicsService(store, nil, nil, nil, 60)

	err := service.SaveAcademicMarks(context.Background(), 10, map[int64]models.Mark{
		101: models.GradedMark(50),
		102: models.GradedMark(50),
		103: models.GradedMark(50),
	}, intPtr(50), intPtr(50), models.Actor{ID: 7, Name: "Admin User"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.results.grade == nil || *store.results.grade != models.GradeFail {
		t.Errorf("grade = %v, want Fail", store.results.grade)
	}
}

func TestSaveAcademicMarksInvalidMarkRejectsWholeBatch(t *testing.T) {
	store := newAcademicsFixture()
	store.marks[101] = 40
	service := NewAcademicsService(store, nil, nil, nil, 60)

	err := service.SaveAcademicMarks(context.Background(), 10, map[int64]models.Mark{
		101: models.GradedMark(90),
		102: models.GradedMark(101),
	}, nil, nil, models.Actor{ID: 7, Name: "Admin User"})
	if !errors.Is(err, apperrors.ErrInvalidMark) {
		t.Fatalf("error = %v, want ErrInvalidMark", err)
	}

	if store.marks[101] != 40 {
		t.Errorf("mark 101 = %d, want untouched 40", store.marks[101])
	}
	if store.results.written {
		t.Error("results should not have been written")
	}
}

func TestSaveAcademicMarksInvalidExamScore(t *testing.T) {
	store := newAcademicsFixture()
	service := NewAcademicsService(store, nil, nil, nil, 60)

	for _, tc := range []struct {
		name      string
		theory    *int
		practical *int
	}{
		{"theory above range", intPtr(101), intPtr(50)},
		{"practical negative", intPtr(50), intPtr(-1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := service.SaveAcademicMarks(context.Background(), 10, nil, tc.theory, tc.practical, models.Actor{})
			if !errors.Is(err, apperrors.ErrInvalidMark) {
				t.Fatalf("error = %v, want ErrInvalidMark", err)
			}
		})
	}
}

func TestSaveAcademicMarksUnitOutsideCourse(t *testing.T) {
	store := newAcademicsFixture()
	store.marks[101] = 40
	service := NewAcademicsService(store, nil, nil, nil, 60)

	err := service.SaveAcademicMarks(context.Background(), 10, map[int64]models.Mark{
		101: models.GradedMark(90),
		999: models.GradedMark(50),
	}, nil, nil, models.Actor{ID: 7, Name: "Admin User"})
	if !errors.Is(err, apperrors.ErrUnitNotInCourse) {
		t.Fatalf("error = %v, want ErrUnitNotInCourse", err)
	}

	// The transaction rolled back, so the valid part of the batch is gone too.
	if store.marks[101] != 40 {
		t.Errorf("mark 101 = %d, want untouched 40", store.marks[101])
	}
}

func TestSaveAcademicMarksClearingLastMarkClearsGrade(t *testing.T) {
	store := newAcademicsFixture()
	store.marks = map[int64]int{101: 70, 102: 75, 103: 65}
	avg := 70.0
	grade := models.GradePass
	store.results = academicResults{average: &avg, theory: intPtr(80), practical: intPtr(60), grade: &grade, written: true}
	service := NewAcademicsService(store, nil, nil, nil, 60)

	err := service.SaveAcademicMarks(context.Background(), 10, map[int64]models.Mark{
		103: models.Ungraded,
	}, intPtr(80), intPtr(60), models.Actor{ID: 7, Name: "Admin User"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := store.marks[103]; ok {
		t.Error("cleared mark should have no stored row")
	}
	if store.results.average != nil {
		t.Errorf("average = %v, want nil once the catalog is incomplete", store.results.average)
	}
	if store.results.grade != nil {
		t.Errorf("grade = %v, want cleared", store.results.grade)
	}
	if store.results.theory == nil || *store.results.theory != 80 {
		t.Errorf("theory = %v, want retained 80", store.results.theory)
	}
}

func TestSaveAcademicMarksPartialCatalogHasNoAverage(t *testing.T) {
	store := newAcademicsFixture()
	service := NewAcademicsService(store, nil, nil, nil, 60)

	err := service.SaveAcademicMarks(context.Background(), 10, map[int64]models.Mark{
		101: models.GradedMark(90),
	}, intPtr(90), intPtr(90), models.Actor{ID: 7, Name: "Admin User"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.results.average != nil {
		t.Errorf("average = %v, want nil with 1 of 3 units marked", store.results.average)
	}
	if store.results.grade != nil {
		t.Errorf("grade = %v, want nil even with both exam scores present", store.results.grade)
	}
}

func TestSaveAcademicMarksMergesWithStoredMarks(t *testing.T) {
	store := newAcademicsFixture()
	store.marks = map[int64]int{102: 75, 103: 65}
	service := NewAcademicsService(store, nil, nil, nil, 60)

	// Only unit 101 arrives in this batch; 102 and 103 were saved earlier.
	err := service.SaveAcademicMarks(context.Background(), 10, map[int64]models.Mark{
		101: models.GradedMark(70),
	}, intPtr(80), intPtr(60), models.Actor{ID: 7, Name: "Admin User"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.results.average == nil || *store.results.average != 70 {
		t.Fatalf("average = %v, want 70 across stored and new marks", store.results.average)
	}
	if store.results.grade == nil || *store.results.grade != models.GradePass {
		t.Errorf("grade = %v, want Pass", store.results.grade)
	}
}

func TestSaveAcademicMarksUnknownEnrollment(t *testing.T) {
	store := newAcademicsFixture()
	service := NewAcademicsService(store, nil, nil, nil, 60)

	err := service.SaveAcademicMarks(context.Background(), 404, nil, nil, nil, models.Actor{})
	if !errors.Is(err, repositories.ErrEnrollmentNotFound) {
		t.Fatalf("error = %v, want ErrEnrollmentNotFound", err)
	}
}
