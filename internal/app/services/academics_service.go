package services

import (
	"context"
	"fmt"

	"github.com/twoem/portal/internal/app/grading"
	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/apperrors"
	"github.com/twoem/portal/internal/pkg/logger"
)

// AcademicsService orchestrates the grade-save batch and builds the
// marks-entry and student result views. Grading math lives in the grading
// package; this service wires it to storage.
type AcademicsService struct {
	academics      repositories.AcademicsUnitOfWork
	enrollmentRepo *repositories.EnrollmentRepository
	courseRepo     *repositories.CourseRepository
	unitMarkRepo   *repositories.UnitMarkRepository
	passingGrade   int
}

// NewAcademicsService creates a new academics service instance
func NewAcademicsService(
	academics repositories.AcademicsUnitOfWork,
	enrollmentRepo *repositories.EnrollmentRepository,
	courseRepo *repositories.CourseRepository,
	unitMarkRepo *repositories.UnitMarkRepository,
	passingGrade int,
) *AcademicsService {
	return &AcademicsService{
		academics:      academics,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		unitMarkRepo:   unitMarkRepo,
		passingGrade:   passingGrade,
	}
}

// SaveAcademicMarks applies one grade-save batch for an enrollment: unit
// mark upserts and clears, the exam scores, then the recomputed average
// and final grade. Everything runs in a single transaction; a validation
// failure rejects the whole batch before any write happens.
func (s *AcademicsService) SaveAcademicMarks(ctx context.Context, enrollmentID int64, unitMarks map[int64]models.Mark, theory, practical *int, actor models.Actor) error {
	if err := validateBatchInputs(unitMarks, theory, practical); err != nil {
		return err
	}

	err := s.academics.WithinTransaction(ctx, func(ctx context.Context, tx repositories.AcademicsTx) error {
		enrollment, err := tx.EnrollmentByID(ctx, enrollmentID)
		if err != nil {
			return err
		}

		catalog, err := tx.CourseUnits(ctx, enrollment.CourseID)
		if err != nil {
			return err
		}

		inCatalog := make(map[int64]bool, len(catalog))
		for _, unit := range catalog {
			inCatalog[unit.ID] = true
		}
		for unitID := range unitMarks {
			if !inCatalog[unitID] {
				return fmt.Errorf("unit %d: %w", unitID, apperrors.ErrUnitNotInCourse)
			}
		}

		for unitID, mark := range unitMarks {
			if mark.Graded() {
				if err := tx.UpsertUnitMark(ctx, enrollmentID, unitID, mark.Value(), actor); err != nil {
					return err
				}
			} else {
				if err := tx.DeleteUnitMark(ctx, enrollmentID, unitID); err != nil {
					return err
				}
			}
		}

		// Recompute from what is now stored, not from the request payload;
		// units untouched by this batch keep their earlier marks.
		stored, err := tx.UnitMarksByEnrollment(ctx, enrollmentID)
		if err != nil {
			return err
		}

		avg := grading.UnitAverage(catalog, stored)
		var average *float64
		if avg.Complete {
			average = &avg.Average
		}

		var finalGrade *models.FinalGrade
		if result, ok := grading.FinalGrade(average, theory, practical, s.passingGrade); ok {
			finalGrade = &result.FinalGrade
		}

		return tx.UpdateAcademicResults(ctx, enrollmentID, average, theory, practical, finalGrade)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("enrollmentID", enrollmentID).Int64("adminID", actor.ID).Msg("Academic marks saved")
	return nil
}

func validateBatchInputs(unitMarks map[int64]models.Mark, theory, practical *int) error {
	for unitID, mark := range unitMarks {
		if !mark.InRange() {
			return fmt.Errorf("unit %d mark %d: %w", unitID, mark.Value(), apperrors.ErrInvalidMark)
		}
	}
	if theory != nil && !grading.MarkInRange(*theory) {
		return fmt.Errorf("theory score %d: %w", *theory, apperrors.ErrInvalidMark)
	}
	if practical != nil && !grading.MarkInRange(*practical) {
		return fmt.Errorf("practical score %d: %w", *practical, apperrors.ErrInvalidMark)
	}
	return nil
}

// GetAcademics builds the marks-entry view for one enrollment: every
// catalog unit paired with its stored mark, if any.
func (s *AcademicsService) GetAcademics(ctx context.Context, enrollmentID int64) (*dto.AcademicsResponse, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, enrollment)
}

// StudentAcademics builds the student portal view of all their results.
func (s *AcademicsService) StudentAcademics(ctx context.Context, studentID int64) (*dto.StudentAcademicsResponse, error) {
	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	response := &dto.StudentAcademicsResponse{Enrollments: []dto.AcademicsResponse{}}
	for _, enrollment := range enrollments {
		view, err := s.buildView(ctx, enrollment)
		if err != nil {
			return nil, err
		}
		response.Enrollments = append(response.Enrollments, *view)
	}

	return response, nil
}

func (s *AcademicsService) buildView(ctx context.Context, enrollment *models.Enrollment) (*dto.AcademicsResponse, error) {
	units, err := s.courseRepo.GetUnits(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	marks, err := s.unitMarkRepo.MapByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.UnitMarkView, 0, len(units))
	for _, unit := range units {
		view := dto.UnitMarkView{Unit: unit}
		if mark, ok := marks[unit.ID]; ok {
			m := mark
			view.Marks = &m
		}
		views = append(views, view)
	}

	return &dto.AcademicsResponse{
		Enrollment:   enrollment,
		Units:        views,
		PassingGrade: s.passingGrade,
	}, nil
}
