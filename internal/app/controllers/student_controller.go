package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/models/dto"
	"github.com/twoem/portal/internal/app/services"
	"github.com/twoem/portal/internal/middleware"
)

// StudentController handles student records and enrollments.
type StudentController struct {
	registrationService *services.RegistrationService
	studentService      *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(registrationService *services.RegistrationService, studentService *services.StudentService) *StudentController {
	return &StudentController{
		registrationService: registrationService,
		studentService:      studentService,
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid ID parameter").WithField(name)))
		return 0, false
	}
	return id, true
}

// Register handles admin registration of a new student
// @Summary Register a new student
// @Description Creates a student with a server-allocated registration number and the default password.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterStudentRequest true "Student details"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse}
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /students [post]
func (c *StudentController) Register(ctx *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student := &models.Student{
		FirstName:   req.FirstName,
		SecondName:  req.SecondName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	created, err := c.registrationService.RegisterStudent(ctx.Request.Context(), student)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.StudentResponse{Student: created}))
}

// Get returns one student by ID
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.StudentResponse{Student: student}))
}

// Me returns the authenticated student's own record
// @Summary Get the authenticated student's profile
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse}
// @Router /me [get]
func (c *StudentController) Me(ctx *gin.Context) {
	student, err := c.studentService.GetStudent(ctx.Request.Context(), middleware.SubjectID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.StudentResponse{Student: student}))
}

// Enroll enrolls a student into a course
// @Summary Enroll a student into a course
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollStudentRequest true "Student and course"
// @Success 201 {object} dto.APIResponse{data=models.Enrollment}
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Router /enrollments [post]
func (c *StudentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enrollment, err := c.studentService.EnrollStudent(ctx.Request.Context(), req.StudentID, req.CourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(enrollment))
}

// ListEnrollments lists a student's enrollments
// @Summary List a student's enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Enrollment}
// @Router /students/{id}/enrollments [get]
func (c *StudentController) ListEnrollments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	enrollments, err := c.studentService.ListEnrollments(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollments))
}

// SetActive toggles a student's soft-deactivation flag
// @Summary Activate or deactivate a student
// @Description A deactivated student keeps all records but cannot log in.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body object{active=bool} true "Desired state"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Router /students/{id}/active [put]
func (c *StudentController) SetActive(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.studentService.SetActive(ctx.Request.Context(), id, *req.Active); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Student updated"}))
}
