package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Student errors
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPasswordChangeRequired = errors.New("password change required")
)

// Registration number errors
var (
	// ErrAllocationConflict signals a transient registration number
	// collision; the caller retries allocation a bounded number of times.
	ErrAllocationConflict = errors.New("registration number allocation conflict")
	// ErrAllocationExhausted is returned once the retry budget is spent.
	ErrAllocationExhausted = errors.New("registration number allocation retries exhausted")
)

// Course and enrollment errors
var (
	ErrCourseNotFound        = errors.New("course not found")
	ErrEnrollmentNotFound    = errors.New("enrollment not found")
	ErrAlreadyEnrolled       = errors.New("student is already enrolled in this course")
	ErrUnitNotInCourse       = errors.New("unit does not belong to the enrollment's course")
)

// Academic marks errors
var (
	// ErrInvalidMark is returned for a unit or exam mark outside [0,100].
	// The whole save batch is aborted, nothing is written.
	ErrInvalidMark = errors.New("mark must be between 0 and 100")
)

// Certificate errors
var (
	// ErrNotEligible is returned when issuance is attempted while the final
	// grade is not Pass or the fee balance is still outstanding.
	ErrNotEligible = errors.New("certificate requirements not met")
	// ErrAlreadyIssued signals an idempotent no-op; the certificate
	// timestamp is first-issue-wins and is never overwritten.
	ErrAlreadyIssued = errors.New("certificate already issued")
)

// Fee errors
var (
	ErrInvalidFeeAmount = errors.New("fee amounts must be non-negative and at least one must be greater than zero")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewResourceNotFoundError creates a new custom error for resource not found
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}
