package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Registration number pattern - TWOEM followed by a zero-padded suffix
	RegistrationNumberPattern = `^TWOEM\d{3,}$`

	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	RegistrationNumber *regexp.Regexp
	Email              *regexp.Regexp
}{
	RegistrationNumber: regexp.MustCompile(RegistrationNumberPattern),
	Email:              regexp.MustCompile(EmailPattern),
}

// IsValidRegistrationNumber reports whether s looks like an issued
// registration number.
func IsValidRegistrationNumber(s string) bool {
	return CompiledPatterns.RegistrationNumber.MatchString(s)
}

// RegisterCustomValidators installs custom binding rules on gin's
// validator engine. Call once during bootstrap.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("regno", func(fl validator.FieldLevel) bool {
		return IsValidRegistrationNumber(fl.Field().String())
	})
}
