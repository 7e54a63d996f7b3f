package models

import "time"

// Student defines the student model based on the 'students' table
type Student struct {
	ID                     int64      `json:"id" db:"id" example:"1"`
	RegistrationNumber     string     `json:"registrationNumber" db:"registration_number" example:"TWOEM001"`
	FirstName              string     `json:"firstName" db:"first_name"`
	SecondName             *string    `json:"secondName,omitempty" db:"second_name"` // Nullable
	LastName               string     `json:"lastName" db:"last_name"`
	Email                  string     `json:"email" db:"email"`
	PhoneNumber            *string    `json:"phoneNumber,omitempty" db:"phone_number"` // Nullable
	PasswordHash           string     `json:"-" db:"password_hash"`
	RequiresPasswordChange bool       `json:"requiresPasswordChange" db:"requires_password_change"`
	IsProfileComplete      bool       `json:"isProfileComplete" db:"is_profile_complete"`
	IsActive               bool       `json:"isActive" db:"is_active"`
	LastLoginAt            *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt              time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName returns the student's display name.
func (s *Student) FullName() string {
	name := s.FirstName
	if s.SecondName != nil && *s.SecondName != "" {
		name += " " + *s.SecondName
	}
	return name + " " + s.LastName
}
