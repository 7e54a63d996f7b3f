package dto

// AdminLoginRequest represents back-office login credentials
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// StudentLoginRequest represents student portal login credentials
type StudentLoginRequest struct {
	RegistrationNumber string `json:"registrationNumber" binding:"required,regno"`
	Password           string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn"`

	// RequiresPasswordChange tells the client to force the first-login
	// password change flow before anything else.
	RequiresPasswordChange bool `json:"requiresPasswordChange,omitempty"`
}

// ChangePasswordRequest represents a student password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}
