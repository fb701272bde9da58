package account

import "publishing-backend/internal/shared/apperr"

// Repository-level errors
var (
	ErrIdentityNotFound   = apperr.NotFound("USER_NOT_FOUND", "User not found")
	ErrEmailAlreadyExists = apperr.Validation("EMAIL_ALREADY_EXISTS", "Email already exists").
				WithDetail("email", "a user with this email already exists")
)

// Service-level (business logic) errors
var (
	// Authentication
	ErrInvalidCredentials   = apperr.Unauthenticated("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountInactive      = apperr.Unauthenticated("ACCOUNT_INACTIVE", "User account is inactive")
	ErrInvalidToken         = apperr.Unauthenticated("INVALID_TOKEN", "Invalid or expired token")
	ErrTokenRevoked         = apperr.Unauthenticated("TOKEN_REVOKED", "Token has been revoked")
	ErrTooManyLoginAttempts = apperr.TooManyRequests("TOO_MANY_ATTEMPTS", "Too many login attempts, please try again later")

	// Password
	ErrWrongPassword = apperr.Validation("WRONG_PASSWORD", "Current password is incorrect").
				WithDetail("current_password", "current password is incorrect")
	ErrSamePassword = apperr.Validation("SAME_PASSWORD", "New password cannot be same as current password").
			WithDetail("new_password", "new password must differ from the current one")

	// Professional variant
	ErrProfessionalFieldsRequired = apperr.Validation("PROFESSIONAL_FIELDS_REQUIRED", "Professional accounts require company name and cfe number")
)
