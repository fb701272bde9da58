package account

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"publishing-backend/internal/shared/apperr"
)

// ========================================
// RESPONSE DTOs
// ========================================

type IdentityDTO struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	FullName    string      `json:"full_name"`
	Address     string      `json:"address"`
	AccountType AccountType `json:"account_type"`
	CompanyName *string     `json:"company_name"`
	CfeNumber   *string     `json:"cfe_number"`
	IsActive    bool        `json:"is_active"`
	IsVerified  bool        `json:"is_verified"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// AuthResponse - JWT tokens + profile
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         IdentityDTO `json:"user"`
}

// ========================================
// REQUEST DTOs
// ========================================

var passwordRules = []validation.Rule{
	validation.Required.Error("password is required"),
	validation.Length(8, 128).Error("password must be 8-128 characters"),
	validation.Match(regexp.MustCompile(`[A-Z]`)).Error("password must contain at least one uppercase letter"),
	validation.Match(regexp.MustCompile(`[a-z]`)).Error("password must contain at least one lowercase letter"),
	validation.Match(regexp.MustCompile(`[0-9]`)).Error("password must contain at least one number"),
}

func accountTypeRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" || AccountType(s).IsValid() {
		return nil
	}
	return errors.New("account type must be PRIVATE or PROFESSIONAL")
}

func equalTo(other string, message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != other {
			return errors.New(message)
		}
		return nil
	}
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Address         string `json:"address"`
	AccountType     string `json:"account_type"`
	CompanyName     string `json:"company_name"`
	CfeNumber       string `json:"cfe_number"`
}

// ResolvedAccountType - mặc định PRIVATE
func (r RegisterRequest) ResolvedAccountType() AccountType {
	if r.AccountType == "" {
		return AccountTypePrivate
	}
	return AccountType(r.AccountType)
}

func (r RegisterRequest) Validate() error {
	professional := r.ResolvedAccountType() == AccountTypeProfessional

	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password, passwordRules...),
		validation.Field(&r.PasswordConfirm,
			validation.Required.Error("password confirmation is required"),
			validation.By(equalTo(r.Password, "passwords do not match")),
		),
		validation.Field(&r.FirstName, validation.Length(0, 150)),
		validation.Field(&r.LastName, validation.Length(0, 150)),
		validation.Field(&r.AccountType, validation.By(accountTypeRule)),
		validation.Field(&r.CompanyName,
			validation.When(professional, validation.Required.Error("company name is required for a professional account")),
			validation.Length(0, 255),
		),
		validation.Field(&r.CfeNumber,
			validation.When(professional, validation.Required.Error("cfe number is required for a professional account")),
			validation.Length(0, 50),
		),
	))
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	))
}

// RefreshTokenRequest dùng cho cả refresh và logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshTokenRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required.Error("refresh token is required")),
	))
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

func (r ChangePasswordRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required.Error("current password is required")),
		validation.Field(&r.NewPassword, passwordRules...),
		validation.Field(&r.NewPasswordConfirm,
			validation.Required.Error("password confirmation is required"),
			validation.By(equalTo(r.NewPassword, "passwords do not match")),
		),
	))
}

// UpdateProfileRequest - partial update, field nil = giữ nguyên
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Address     *string `json:"address"`
	AccountType *string `json:"account_type"`
	CompanyName *string `json:"company_name"`
	CfeNumber   *string `json:"cfe_number"`
}

func (r UpdateProfileRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 150)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 150)),
		validation.Field(&r.AccountType, validation.NilOrNotEmpty, validation.By(accountTypeRule)),
		validation.Field(&r.CompanyName, validation.Length(0, 255)),
		validation.Field(&r.CfeNumber, validation.Length(0, 50)),
	))
}
