package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountType - đúng 2 loại theo migration 000001
type AccountType string

const (
	AccountTypePrivate      AccountType = "PRIVATE"
	AccountTypeProfessional AccountType = "PROFESSIONAL"
)

// IsValid kiểm tra account type hợp lệ
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypePrivate, AccountTypeProfessional:
		return true
	}
	return false
}

func (t AccountType) String() string {
	return string(t)
}

// BusinessProfile là phần dữ liệu chỉ tồn tại ở tài khoản PROFESSIONAL.
// Chỉ tạo được qua NewBusinessProfile nên không thể thiếu field.
type BusinessProfile struct {
	companyName        string
	registrationNumber string
}

// NewBusinessProfile validate và tạo BusinessProfile
func NewBusinessProfile(companyName, registrationNumber string) (*BusinessProfile, error) {
	companyName = strings.TrimSpace(companyName)
	registrationNumber = strings.TrimSpace(registrationNumber)

	var err = ErrProfessionalFieldsRequired
	missing := false
	if companyName == "" {
		err = err.WithDetail("company_name", "company name is required for a professional account")
		missing = true
	}
	if registrationNumber == "" {
		err = err.WithDetail("cfe_number", "cfe number is required for a professional account")
		missing = true
	}
	if missing {
		return nil, err
	}

	return &BusinessProfile{companyName: companyName, registrationNumber: registrationNumber}, nil
}

func (b *BusinessProfile) CompanyName() string {
	return b.companyName
}

func (b *BusinessProfile) RegistrationNumber() string {
	return b.registrationNumber
}

// Identity là domain entity - ánh xạ 1:1 với bảng users.
// Tagged variant: Business == nil ⇔ PRIVATE, Business != nil ⇔ PROFESSIONAL.
type Identity struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string

	FirstName string
	LastName  string
	Address   string

	Business *BusinessProfile

	IsActive   bool
	IsVerified bool

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountType được suy ra từ variant, không lưu riêng trên struct
func (i *Identity) AccountType() AccountType {
	if i.Business != nil {
		return AccountTypeProfessional
	}
	return AccountTypePrivate
}

// IsProfessional - nil-safe, actor nil (anonymous) không phải professional
func (i *Identity) IsProfessional() bool {
	return i != nil && i.Business != nil
}

// Is kiểm tra identity có đúng là id (nil-safe)
func (i *Identity) Is(id uuid.UUID) bool {
	return i != nil && i.ID == id
}

func (i *Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// BecomeProfessional chuyển sang variant PROFESSIONAL
func (i *Identity) BecomeProfessional(profile *BusinessProfile) {
	i.Business = profile
}

// BecomePrivate bỏ business profile
func (i *Identity) BecomePrivate() {
	i.Business = nil
}

// NormalizeEmail lowercase + trim, dùng cho cả lưu trữ và lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToDTO convert sang response, không expose password hash
func (i *Identity) ToDTO() IdentityDTO {
	dto := IdentityDTO{
		ID:          i.ID,
		Email:       i.Email,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		FullName:    i.FullName(),
		Address:     i.Address,
		AccountType: i.AccountType(),
		IsActive:    i.IsActive,
		IsVerified:  i.IsVerified,
		LastLoginAt: i.LastLoginAt,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.Business != nil {
		companyName := i.Business.CompanyName()
		cfe := i.Business.RegistrationNumber()
		dto.CompanyName = &companyName
		dto.CfeNumber = &cfe
	}
	return dto
}
