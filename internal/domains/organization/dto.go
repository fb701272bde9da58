package organization

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"publishing-backend/internal/shared/apperr"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreateOrganizationRequest struct {
	Name        string  `json:"name"`
	CfeNumber   string  `json:"cfe_number"`
	Address     string  `json:"address"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
}

func (r CreateOrganizationRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), validation.Length(1, 255)),
		validation.Field(&r.CfeNumber, validation.Required.Error("cfe number is required"), validation.Length(1, 50)),
		validation.Field(&r.Address, validation.Required.Error("address is required")),
		validation.Field(&r.Phone, validation.Length(0, 30)),
		validation.Field(&r.Email, is.Email.Error("invalid email format")),
		validation.Field(&r.Website, is.URL.Error("invalid website url"), validation.Length(0, 500)),
	))
}

// UpdateOrganizationRequest - partial update. cfe_number chỉ được gửi lại đúng giá trị cũ.
type UpdateOrganizationRequest struct {
	Name        *string `json:"name"`
	CfeNumber   *string `json:"cfe_number"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
}

func (r UpdateOrganizationRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty.Error("name cannot be blank"), validation.Length(1, 255)),
		validation.Field(&r.Address, validation.NilOrNotEmpty.Error("address cannot be blank")),
		validation.Field(&r.Phone, validation.Length(0, 30)),
		validation.Field(&r.Email, is.Email.Error("invalid email format")),
		validation.Field(&r.Website, is.URL.Error("invalid website url"), validation.Length(0, 500)),
	))
}

// ========================================
// RESPONSE DTOs
// ========================================

type OrganizationResponse struct {
	ID                uuid.UUID `json:"id"`
	OwnerID           uuid.UUID `json:"owner_id"`
	Name              string    `json:"name"`
	CfeNumber         string    `json:"cfe_number"`
	Address           string    `json:"address"`
	Phone             *string   `json:"phone"`
	Email             *string   `json:"email"`
	Description       *string   `json:"description"`
	Website           *string   `json:"website"`
	IsActive          bool      `json:"is_active"`
	PublicationsCount int       `json:"publications_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Summary - thông tin tối thiểu nhúng vào response khác
type Summary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Stats - thống kê publication của một organization
type Stats struct {
	OrganizationID    uuid.UUID       `json:"organization_id"`
	TotalPublications int64           `json:"total_publications"`
	DraftCount        int64           `json:"draft_count"`
	PublishedCount    int64           `json:"published_count"`
	ArchivedCount     int64           `json:"archived_count"`
	TotalViews        int64           `json:"total_views"`
	AverageViews      decimal.Decimal `json:"average_views"` // trên số publication PUBLISHED
}
