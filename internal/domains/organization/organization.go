package organization

import (
	"time"

	"github.com/google/uuid"
)

// Organization thuộc về một identity PROFESSIONAL.
// cfe_number unique toàn hệ thống, (owner_id, name) unique.
type Organization struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	CfeNumber   string
	Address     string
	Phone       *string
	Email       *string
	Description *string
	Website     *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Chỉ đọc: số publication PUBLISHED, được tính khi query
	PublicationsCount int
}

// IsOwnedBy - nil-safe theo owner id
func (o *Organization) IsOwnedBy(id uuid.UUID) bool {
	return o != nil && o.OwnerID == id
}

func (o *Organization) ToResponse() OrganizationResponse {
	return OrganizationResponse{
		ID:                o.ID,
		OwnerID:           o.OwnerID,
		Name:              o.Name,
		CfeNumber:         o.CfeNumber,
		Address:           o.Address,
		Phone:             o.Phone,
		Email:             o.Email,
		Description:       o.Description,
		Website:           o.Website,
		IsActive:          o.IsActive,
		PublicationsCount: o.PublicationsCount,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}
