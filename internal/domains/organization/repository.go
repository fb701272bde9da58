package organization

import (
	"context"

	"github.com/google/uuid"
)

// DeleteCheck được gọi trong transaction xóa, sau khi row đã bị lock.
// dependents là số publication đang tham chiếu organization.
type DeleteCheck func(org *Organization, dependents int) error

type Repository interface {
	// Create trả về ErrCfeNumberTaken / ErrNameTaken khi vi phạm unique
	Create(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Organization, error)
	Update(ctx context.Context, org *Organization) error

	// DeleteWithCheck: lock row, đếm publications, gọi check, rồi DELETE - tất cả trong 1 transaction
	DeleteWithCheck(ctx context.Context, id uuid.UUID, check DeleteCheck) error

	Stats(ctx context.Context, id uuid.UUID) (*Stats, error)
}
