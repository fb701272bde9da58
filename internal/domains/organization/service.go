package organization

import (
	"context"

	"github.com/google/uuid"

	"publishing-backend/internal/domains/account"
)

type Service interface {
	Create(ctx context.Context, actor *account.Identity, req CreateOrganizationRequest) (*OrganizationResponse, error)
	List(ctx context.Context, actor *account.Identity) ([]OrganizationResponse, error)
	Get(ctx context.Context, actor *account.Identity, id uuid.UUID) (*OrganizationResponse, error)
	Update(ctx context.Context, actor *account.Identity, id uuid.UUID, req UpdateOrganizationRequest) (*OrganizationResponse, error)
	Delete(ctx context.Context, actor *account.Identity, id uuid.UUID) error
	ToggleActive(ctx context.Context, actor *account.Identity, id uuid.UUID) (*OrganizationResponse, error)
	Stats(ctx context.Context, actor *account.Identity, id uuid.UUID) (*Stats, error)
}
