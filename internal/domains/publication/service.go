package publication

import (
	"context"

	"github.com/google/uuid"

	"publishing-backend/internal/domains/account"
)

// Service - viewer/actor nil là anonymous
type Service interface {
	Create(ctx context.Context, actor *account.Identity, req CreatePublicationRequest) (*Detail, error)
	Get(ctx context.Context, viewer *account.Identity, id uuid.UUID) (*Detail, error)
	GetBySlug(ctx context.Context, viewer *account.Identity, slug string) (*Detail, error)
	Update(ctx context.Context, actor *account.Identity, id uuid.UUID, req UpdatePublicationRequest) (*Detail, error)
	Delete(ctx context.Context, actor *account.Identity, id uuid.UUID) error
	Publish(ctx context.Context, actor *account.Identity, id uuid.UUID) (*Detail, error)
	Archive(ctx context.Context, actor *account.Identity, id uuid.UUID) (*Detail, error)

	List(ctx context.Context, viewer *account.Identity, f ListFilter) (*ListResponse, error)
	Search(ctx context.Context, viewer *account.Identity, f ListFilter) (*ListResponse, error)
	ListMine(ctx context.Context, actor *account.Identity, f ListFilter) (*ListResponse, error)
	ListByOrganization(ctx context.Context, viewer *account.Identity, orgID uuid.UUID, f ListFilter) (*ListResponse, error)
}
