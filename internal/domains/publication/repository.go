package publication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create trả về ErrSlugTaken khi trùng slug
	Create(ctx context.Context, p *Publication) error
	FindByID(ctx context.Context, id uuid.UUID) (*Publication, error)
	FindBySlug(ctx context.Context, slug string) (*Publication, error)

	// Update ghi title, content, organization, cover, tags. Không đụng status, slug, author.
	Update(ctx context.Context, p *Publication) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List áp dụng visibility + filter, trả về page và tổng số bản ghi khớp
	List(ctx context.Context, vis Visibility, f ListFilter) ([]Publication, int, error)

	// IncrementViews tăng atomic và trả về giá trị mới
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)

	// Publish chỉ chuyển khi status hiện tại vẫn là from; published_at giữ nguyên nếu đã có
	Publish(ctx context.Context, id uuid.UUID, from Status, at time.Time) (*Publication, error)
	Archive(ctx context.Context, id uuid.UUID, at time.Time) (*Publication, error)
}
