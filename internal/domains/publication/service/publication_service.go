package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/domains/policy"
	"publishing-backend/internal/domains/publication"
	"publishing-backend/internal/shared/utils"
	"publishing-backend/pkg/logger"
)

type publicationService struct {
	repo    publication.Repository
	orgRepo organization.Repository
	now     func() time.Time
}

func NewPublicationService(repo publication.Repository, orgRepo organization.Repository) publication.Service {
	return &publicationService{
		repo:    repo,
		orgRepo: orgRepo,
		now:     time.Now,
	}
}

// ========================================
// WRITE OPERATIONS
// ========================================

func (s *publicationService) Create(ctx context.Context, actor *account.Identity, req publication.CreatePublicationRequest) (*publication.Detail, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. ORGANIZATION (optional) - phải thuộc author
	var org *organization.Organization
	if req.OrganizationID != nil {
		var err error
		if org, err = s.resolveOrganization(ctx, actor, *req.OrganizationID); err != nil {
			return nil, err
		}
	}

	// 3. BUILD ENTITY - slug sinh một lần tại đây
	p := publication.New(actor.ID, req.Title, req.Content, req.InitialStatus(), s.now())
	p.CoverImageURL = req.CoverImageURL
	p.Tags = utils.NormalizeTags(req.Tags)
	p.AuthorName = actor.FullName()
	p.AuthorEmail = actor.Email
	if org != nil {
		p.OrganizationID = &org.ID
		p.OrganizationName = &org.Name
	}

	// 4. PERSIST
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info("Publication created", map[string]interface{}{
		"publication_id": p.ID.String(),
		"author_id":      actor.ID.String(),
		"status":         p.Status.String(),
	})

	detail := p.ToDetail()
	return &detail, nil
}

// Update - generic update, không đổi status
func (s *publicationService) Update(ctx context.Context, actor *account.Identity, id uuid.UUID, req publication.UpdatePublicationRequest) (*publication.Detail, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. LOAD + AUTHORIZE
	p, err := s.loadForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	// 3. STATUS chỉ đổi qua publish/archive
	if err := req.CheckStatus(p.Status); err != nil {
		return nil, err
	}

	// 4. APPLY - slug không đổi kể cả khi title đổi
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.CoverImageURL != nil {
		p.CoverImageURL = req.CoverImageURL
	}
	if req.Tags != nil {
		p.Tags = utils.NormalizeTags(*req.Tags)
	}

	switch {
	case req.DetachOrganization:
		p.OrganizationID = nil
		p.OrganizationName = nil
	case req.OrganizationID != nil:
		org, err := s.resolveOrganization(ctx, actor, *req.OrganizationID)
		if err != nil {
			return nil, err
		}
		p.OrganizationID = &org.ID
		p.OrganizationName = &org.Name
	}
	p.UpdatedAt = s.now()

	// 5. PERSIST
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	detail := p.ToDetail()
	return &detail, nil
}

func (s *publicationService) Delete(ctx context.Context, actor *account.Identity, id uuid.UUID) error {
	if _, err := s.loadForWrite(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Publication deleted", map[string]interface{}{
		"publication_id": id.String(),
		"author_id":      actor.ID.String(),
	})
	return nil
}

// Publish: DRAFT -> PUBLISHED
func (s *publicationService) Publish(ctx context.Context, actor *account.Identity, id uuid.UUID) (*publication.Detail, error) {
	p, err := s.loadForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	// Kiểm tra state machine trên bản đã load, repo làm CAS để chặn race
	from, now := p.Status, s.now()
	if err := p.Publish(now); err != nil {
		return nil, err
	}

	updated, err := s.repo.Publish(ctx, id, from, now)
	if err != nil {
		return nil, err
	}

	logger.Info("Publication published", map[string]interface{}{
		"publication_id": id.String(),
		"author_id":      actor.ID.String(),
	})

	detail := updated.ToDetail()
	return &detail, nil
}

// Archive: mọi status -> ARCHIVED, gọi lại trên ARCHIVED vẫn thành công
func (s *publicationService) Archive(ctx context.Context, actor *account.Identity, id uuid.UUID) (*publication.Detail, error) {
	if _, err := s.loadForWrite(ctx, actor, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.Archive(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	detail := updated.ToDetail()
	return &detail, nil
}

// ========================================
// READ OPERATIONS
// ========================================

func (s *publicationService) Get(ctx context.Context, viewer *account.Identity, id uuid.UUID) (*publication.Detail, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.readDetail(ctx, viewer, p)
}

func (s *publicationService) GetBySlug(ctx context.Context, viewer *account.Identity, slug string) (*publication.Detail, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.readDetail(ctx, viewer, p)
}

func (s *publicationService) List(ctx context.Context, viewer *account.Identity, f publication.ListFilter) (*publication.ListResponse, error) {
	return s.list(ctx, publication.ForViewer(viewer), f)
}

// Search - q trên title/content/tags, visibility luôn áp dụng
func (s *publicationService) Search(ctx context.Context, viewer *account.Identity, f publication.ListFilter) (*publication.ListResponse, error) {
	return s.list(ctx, publication.ForViewer(viewer), f)
}

// ListMine - mọi publication của actor, mọi status
func (s *publicationService) ListMine(ctx context.Context, actor *account.Identity, f publication.ListFilter) (*publication.ListResponse, error) {
	f.AuthorID = nil
	return s.list(ctx, publication.OwnedBy(actor.ID), f)
}

func (s *publicationService) ListByOrganization(ctx context.Context, viewer *account.Identity, orgID uuid.UUID, f publication.ListFilter) (*publication.ListResponse, error) {
	if _, err := s.orgRepo.FindByID(ctx, orgID); err != nil {
		return nil, err
	}

	f.OrganizationID = &orgID
	return s.list(ctx, publication.ForViewer(viewer), f)
}

// ========================================
// HELPERS
// ========================================

func (s *publicationService) list(ctx context.Context, vis publication.Visibility, f publication.ListFilter) (*publication.ListResponse, error) {
	f.Normalize()

	pubs, total, err := s.repo.List(ctx, vis, f)
	if err != nil {
		return nil, err
	}

	items := make([]publication.ListItem, 0, len(pubs))
	for i := range pubs {
		items = append(items, pubs[i].ToListItem())
	}

	return &publication.ListResponse{
		Items:    items,
		Page:     f.Page,
		PageSize: f.PageSize,
		Total:    total,
	}, nil
}

// readDetail: ẩn => NotFound, non-author đọc thì tăng views
func (s *publicationService) readDetail(ctx context.Context, viewer *account.Identity, p *publication.Publication) (*publication.Detail, error) {
	if !policy.CanReadPublication(viewer, p) {
		return nil, publication.ErrPublicationNotFound
	}

	if !policy.CanModifyPublication(viewer, p) {
		views, err := s.repo.IncrementViews(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.ViewsCount = views
	}

	detail := p.ToDetail()
	return &detail, nil
}

// loadForWrite: không đọc được => NotFound, đọc được nhưng không phải author => ErrNotAuthor
func (s *publicationService) loadForWrite(ctx context.Context, actor *account.Identity, id uuid.UUID) (*publication.Publication, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanReadPublication(actor, p) {
		return nil, publication.ErrPublicationNotFound
	}
	if !policy.CanModifyPublication(actor, p) {
		return nil, publication.ErrNotAuthor
	}

	return p, nil
}

// resolveOrganization - org không tồn tại trả cùng lỗi với org của người khác
func (s *publicationService) resolveOrganization(ctx context.Context, actor *account.Identity, orgID uuid.UUID) (*organization.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, organization.ErrOrganizationNotFound) {
			return nil, publication.ErrOrganizationNotOwned
		}
		return nil, err
	}

	if err := policy.CanAttachOrganization(actor, org); err != nil {
		return nil, err
	}
	return org, nil
}
