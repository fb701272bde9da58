package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/domains/policy"
	"publishing-backend/pkg/logger"
)

type organizationService struct {
	repo organization.Repository
	now  func() time.Time
}

func NewOrganizationService(repo organization.Repository) organization.Service {
	return &organizationService{
		repo: repo,
		now:  time.Now,
	}
}

// Create - chỉ PROFESSIONAL được tạo, owner là actor
func (s *organizationService) Create(ctx context.Context, actor *account.Identity, req organization.CreateOrganizationRequest) (*organization.OrganizationResponse, error) {
	// 1. AUTHORIZE
	if !policy.CanCreateOrganization(actor) {
		return nil, organization.ErrProfessionalRequired
	}

	// 2. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 3. BUILD ENTITY
	now := s.now()
	org := &organization.Organization{
		ID:          uuid.New(),
		OwnerID:     actor.ID,
		Name:        strings.TrimSpace(req.Name),
		CfeNumber:   strings.TrimSpace(req.CfeNumber),
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Description: req.Description,
		Website:     req.Website,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 4. PERSIST - uniqueness do constraint quyết định
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}

	logger.Info("Organization created", map[string]interface{}{
		"organization_id": org.ID.String(),
		"owner_id":        actor.ID.String(),
	})

	resp := org.ToResponse()
	return &resp, nil
}

// List - chỉ organization của actor
func (s *organizationService) List(ctx context.Context, actor *account.Identity) ([]organization.OrganizationResponse, error) {
	orgs, err := s.repo.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	result := make([]organization.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		result = append(result, orgs[i].ToResponse())
	}
	return result, nil
}

// Get - mọi user đã đăng nhập đều xem được
func (s *organizationService) Get(ctx context.Context, _ *account.Identity, id uuid.UUID) (*organization.OrganizationResponse, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := org.ToResponse()
	return &resp, nil
}

// Update - owner còn PROFESSIONAL, cfe_number không được đổi
func (s *organizationService) Update(ctx context.Context, actor *account.Identity, id uuid.UUID, req organization.UpdateOrganizationRequest) (*organization.OrganizationResponse, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. LOAD + AUTHORIZE
	org, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	// 3. IMMUTABLE FIELD
	if req.CfeNumber != nil && strings.TrimSpace(*req.CfeNumber) != org.CfeNumber {
		return nil, organization.ErrCfeNumberImmutable
	}

	// 4. APPLY
	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		org.Address = *req.Address
	}
	if req.Phone != nil {
		org.Phone = req.Phone
	}
	if req.Email != nil {
		org.Email = req.Email
	}
	if req.Description != nil {
		org.Description = req.Description
	}
	if req.Website != nil {
		org.Website = req.Website
	}
	org.UpdatedAt = s.now()

	// 5. PERSIST
	if err := s.repo.Update(ctx, org); err != nil {
		return nil, err
	}

	resp := org.ToResponse()
	return &resp, nil
}

// Delete - check dependents chạy trong cùng transaction với DELETE
func (s *organizationService) Delete(ctx context.Context, actor *account.Identity, id uuid.UUID) error {
	err := s.repo.DeleteWithCheck(ctx, id, func(org *organization.Organization, dependents int) error {
		return policy.CanDeleteOrganization(actor, org, dependents)
	})
	if err != nil {
		return err
	}

	logger.Info("Organization deleted", map[string]interface{}{
		"organization_id": id.String(),
		"owner_id":        actor.ID.String(),
	})
	return nil
}

func (s *organizationService) ToggleActive(ctx context.Context, actor *account.Identity, id uuid.UUID) (*organization.OrganizationResponse, error) {
	org, err := s.loadForModify(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	org.IsActive = !org.IsActive
	org.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, err
	}

	resp := org.ToResponse()
	return &resp, nil
}

// Stats - chỉ owner
func (s *organizationService) Stats(ctx context.Context, actor *account.Identity, id uuid.UUID) (*organization.Stats, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !org.IsOwnedBy(actor.ID) {
		return nil, organization.ErrNotOwner
	}

	return s.repo.Stats(ctx, id)
}

// loadForModify: non-owner => ErrNotOwner, owner bị hạ xuống PRIVATE => ErrProfessionalRequired
func (s *organizationService) loadForModify(ctx context.Context, actor *account.Identity, id uuid.UUID) (*organization.Organization, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanModifyOrganization(actor, org) {
		if !org.IsOwnedBy(actor.ID) {
			return nil, organization.ErrNotOwner
		}
		return nil, organization.ErrProfessionalRequired
	}

	return org, nil
}
