package publication

import "publishing-backend/internal/shared/apperr"

var (
	// Không phân biệt "không tồn tại" và "không được xem"
	ErrPublicationNotFound = apperr.NotFound("PUBLICATION_NOT_FOUND", "Publication not found")
	ErrNotAuthor           = apperr.Denied("NOT_PUBLICATION_AUTHOR", "Only the author can modify this publication")

	// State machine
	ErrAlreadyPublished = apperr.Conflict("ALREADY_PUBLISHED", "Publication is already published")
	ErrPublishArchived  = apperr.Conflict("PUBLICATION_ARCHIVED", "Archived publications cannot be published")
	ErrStatusChange     = apperr.Validation("STATUS_CHANGE_NOT_ALLOWED", "Status can only be changed via publish or archive").
				WithDetail("status", "use the publish or archive action to change status")

	// Organization attachment
	ErrOrganizationNotOwned = apperr.Validation("INVALID_ORGANIZATION", "Invalid organization").
				WithDetail("organization_id", "organization not found or not owned by you")
	ErrOrganizationRequiresProfessional = apperr.Validation("ORGANIZATION_REQUIRES_PROFESSIONAL", "Invalid organization").
						WithDetail("organization_id", "only professional accounts can publish under an organization")

	ErrSlugTaken = apperr.Validation("SLUG_TAKEN", "Slug already exists").
			WithDetail("slug", "a publication with this slug already exists")
)
