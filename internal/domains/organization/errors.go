package organization

import "publishing-backend/internal/shared/apperr"

var (
	ErrOrganizationNotFound = apperr.NotFound("ORGANIZATION_NOT_FOUND", "Organization not found")

	ErrCfeNumberTaken = apperr.Validation("CFE_NUMBER_TAKEN", "Organization with this cfe number already exists").
				WithDetail("cfe_number", "an organization with this cfe number already exists")
	ErrNameTaken = apperr.Validation("ORGANIZATION_NAME_TAKEN", "You already have an organization with this name").
			WithDetail("name", "you already have an organization with this name")
	ErrCfeNumberImmutable = apperr.Validation("CFE_NUMBER_IMMUTABLE", "Cfe number cannot be changed").
				WithDetail("cfe_number", "cfe number cannot be changed")

	ErrProfessionalRequired = apperr.Denied("PROFESSIONAL_ACCOUNT_REQUIRED", "Only professional accounts can manage organizations")
	ErrNotOwner             = apperr.Denied("NOT_ORGANIZATION_OWNER", "You do not own this organization")

	ErrHasPublications = apperr.Conflict("ORGANIZATION_HAS_PUBLICATIONS", "Cannot delete organization with existing publications")
)
