package policy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/domains/publication"
)

func professional(t *testing.T) *account.Identity {
	t.Helper()
	profile, err := account.NewBusinessProfile("Acme", "CFE-001")
	require.NoError(t, err)
	return &account.Identity{ID: uuid.New(), Business: profile}
}

func TestOrganizationPolicies(t *testing.T) {
	owner := professional(t)
	stranger := professional(t)
	org := &organization.Organization{ID: uuid.New(), OwnerID: owner.ID}

	assert.True(t, CanCreateOrganization(owner))
	assert.False(t, CanCreateOrganization(&account.Identity{ID: uuid.New()}))
	assert.False(t, CanCreateOrganization(nil))

	assert.True(t, CanModifyOrganization(owner, org))
	assert.False(t, CanModifyOrganization(stranger, org))
	assert.False(t, CanModifyOrganization(nil, org))

	demoted := *owner
	demoted.BecomePrivate()
	assert.False(t, CanModifyOrganization(&demoted, org))
}

func TestCanDeleteOrganization(t *testing.T) {
	owner := professional(t)
	org := &organization.Organization{ID: uuid.New(), OwnerID: owner.ID}

	assert.NoError(t, CanDeleteOrganization(owner, org, 0))
	assert.ErrorIs(t, CanDeleteOrganization(owner, org, 1), organization.ErrHasPublications)
	assert.ErrorIs(t, CanDeleteOrganization(professional(t), org, 0), organization.ErrNotOwner)
	assert.ErrorIs(t, CanDeleteOrganization(nil, org, 0), organization.ErrNotOwner)

	demoted := *owner
	demoted.BecomePrivate()
	assert.NoError(t, CanDeleteOrganization(&demoted, org, 0))
}

func TestPublicationPolicies(t *testing.T) {
	author := &account.Identity{ID: uuid.New()}
	other := &account.Identity{ID: uuid.New()}
	draft := publication.New(author.ID, "t", "c", publication.StatusDraft, time.Now())
	live := publication.New(author.ID, "t", "c", publication.StatusPublished, time.Now())

	assert.True(t, CanModifyPublication(author, draft))
	assert.False(t, CanModifyPublication(other, live))
	assert.False(t, CanModifyPublication(nil, live))

	assert.True(t, CanReadPublication(nil, live))
	assert.True(t, CanReadPublication(author, draft))
	assert.False(t, CanReadPublication(other, draft))
	assert.False(t, CanReadPublication(nil, draft))
}

func TestCanAttachOrganization(t *testing.T) {
	owner := professional(t)
	org := &organization.Organization{ID: uuid.New(), OwnerID: owner.ID}

	assert.NoError(t, CanAttachOrganization(owner, org))
	assert.ErrorIs(t, CanAttachOrganization(professional(t), org), publication.ErrOrganizationNotOwned)
	assert.ErrorIs(t, CanAttachOrganization(owner, nil), publication.ErrOrganizationNotOwned)

	demoted := *owner
	demoted.BecomePrivate()
	assert.ErrorIs(t, CanAttachOrganization(&demoted, org), publication.ErrOrganizationRequiresProfessional)
}
