package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/shared/apperr"
	"publishing-backend/internal/shared/utils"
)

// fakeRepo giữ organizations trong memory; dependents giả lập số publication tham chiếu
type fakeRepo struct {
	mu         sync.Mutex
	orgs       map[uuid.UUID]organization.Organization
	dependents map[uuid.UUID]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orgs:       make(map[uuid.UUID]organization.Organization),
		dependents: make(map[uuid.UUID]int),
	}
}

func (f *fakeRepo) Create(_ context.Context, org *organization.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orgs {
		if o.CfeNumber == org.CfeNumber {
			return organization.ErrCfeNumberTaken
		}
		if o.OwnerID == org.OwnerID && o.Name == org.Name {
			return organization.ErrNameTaken
		}
	}
	f.orgs[org.ID] = *org
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*organization.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[id]
	if !ok {
		return nil, organization.ErrOrganizationNotFound
	}
	return &o, nil
}

func (f *fakeRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]organization.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []organization.Organization
	for _, o := range f.orgs {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, org *organization.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orgs[org.ID]; !ok {
		return organization.ErrOrganizationNotFound
	}
	for _, o := range f.orgs {
		if o.ID != org.ID && o.OwnerID == org.OwnerID && o.Name == org.Name {
			return organization.ErrNameTaken
		}
	}
	f.orgs[org.ID] = *org
	return nil
}

func (f *fakeRepo) DeleteWithCheck(_ context.Context, id uuid.UUID, check organization.DeleteCheck) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[id]
	if !ok {
		return organization.ErrOrganizationNotFound
	}
	if err := check(&o, f.dependents[id]); err != nil {
		return err
	}
	delete(f.orgs, id)
	return nil
}

func (f *fakeRepo) Stats(_ context.Context, id uuid.UUID) (*organization.Stats, error) {
	return &organization.Stats{
		OrganizationID:    id,
		TotalPublications: 3,
		PublishedCount:    2,
		TotalViews:        7,
		AverageViews:      utils.AverageOf(5, 2),
	}, nil
}

// ========================================
// HELPERS
// ========================================

func professional(t *testing.T) *account.Identity {
	t.Helper()
	profile, err := account.NewBusinessProfile("Acme", uuid.NewString()[:8])
	require.NoError(t, err)
	return &account.Identity{ID: uuid.New(), IsActive: true, Business: profile}
}

func private() *account.Identity {
	return &account.Identity{ID: uuid.New(), IsActive: true}
}

func createOrg(t *testing.T, svc organization.Service, owner *account.Identity, name, cfe string) *organization.OrganizationResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), owner, organization.CreateOrganizationRequest{
		Name: name, CfeNumber: cfe, Address: "1 Main St",
	})
	require.NoError(t, err)
	return resp
}

// ========================================
// TESTS
// ========================================

func TestCreateOrganization(t *testing.T) {
	ctx := context.Background()

	t.Run("private account is denied", func(t *testing.T) {
		svc := NewOrganizationService(newFakeRepo())
		_, err := svc.Create(ctx, private(), organization.CreateOrganizationRequest{Name: "X", CfeNumber: "1", Address: "a"})
		assert.ErrorIs(t, err, organization.ErrProfessionalRequired)
		assert.True(t, apperr.IsKind(err, apperr.KindDenied))
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := NewOrganizationService(newFakeRepo())
		_, err := svc.Create(ctx, professional(t), organization.CreateOrganizationRequest{Name: "X"})
		require.True(t, apperr.IsKind(err, apperr.KindValidation))

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Details, "cfe_number")
		assert.Contains(t, appErr.Details, "address")
	})

	t.Run("owner set from actor", func(t *testing.T) {
		svc := NewOrganizationService(newFakeRepo())
		owner := professional(t)
		resp := createOrg(t, svc, owner, "Acme Press", "CFE-1")

		assert.Equal(t, owner.ID, resp.OwnerID)
		assert.True(t, resp.IsActive)
	})

	t.Run("cfe number unique across owners", func(t *testing.T) {
		svc := NewOrganizationService(newFakeRepo())
		createOrg(t, svc, professional(t), "A", "CFE-1")

		_, err := svc.Create(ctx, professional(t), organization.CreateOrganizationRequest{Name: "B", CfeNumber: "CFE-1", Address: "x"})
		assert.ErrorIs(t, err, organization.ErrCfeNumberTaken)
	})

	t.Run("name unique per owner only", func(t *testing.T) {
		svc := NewOrganizationService(newFakeRepo())
		owner := professional(t)
		createOrg(t, svc, owner, "Same", "CFE-1")

		_, err := svc.Create(ctx, owner, organization.CreateOrganizationRequest{Name: "Same", CfeNumber: "CFE-2", Address: "x"})
		assert.ErrorIs(t, err, organization.ErrNameTaken)

		createOrg(t, svc, professional(t), "Same", "CFE-3")
	})
}

func TestListOrganizationsIsOwnerScoped(t *testing.T) {
	svc := NewOrganizationService(newFakeRepo())
	a, b := professional(t), professional(t)
	createOrg(t, svc, a, "A1", "CFE-1")
	createOrg(t, svc, a, "A2", "CFE-2")
	createOrg(t, svc, b, "B1", "CFE-3")

	list, err := svc.List(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, o := range list {
		assert.Equal(t, a.ID, o.OwnerID)
	}
}

func TestUpdateOrganization(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewOrganizationService(repo)
	owner := professional(t)
	org := createOrg(t, svc, owner, "Acme", "CFE-1")

	t.Run("non owner denied", func(t *testing.T) {
		name := "Hijack"
		_, err := svc.Update(ctx, professional(t), org.ID, organization.UpdateOrganizationRequest{Name: &name})
		assert.ErrorIs(t, err, organization.ErrNotOwner)
	})

	t.Run("cfe number immutable", func(t *testing.T) {
		cfe := "CFE-2"
		_, err := svc.Update(ctx, owner, org.ID, organization.UpdateOrganizationRequest{CfeNumber: &cfe})
		assert.ErrorIs(t, err, organization.ErrCfeNumberImmutable)

		same := "CFE-1"
		name := "Acme Books"
		resp, err := svc.Update(ctx, owner, org.ID, organization.UpdateOrganizationRequest{CfeNumber: &same, Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Acme Books", resp.Name)
		assert.Equal(t, "CFE-1", resp.CfeNumber)
	})

	t.Run("demoted owner cannot modify", func(t *testing.T) {
		demoted := *owner
		demoted.BecomePrivate()
		name := "Nope"

		_, err := svc.Update(ctx, &demoted, org.ID, organization.UpdateOrganizationRequest{Name: &name})
		assert.ErrorIs(t, err, organization.ErrProfessionalRequired)

		_, err = svc.ToggleActive(ctx, &demoted, org.ID)
		assert.ErrorIs(t, err, organization.ErrProfessionalRequired)
	})

	t.Run("not found", func(t *testing.T) {
		name := "x"
		_, err := svc.Update(ctx, owner, uuid.New(), organization.UpdateOrganizationRequest{Name: &name})
		assert.ErrorIs(t, err, organization.ErrOrganizationNotFound)
	})
}

func TestToggleActive(t *testing.T) {
	svc := NewOrganizationService(newFakeRepo())
	owner := professional(t)
	org := createOrg(t, svc, owner, "Acme", "CFE-1")

	resp, err := svc.ToggleActive(context.Background(), owner, org.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	resp, err = svc.ToggleActive(context.Background(), owner, org.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
}

func TestDeleteOrganization(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked by publications", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewOrganizationService(repo)
		owner := professional(t)
		org := createOrg(t, svc, owner, "Acme", "CFE-1")
		repo.dependents[org.ID] = 1

		err := svc.Delete(ctx, owner, org.ID)
		assert.ErrorIs(t, err, organization.ErrHasPublications)
		assert.Equal(t, 409, apperr.HTTPStatus(err))

		_, err = repo.FindByID(ctx, org.ID)
		assert.NoError(t, err)
	})

	t.Run("non owner denied", func(t *testing.T) {
		svc := NewOrganizationService(newFakeRepo())
		org := createOrg(t, svc, professional(t), "Acme", "CFE-1")

		err := svc.Delete(ctx, professional(t), org.ID)
		assert.ErrorIs(t, err, organization.ErrNotOwner)
	})

	t.Run("demoted owner can still delete", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewOrganizationService(repo)
		owner := professional(t)
		org := createOrg(t, svc, owner, "Acme", "CFE-1")

		demoted := *owner
		demoted.BecomePrivate()
		require.NoError(t, svc.Delete(ctx, &demoted, org.ID))

		_, err := repo.FindByID(ctx, org.ID)
		assert.ErrorIs(t, err, organization.ErrOrganizationNotFound)
	})
}

func TestStatsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc := NewOrganizationService(newFakeRepo())
	owner := professional(t)
	org := createOrg(t, svc, owner, "Acme", "CFE-1")

	_, err := svc.Stats(ctx, professional(t), org.ID)
	assert.ErrorIs(t, err, organization.ErrNotOwner)

	stats, err := svc.Stats(ctx, owner, org.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.5").Equal(stats.AverageViews))
}

func TestCreateUsesClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := NewOrganizationService(newFakeRepo()).(*organizationService)
	svc.now = func() time.Time { return fixed }

	resp := createOrg(t, svc, professional(t), "Acme", "CFE-1")
	assert.Equal(t, fixed, resp.CreatedAt)
	assert.Equal(t, fixed, resp.UpdatedAt)
}
