package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"publishing-backend/internal/config"
	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/shared/apperr"
	"publishing-backend/pkg/jwt"
)

// ========================================
// FAKES
// ========================================

type fakeRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]account.Identity
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[uuid.UUID]account.Identity)}
}

func (f *fakeRepo) Create(_ context.Context, i *account.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == i.Email {
			return account.ErrEmailAlreadyExists
		}
	}
	f.users[i.ID] = *i
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*account.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, account.ErrIdentityNotFound
	}
	return &u, nil
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*account.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == account.NormalizeEmail(email) {
			return &u, nil
		}
	}
	return nil, account.ErrIdentityNotFound
}

func (f *fakeRepo) Update(_ context.Context, i *account.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[i.ID]; !ok {
		return account.ErrIdentityNotFound
	}
	f.users[i.ID] = *i
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return account.ErrIdentityNotFound
	}
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.LastLoginAt = &at
	f.users[id] = u
	return nil
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCache) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return m.Called(ctx, key, ttl).Error(0)
}

// ========================================
// SETUP
// ========================================

const testPassword = "Secret123"

var testAuthConfig = config.AuthConfig{MaxFailedLogins: 5, FailedLoginWindow: 15 * time.Minute}

func newTestService(repo *fakeRepo, store *mockCache) *accountService {
	tokens := jwt.NewManager("test-secret", 15*time.Minute, 72*time.Hour)
	svc := NewAccountService(repo, store, tokens, testAuthConfig).(*accountService)
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func seedUser(t *testing.T, repo *fakeRepo, email string, active bool) *account.Identity {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	u := &account.Identity{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Ana",
		IsActive:     active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Details
}

// ========================================
// REGISTER
// ========================================

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("private account gets tokens", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, new(mockCache))

		resp, err := svc.Register(ctx, account.RegisterRequest{
			Email:           "  Ana@Example.com ",
			Password:        testPassword,
			PasswordConfirm: testPassword,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "ana@example.com", resp.User.Email)
		assert.Equal(t, account.AccountTypePrivate, resp.User.AccountType)
		assert.Nil(t, resp.User.CompanyName)
	})

	t.Run("professional requires business fields", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), new(mockCache))

		_, err := svc.Register(ctx, account.RegisterRequest{
			Email:           "pro@example.com",
			Password:        testPassword,
			PasswordConfirm: testPassword,
			AccountType:     "PROFESSIONAL",
			CompanyName:     "Acme",
		})
		require.True(t, apperr.IsKind(err, apperr.KindValidation))
		assert.Contains(t, detailsOf(t, err), "cfe_number")
	})

	t.Run("professional with business fields", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), new(mockCache))

		resp, err := svc.Register(ctx, account.RegisterRequest{
			Email:           "pro@example.com",
			Password:        testPassword,
			PasswordConfirm: testPassword,
			AccountType:     "PROFESSIONAL",
			CompanyName:     "Acme",
			CfeNumber:       "CFE-1",
		})
		require.NoError(t, err)
		assert.Equal(t, account.AccountTypeProfessional, resp.User.AccountType)
		require.NotNil(t, resp.User.CfeNumber)
		assert.Equal(t, "CFE-1", *resp.User.CfeNumber)
	})

	t.Run("password confirmation mismatch", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), new(mockCache))

		_, err := svc.Register(ctx, account.RegisterRequest{
			Email:           "a@example.com",
			Password:        testPassword,
			PasswordConfirm: "Other1234",
		})
		assert.Contains(t, detailsOf(t, err), "password_confirm")
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, "dup@example.com", true)
		svc := newTestService(repo, new(mockCache))

		_, err := svc.Register(ctx, account.RegisterRequest{
			Email:           "DUP@example.com",
			Password:        testPassword,
			PasswordConfirm: testPassword,
		})
		assert.ErrorIs(t, err, account.ErrEmailAlreadyExists)
		assert.Contains(t, detailsOf(t, err), "email")
	})
}

// ========================================
// LOGIN
// ========================================

func TestLogin(t *testing.T) {
	ctx := context.Background()
	key := failedLoginKeyPrefix + "ana@example.com"

	t.Run("success clears failure counter", func(t *testing.T) {
		repo := newFakeRepo()
		u := seedUser(t, repo, "ana@example.com", true)
		store := new(mockCache)
		store.On("Get", mock.Anything, key, mock.Anything).Return(false, nil)
		store.On("Delete", mock.Anything, []string{key}).Return(nil)
		svc := newTestService(repo, store)

		resp, err := svc.Login(ctx, account.LoginRequest{Email: "ANA@example.com", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, u.ID, resp.User.ID)
		assert.NotNil(t, resp.User.LastLoginAt)
		store.AssertExpectations(t)
	})

	t.Run("wrong password starts failure window", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, "ana@example.com", true)
		store := new(mockCache)
		store.On("Get", mock.Anything, key, mock.Anything).Return(false, nil)
		store.On("Increment", mock.Anything, key).Return(int64(1), nil)
		store.On("Expire", mock.Anything, key, 15*time.Minute).Return(nil)
		svc := newTestService(repo, store)

		_, err := svc.Login(ctx, account.LoginRequest{Email: "ana@example.com", Password: "Wrong1234"})
		assert.ErrorIs(t, err, account.ErrInvalidCredentials)
		store.AssertExpectations(t)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		store := new(mockCache)
		store.On("Get", mock.Anything, failedLoginKeyPrefix+"ghost@example.com", mock.Anything).Return(false, nil)
		store.On("Increment", mock.Anything, failedLoginKeyPrefix+"ghost@example.com").Return(int64(2), nil)
		svc := newTestService(newFakeRepo(), store)

		_, err := svc.Login(ctx, account.LoginRequest{Email: "ghost@example.com", Password: testPassword})
		assert.ErrorIs(t, err, account.ErrInvalidCredentials)
		store.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("throttled after max failures", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, "ana@example.com", true)
		store := new(mockCache)
		store.On("Get", mock.Anything, key, mock.Anything).
			Run(func(args mock.Arguments) {
				*args.Get(2).(*int64) = 5
			}).
			Return(true, nil)
		svc := newTestService(repo, store)

		_, err := svc.Login(ctx, account.LoginRequest{Email: "ana@example.com", Password: testPassword})
		assert.ErrorIs(t, err, account.ErrTooManyLoginAttempts)
		assert.Equal(t, 429, apperr.HTTPStatus(err))
	})

	t.Run("inactive account rejected", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, "ana@example.com", false)
		store := new(mockCache)
		store.On("Get", mock.Anything, key, mock.Anything).Return(false, nil)
		svc := newTestService(repo, store)

		_, err := svc.Login(ctx, account.LoginRequest{Email: "ana@example.com", Password: testPassword})
		assert.ErrorIs(t, err, account.ErrAccountInactive)
	})
}

// ========================================
// TOKENS
// ========================================

func TestRefreshTokenRotates(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	u := seedUser(t, repo, "ana@example.com", true)
	store := new(mockCache)
	svc := newTestService(repo, store)

	refresh, err := svc.tokens.GenerateRefreshToken(u.ID.String())
	require.NoError(t, err)
	claims, err := svc.tokens.ValidateRefreshToken(refresh)
	require.NoError(t, err)

	store.On("Exists", mock.Anything, revokedTokenKeyPrefix+claims.ID).Return(false, nil).Once()
	store.On("Set", mock.Anything, revokedTokenKeyPrefix+claims.ID, true, mock.AnythingOfType("time.Duration")).Return(nil).Once()

	resp, err := svc.RefreshToken(ctx, account.RefreshTokenRequest{RefreshToken: refresh})
	require.NoError(t, err)
	assert.NotEqual(t, refresh, resp.RefreshToken)
	store.AssertExpectations(t)

	// Token cũ đã bị revoke
	store.On("Exists", mock.Anything, revokedTokenKeyPrefix+claims.ID).Return(true, nil).Once()
	_, err = svc.RefreshToken(ctx, account.RefreshTokenRequest{RefreshToken: refresh})
	assert.ErrorIs(t, err, account.ErrTokenRevoked)
}

func TestRefreshAndLogoutWhenStoreDown(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	u := seedUser(t, repo, "ana@example.com", true)
	store := new(mockCache)
	storeDown := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	store.On("Exists", mock.Anything, mock.Anything).Return(false, storeDown)
	store.On("Set", mock.Anything, mock.Anything, true, mock.Anything).Return(storeDown)
	svc := newTestService(repo, store)

	refresh, err := svc.tokens.GenerateRefreshToken(u.ID.String())
	require.NoError(t, err)

	resp, err := svc.RefreshToken(ctx, account.RefreshTokenRequest{RefreshToken: refresh})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	require.NoError(t, svc.Logout(ctx, u, account.RefreshTokenRequest{RefreshToken: resp.RefreshToken}))
	store.AssertNumberOfCalls(t, "Set", 2)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	repo := newFakeRepo()
	u := seedUser(t, repo, "ana@example.com", true)
	svc := newTestService(repo, new(mockCache))

	access, err := svc.tokens.GenerateAccessToken(u.ID.String(), u.Email, "PRIVATE")
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), account.RefreshTokenRequest{RefreshToken: access})
	assert.ErrorIs(t, err, account.ErrInvalidToken)
}

func TestLogoutRequiresOwnToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	owner := seedUser(t, repo, "ana@example.com", true)
	other := seedUser(t, repo, "bob@example.com", true)
	store := new(mockCache)
	store.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	store.On("Set", mock.Anything, mock.Anything, true, mock.Anything).Return(nil)
	svc := newTestService(repo, store)

	refresh, err := svc.tokens.GenerateRefreshToken(owner.ID.String())
	require.NoError(t, err)

	err = svc.Logout(ctx, other, account.RefreshTokenRequest{RefreshToken: refresh})
	assert.ErrorIs(t, err, account.ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, owner, account.RefreshTokenRequest{RefreshToken: refresh}))
	store.AssertNumberOfCalls(t, "Set", 1)
}

// ========================================
// PROFILE
// ========================================

func TestUpdateProfileVariant(t *testing.T) {
	ctx := context.Background()
	pro := "PROFESSIONAL"
	private := "PRIVATE"
	company := "Acme"
	cfe := "CFE-9"

	t.Run("switch to professional without fields leaves state unchanged", func(t *testing.T) {
		repo := newFakeRepo()
		u := seedUser(t, repo, "ana@example.com", true)
		svc := newTestService(repo, new(mockCache))

		_, err := svc.UpdateProfile(ctx, u, account.UpdateProfileRequest{AccountType: &pro, CompanyName: &company})
		require.True(t, apperr.IsKind(err, apperr.KindValidation))
		assert.Contains(t, detailsOf(t, err), "cfe_number")

		stored, err := repo.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, account.AccountTypePrivate, stored.AccountType())
	})

	t.Run("switch to professional and back", func(t *testing.T) {
		repo := newFakeRepo()
		u := seedUser(t, repo, "ana@example.com", true)
		svc := newTestService(repo, new(mockCache))

		dto, err := svc.UpdateProfile(ctx, u, account.UpdateProfileRequest{AccountType: &pro, CompanyName: &company, CfeNumber: &cfe})
		require.NoError(t, err)
		assert.Equal(t, account.AccountTypeProfessional, dto.AccountType)

		dto, err = svc.UpdateProfile(ctx, u, account.UpdateProfileRequest{AccountType: &private})
		require.NoError(t, err)
		assert.Equal(t, account.AccountTypePrivate, dto.AccountType)
		assert.Nil(t, dto.CfeNumber)
	})

	t.Run("professional cannot blank company name", func(t *testing.T) {
		repo := newFakeRepo()
		u := seedUser(t, repo, "ana@example.com", true)
		svc := newTestService(repo, new(mockCache))
		_, err := svc.UpdateProfile(ctx, u, account.UpdateProfileRequest{AccountType: &pro, CompanyName: &company, CfeNumber: &cfe})
		require.NoError(t, err)

		blank := "  "
		_, err = svc.UpdateProfile(ctx, u, account.UpdateProfileRequest{CompanyName: &blank})
		assert.Contains(t, detailsOf(t, err), "company_name")
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	u := seedUser(t, repo, "ana@example.com", true)
	svc := newTestService(repo, new(mockCache))

	err := svc.ChangePassword(ctx, u, account.ChangePasswordRequest{
		CurrentPassword: "Wrong1234", NewPassword: "Newpass123", NewPasswordConfirm: "Newpass123",
	})
	assert.ErrorIs(t, err, account.ErrWrongPassword)

	err = svc.ChangePassword(ctx, u, account.ChangePasswordRequest{
		CurrentPassword: testPassword, NewPassword: testPassword, NewPasswordConfirm: testPassword,
	})
	assert.ErrorIs(t, err, account.ErrSamePassword)

	err = svc.ChangePassword(ctx, u, account.ChangePasswordRequest{
		CurrentPassword: testPassword, NewPassword: "Newpass123", NewPasswordConfirm: "Newpass123",
	})
	require.NoError(t, err)

	stored, _ := repo.FindByID(ctx, u.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Newpass123")))
}

func TestResolveActor(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	active := seedUser(t, repo, "ana@example.com", true)
	inactive := seedUser(t, repo, "bob@example.com", false)
	svc := newTestService(repo, new(mockCache))

	got, err := svc.ResolveActor(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = svc.ResolveActor(ctx, inactive.ID)
	assert.ErrorIs(t, err, account.ErrAccountInactive)

	_, err = svc.ResolveActor(ctx, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}
