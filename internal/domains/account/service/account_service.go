package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"publishing-backend/internal/config"
	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/shared/apperr"
	"publishing-backend/pkg/cache"
	"publishing-backend/pkg/jwt"
	"publishing-backend/pkg/logger"
)

const (
	defaultBcryptCost = 12

	revokedTokenKeyPrefix = "auth:revoked:"
	failedLoginKeyPrefix  = "auth:failed_login:"
)

// accountService implement account.Service
type accountService struct {
	repo   account.Repository
	store  cache.Cache // refresh-token revocation + failed login counters
	tokens *jwt.Manager
	cfg    config.AuthConfig

	bcryptCost int
	now        func() time.Time
}

func NewAccountService(repo account.Repository, store cache.Cache, tokens *jwt.Manager, cfg config.AuthConfig) account.Service {
	return &accountService{
		repo:       repo,
		store:      store,
		tokens:     tokens,
		cfg:        cfg,
		bcryptCost: defaultBcryptCost,
		now:        time.Now,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

// Register tạo identity mới và trả về token pair
func (s *accountService) Register(ctx context.Context, req account.RegisterRequest) (*account.AuthResponse, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. BUILD VARIANT - professional phải có đủ business fields
	now := s.now()
	identity := &account.Identity{
		ID:         uuid.New(),
		Email:      account.NormalizeEmail(req.Email),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		IsActive:   true,
		IsVerified: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.ResolvedAccountType() == account.AccountTypeProfessional {
		profile, err := account.NewBusinessProfile(req.CompanyName, req.CfeNumber)
		if err != nil {
			return nil, err
		}
		identity.BecomeProfessional(profile)
	}

	// 3. HASH PASSWORD
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	identity.PasswordHash = string(hash)

	// 4. PERSIST - unique email do DB quyết định
	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id":      identity.ID.String(),
		"account_type": identity.AccountType().String(),
	})

	// 5. ISSUE TOKENS
	return s.issueTokens(identity)
}

// Login xác thực email/password, có throttle theo email
func (s *accountService) Login(ctx context.Context, req account.LoginRequest) (*account.AuthResponse, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := account.NormalizeEmail(req.Email)

	// 2. THROTTLE CHECK
	if s.tooManyFailures(ctx, email) {
		return nil, account.ErrTooManyLoginAttempts
	}

	// 3. FIND USER - không tiết lộ email có tồn tại hay không
	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			s.recordFailure(ctx, email)
			return nil, account.ErrInvalidCredentials
		}
		return nil, err
	}

	// 4. VERIFY PASSWORD
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, account.ErrInvalidCredentials
	}

	// 5. CHECK STATUS
	if !identity.IsActive {
		return nil, account.ErrAccountInactive
	}

	s.clearFailures(ctx, email)

	// 6. UPDATE LAST LOGIN - lỗi chỉ log
	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, identity.ID, now); err != nil {
		logger.Error("update last login failed", err)
	} else {
		identity.LastLoginAt = &now
	}

	return s.issueTokens(identity)
}

// RefreshToken rotate token pair, refresh token cũ bị revoke
func (s *accountService) RefreshToken(ctx context.Context, req account.RefreshTokenRequest) (*account.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.validateRefresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, account.ErrInvalidToken
	}

	identity, err := s.ResolveActor(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.revoke(ctx, claims)

	return s.issueTokens(identity)
}

// Logout revoke refresh token của chính actor
func (s *accountService) Logout(ctx context.Context, actor *account.Identity, req account.RefreshTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := s.validateRefresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}

	if claims.UserID != actor.ID.String() {
		return account.ErrInvalidToken
	}

	s.revoke(ctx, claims)
	return nil
}

// ========================================
// PROFILE
// ========================================

func (s *accountService) GetProfile(ctx context.Context, actor *account.Identity) (*account.IdentityDTO, error) {
	// Đọc lại từ DB để trả về state mới nhất
	identity, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	dto := identity.ToDTO()
	return &dto, nil
}

// UpdateProfile cập nhật profile, có thể đổi variant PRIVATE <-> PROFESSIONAL.
// Thao tác trên bản copy nên lỗi không làm thay đổi actor.
func (s *accountService) UpdateProfile(ctx context.Context, actor *account.Identity, req account.UpdateProfileRequest) (*account.IdentityDTO, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. GET CURRENT STATE
	current, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	updated := *current

	// 3. APPLY FIELDS
	if req.FirstName != nil {
		updated.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		updated.LastName = *req.LastName
	}
	if req.Address != nil {
		updated.Address = *req.Address
	}

	// 4. RE-VALIDATE VARIANT
	targetType := current.AccountType()
	if req.AccountType != nil {
		targetType = account.AccountType(*req.AccountType)
	}

	switch targetType {
	case account.AccountTypeProfessional:
		companyName, cfe := "", ""
		if current.Business != nil {
			companyName = current.Business.CompanyName()
			cfe = current.Business.RegistrationNumber()
		}
		if req.CompanyName != nil {
			companyName = *req.CompanyName
		}
		if req.CfeNumber != nil {
			cfe = *req.CfeNumber
		}
		profile, err := account.NewBusinessProfile(companyName, cfe)
		if err != nil {
			return nil, err
		}
		updated.BecomeProfessional(profile)
	default:
		updated.BecomePrivate()
	}

	// 5. PERSIST
	updated.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	dto := updated.ToDTO()
	return &dto, nil
}

// ChangePassword yêu cầu password hiện tại và password mới khác password cũ
func (s *accountService) ChangePassword(ctx context.Context, actor *account.Identity, req account.ChangePasswordRequest) error {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return err
	}

	// 2. GET CURRENT HASH
	identity, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return err
	}

	// 3. VERIFY CURRENT PASSWORD
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return account.ErrWrongPassword
	}

	// 4. NEW != OLD
	if req.NewPassword == req.CurrentPassword {
		return account.ErrSamePassword
	}

	// 5. HASH + UPDATE
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, identity.ID, string(hash))
}

// ResolveActor dùng bởi actor middleware
func (s *accountService) ResolveActor(ctx context.Context, id uuid.UUID) (*account.Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, account.ErrInvalidToken
		}
		return nil, err
	}

	if !identity.IsActive {
		return nil, account.ErrAccountInactive
	}

	return identity, nil
}

// ========================================
// HELPERS
// ========================================

func (s *accountService) issueTokens(identity *account.Identity) (*account.AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(identity.ID.String(), identity.Email, identity.AccountType().String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(identity.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &account.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(s.tokens.AccessExpiry()),
		User:         identity.ToDTO(),
	}, nil
}

func (s *accountService) validateRefresh(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateRefreshToken(token)
	if err != nil {
		return nil, account.ErrInvalidToken.Wrap(err)
	}

	// Store lỗi thì fail open như login throttling, token hợp lệ về chữ ký vẫn dùng được
	revoked, err := s.store.Exists(ctx, revokedTokenKeyPrefix+claims.ID)
	if err != nil {
		logger.Error("check token revocation", err)
		return claims, nil
	}
	if revoked {
		return nil, account.ErrTokenRevoked
	}

	return claims, nil
}

// revoke giữ jti trong store tới khi token tự hết hạn. Store lỗi chỉ log.
func (s *accountService) revoke(ctx context.Context, claims *jwt.Claims) {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}

	if err := s.store.Set(ctx, revokedTokenKeyPrefix+claims.ID, true, ttl); err != nil {
		logger.Error("revoke refresh token", err)
	}
}

// tooManyFailures - store lỗi thì fail open, chỉ log
func (s *accountService) tooManyFailures(ctx context.Context, email string) bool {
	if s.cfg.MaxFailedLogins <= 0 {
		return false
	}

	var count int64
	found, err := s.store.Get(ctx, failedLoginKeyPrefix+email, &count)
	if err != nil {
		logger.Error("read failed login counter", err)
		return false
	}

	return found && count >= int64(s.cfg.MaxFailedLogins)
}

func (s *accountService) recordFailure(ctx context.Context, email string) {
	key := failedLoginKeyPrefix + email

	count, err := s.store.Increment(ctx, key)
	if err != nil {
		logger.Error("increment failed login counter", err)
		return
	}

	// Window bắt đầu từ lần fail đầu tiên
	if count == 1 {
		if err := s.store.Expire(ctx, key, s.cfg.FailedLoginWindow); err != nil {
			logger.Error("set failed login window", err)
		}
	}

	if count >= int64(s.cfg.MaxFailedLogins) {
		logger.Warn("Login throttled", map[string]interface{}{"email": email, "failures": count})
	}
}

func (s *accountService) clearFailures(ctx context.Context, email string) {
	if err := s.store.Delete(ctx, failedLoginKeyPrefix+email); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("clear failed login counter", err)
	}
}
