package account

import (
	"context"

	"github.com/google/uuid"
)

// Service định nghĩa business logic cho identity & authentication.
// actor luôn là identity đã được middleware load, không bao giờ nil ở các method cần auth.
type Service interface {
	// Authentication
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*AuthResponse, error)
	Logout(ctx context.Context, actor *Identity, req RefreshTokenRequest) error

	// Profile
	GetProfile(ctx context.Context, actor *Identity) (*IdentityDTO, error)
	UpdateProfile(ctx context.Context, actor *Identity, req UpdateProfileRequest) (*IdentityDTO, error)
	ChangePassword(ctx context.Context, actor *Identity, req ChangePasswordRequest) error

	// ResolveActor load identity cho middleware, inactive/không tồn tại => Unauthenticated
	ResolveActor(ctx context.Context, id uuid.UUID) (*Identity, error)
}
