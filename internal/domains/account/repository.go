package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository định nghĩa data access cho bảng users
type Repository interface {
	// Create trả về ErrEmailAlreadyExists khi trùng email (case-insensitive)
	Create(ctx context.Context, identity *Identity) error
	FindByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)

	// Update ghi profile fields + variant (account_type, company_name, cfe_number)
	Update(ctx context.Context, identity *Identity) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
