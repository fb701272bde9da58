package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/infrastructure/database"
	"publishing-backend/internal/shared/utils"
)

// postgresRepository là concrete implementation của account.Repository.
// Private struct, bên ngoài chỉ thấy interface.
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) account.Repository {
	return &postgresRepository{pool: pool}
}

const selectIdentityColumns = `
	SELECT id, email, password_hash, first_name, last_name, address,
	       account_type, company_name, cfe_number,
	       is_active, is_verified, last_login_at, created_at, updated_at
	FROM users
`

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, i *account.Identity) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, address,
			account_type, company_name, cfe_number,
			is_active, is_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	companyName, cfe := businessColumns(i)
	_, err := r.pool.Exec(ctx, query,
		i.ID,
		i.Email,
		i.PasswordHash,
		i.FirstName,
		i.LastName,
		i.Address,
		i.AccountType().String(),
		companyName,
		cfe,
		i.IsActive,
		i.IsVerified,
		i.CreatedAt,
		i.UpdatedAt,
	)
	if err != nil {
		// 23505 trên users_email_key => email đã tồn tại
		if constraint, ok := database.UniqueViolation(err); ok && constraint == "users_email_key" {
			return account.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Identity, error) {
	row := r.pool.QueryRow(ctx, selectIdentityColumns+` WHERE id = $1`, id)
	return scanIdentity(row)
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*account.Identity, error) {
	row := r.pool.QueryRow(ctx, selectIdentityColumns+` WHERE LOWER(email) = $1`, account.NormalizeEmail(email))
	return scanIdentity(row)
}

func (r *postgresRepository) Update(ctx context.Context, i *account.Identity) error {
	query := `
		UPDATE users
		SET first_name = $2,
		    last_name = $3,
		    address = $4,
		    account_type = $5,
		    company_name = $6,
		    cfe_number = $7,
		    updated_at = $8
		WHERE id = $1
	`

	companyName, cfe := businessColumns(i)
	tag, err := r.pool.Exec(ctx, query,
		i.ID,
		i.FirstName,
		i.LastName,
		i.Address,
		i.AccountType().String(),
		companyName,
		cfe,
		i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrIdentityNotFound
	}

	return nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrIdentityNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// ========================================
// HELPERS
// ========================================

// businessColumns trả về NULL cho PRIVATE
func businessColumns(i *account.Identity) (*string, *string) {
	if i.Business == nil {
		return nil, nil
	}
	companyName := i.Business.CompanyName()
	cfe := i.Business.RegistrationNumber()
	return &companyName, &cfe
}

func scanIdentity(row pgx.Row) (*account.Identity, error) {
	var (
		i           account.Identity
		accountType string
		companyName *string
		cfe         *string
	)

	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.FirstName,
		&i.LastName,
		&i.Address,
		&accountType,
		&companyName,
		&cfe,
		&i.IsActive,
		&i.IsVerified,
		&i.LastLoginAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, account.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if account.AccountType(accountType) == account.AccountTypeProfessional {
		profile, err := account.NewBusinessProfile(utils.DerefString(companyName), utils.DerefString(cfe))
		if err != nil {
			// users_professional_fields_check đảm bảo không xảy ra
			return nil, fmt.Errorf("corrupt professional row %s: %w", i.ID, err)
		}
		i.Business = profile
	}

	return &i, nil
}
