package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/infrastructure/database"
	"publishing-backend/internal/shared/utils"
	pkgdb "publishing-backend/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) organization.Repository {
	return &postgresRepository{pool: pool}
}

// publications_count chỉ đếm PUBLISHED
const selectOrganizationColumns = `
	SELECT o.id, o.owner_id, o.name, o.cfe_number, o.address,
	       o.phone, o.email, o.description, o.website,
	       o.is_active, o.created_at, o.updated_at,
	       (SELECT COUNT(*) FROM publications p
	         WHERE p.organization_id = o.id AND p.status = 'PUBLISHED') AS publications_count
	FROM organizations o
`

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, org *organization.Organization) error {
	query := `
		INSERT INTO organizations (
			id, owner_id, name, cfe_number, address,
			phone, email, description, website,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		org.ID,
		org.OwnerID,
		org.Name,
		org.CfeNumber,
		org.Address,
		org.Phone,
		org.Email,
		org.Description,
		org.Website,
		org.IsActive,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "insert organization")
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	row := r.pool.QueryRow(ctx, selectOrganizationColumns+` WHERE o.id = $1`, id)
	return scanOrganization(row)
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]organization.Organization, error) {
	rows, err := r.pool.Query(ctx,
		selectOrganizationColumns+` WHERE o.owner_id = $1 ORDER BY o.created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]organization.Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return orgs, nil
}

// Update không bao giờ ghi cfe_number và owner_id
func (r *postgresRepository) Update(ctx context.Context, org *organization.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2,
		    address = $3,
		    phone = $4,
		    email = $5,
		    description = $6,
		    website = $7,
		    is_active = $8,
		    updated_at = $9
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		org.ID,
		org.Name,
		org.Address,
		org.Phone,
		org.Email,
		org.Description,
		org.Website,
		org.IsActive,
		org.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "update organization")
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrOrganizationNotFound
	}

	return nil
}

// DeleteWithCheck: SELECT ... FOR UPDATE chặn publication mới gắn vào org (FK check
// cần KEY SHARE lock) cho tới khi transaction kết thúc, nên count không bị stale.
func (r *postgresRepository) DeleteWithCheck(ctx context.Context, id uuid.UUID, check organization.DeleteCheck) error {
	return pkgdb.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// STEP 1: lock row
		org, err := scanOrganization(tx.QueryRow(ctx,
			selectOrganizationColumns+` WHERE o.id = $1 FOR UPDATE OF o`, id))
		if err != nil {
			return err
		}

		// STEP 2: đếm mọi publication tham chiếu (mọi status)
		var dependents int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM publications WHERE organization_id = $1`, id,
		).Scan(&dependents); err != nil {
			return fmt.Errorf("count organization publications: %w", err)
		}

		// STEP 3: policy
		if err := check(org, dependents); err != nil {
			return err
		}

		// STEP 4: delete - FK RESTRICT là lớp bảo vệ cuối
		if _, err := tx.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id); err != nil {
			if database.IsForeignKeyViolation(err) {
				return organization.ErrHasPublications
			}
			return fmt.Errorf("delete organization: %w", err)
		}

		return nil
	})
}

func (r *postgresRepository) Stats(ctx context.Context, id uuid.UUID) (*organization.Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'DRAFT'),
		       COUNT(*) FILTER (WHERE status = 'PUBLISHED'),
		       COUNT(*) FILTER (WHERE status = 'ARCHIVED'),
		       COALESCE(SUM(views_count), 0),
		       COALESCE(SUM(views_count) FILTER (WHERE status = 'PUBLISHED'), 0)
		FROM publications
		WHERE organization_id = $1
	`

	stats := &organization.Stats{OrganizationID: id}
	var publishedViews int64
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&stats.TotalPublications,
		&stats.DraftCount,
		&stats.PublishedCount,
		&stats.ArchivedCount,
		&stats.TotalViews,
		&publishedViews,
	)
	if err != nil {
		return nil, fmt.Errorf("organization stats: %w", err)
	}

	stats.AverageViews = utils.AverageOf(publishedViews, stats.PublishedCount)
	return stats, nil
}

// ========================================
// HELPERS
// ========================================

func scanOrganization(row pgx.Row) (*organization.Organization, error) {
	var org organization.Organization
	err := row.Scan(
		&org.ID,
		&org.OwnerID,
		&org.Name,
		&org.CfeNumber,
		&org.Address,
		&org.Phone,
		&org.Email,
		&org.Description,
		&org.Website,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
		&org.PublicationsCount,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, organization.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	return &org, nil
}

// mapWriteError map unique violation theo tên constraint
func mapWriteError(err error, op string) error {
	if constraint, ok := database.UniqueViolation(err); ok {
		switch constraint {
		case "organizations_cfe_number_key":
			return organization.ErrCfeNumberTaken
		case "organizations_owner_name_key":
			return organization.ErrNameTaken
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
