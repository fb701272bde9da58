package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"publishing-backend/internal/domains/publication"
	"publishing-backend/internal/infrastructure/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) publication.Repository {
	return &postgresRepository{pool: pool}
}

const selectPublicationColumns = `
	SELECT p.id, p.author_id, p.organization_id, p.title, p.content,
	       p.status, p.slug, p.cover_image_url, p.tags, p.views_count,
	       p.published_at, p.created_at, p.updated_at,
	       TRIM(CONCAT(u.first_name, ' ', u.last_name)) AS author_name,
	       u.email,
	       o.name
`

const fromPublications = `
	FROM publications p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN organizations o ON o.id = p.organization_id
`

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, p *publication.Publication) error {
	query := `
		INSERT INTO publications (
			id, author_id, organization_id, title, content,
			status, slug, cover_image_url, tags, views_count,
			published_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.AuthorID,
		p.OrganizationID,
		p.Title,
		p.Content,
		p.Status.String(),
		p.Slug,
		p.CoverImageURL,
		p.Tags,
		p.ViewsCount,
		p.PublishedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "insert publication")
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*publication.Publication, error) {
	row := r.pool.QueryRow(ctx, selectPublicationColumns+fromPublications+` WHERE p.id = $1`, id)
	return scanPublication(row)
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string) (*publication.Publication, error) {
	row := r.pool.QueryRow(ctx, selectPublicationColumns+fromPublications+` WHERE p.slug = $1`, slug)
	return scanPublication(row)
}

func (r *postgresRepository) Update(ctx context.Context, p *publication.Publication) error {
	query := `
		UPDATE publications
		SET title = $2,
		    content = $3,
		    organization_id = $4,
		    cover_image_url = $5,
		    tags = $6,
		    updated_at = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Content,
		p.OrganizationID,
		p.CoverImageURL,
		p.Tags,
		p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "update publication")
	}
	if tag.RowsAffected() == 0 {
		return publication.ErrPublicationNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM publications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return publication.ErrPublicationNotFound
	}
	return nil
}

// ========================================
// LIST & SEARCH
// ========================================

func (r *postgresRepository) List(ctx context.Context, vis publication.Visibility, f publication.ListFilter) ([]publication.Publication, int, error) {
	f.Normalize()
	where, args := publication.BuildWhere(vis, f)

	// STEP 1: COUNT
	var total int
	countQuery := `SELECT COUNT(*) ` + fromPublications + ` WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count publications: %w", err)
	}
	if total == 0 {
		return []publication.Publication{}, 0, nil
	}

	// STEP 2: PAGE
	argIndex := len(args) + 1
	query := selectPublicationColumns + fromPublications +
		` WHERE ` + where +
		` ORDER BY ` + f.OrderBy() +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argIndex, argIndex+1)
	args = append(args, f.PageSize, f.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()

	pubs := make([]publication.Publication, 0, f.PageSize)
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, 0, err
		}
		pubs = append(pubs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate publications: %w", err)
	}

	return publication.Dedupe(pubs), total, nil
}

// ========================================
// COUNTERS & STATE TRANSITIONS
// ========================================

func (r *postgresRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	var views int64
	err := r.pool.QueryRow(ctx,
		`UPDATE publications SET views_count = views_count + 1 WHERE id = $1 RETURNING views_count`,
		id,
	).Scan(&views)
	if err != nil {
		if database.IsNoRows(err) {
			return 0, publication.ErrPublicationNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// Publish là compare-and-set trên status: hai request publish đồng thời chỉ một cái thắng
func (r *postgresRepository) Publish(ctx context.Context, id uuid.UUID, from publication.Status, at time.Time) (*publication.Publication, error) {
	query := `
		UPDATE publications
		SET status = 'PUBLISHED',
		    published_at = COALESCE(published_at, $3),
		    updated_at = $3
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, from.String(), at)
	if err != nil {
		return nil, fmt.Errorf("publish publication: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// status đã đổi giữa lúc đọc và lúc ghi
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == publication.StatusArchived {
			return nil, publication.ErrPublishArchived
		}
		return nil, publication.ErrAlreadyPublished
	}

	return r.FindByID(ctx, id)
}

// Archive idempotent: đã ARCHIVED thì không ghi gì
func (r *postgresRepository) Archive(ctx context.Context, id uuid.UUID, at time.Time) (*publication.Publication, error) {
	_, err := r.pool.Exec(ctx,
		`UPDATE publications SET status = 'ARCHIVED', updated_at = $2 WHERE id = $1 AND status <> 'ARCHIVED'`,
		id, at)
	if err != nil {
		return nil, fmt.Errorf("archive publication: %w", err)
	}
	return r.FindByID(ctx, id)
}

// ========================================
// HELPERS
// ========================================

func scanPublication(row pgx.Row) (*publication.Publication, error) {
	var (
		p      publication.Publication
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.OrganizationID,
		&p.Title,
		&p.Content,
		&status,
		&p.Slug,
		&p.CoverImageURL,
		&p.Tags,
		&p.ViewsCount,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.AuthorName,
		&p.AuthorEmail,
		&p.OrganizationName,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, publication.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("scan publication: %w", err)
	}
	p.Status = publication.Status(status)
	return &p, nil
}

func mapWriteError(err error, op string) error {
	if constraint, ok := database.UniqueViolation(err); ok && constraint == "publications_slug_key" {
		return publication.ErrSlugTaken
	}
	if database.IsForeignKeyViolation(err) {
		return publication.ErrOrganizationNotOwned
	}
	return fmt.Errorf("%s: %w", op, err)
}
