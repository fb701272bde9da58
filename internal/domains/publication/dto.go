package publication

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/shared/apperr"
	"publishing-backend/internal/shared/utils"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreatePublicationRequest struct {
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Status         string     `json:"status"` // DRAFT (mặc định) hoặc PUBLISHED
	OrganizationID *uuid.UUID `json:"organization_id"`
	CoverImageURL  *string    `json:"cover_image_url"`
	Tags           string     `json:"tags"`
}

// initialStatusRule - lúc tạo chỉ cho DRAFT hoặc PUBLISHED
func initialStatusRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	status, ok := ParseStatus(s)
	if !ok || status == StatusArchived {
		return errors.New("status must be DRAFT or PUBLISHED")
	}
	return nil
}

func (r CreatePublicationRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.Length(1, 255)),
		validation.Field(&r.Content, validation.Required.Error("content is required")),
		validation.Field(&r.Status, validation.By(initialStatusRule)),
		validation.Field(&r.CoverImageURL, is.URL.Error("invalid cover image url"), validation.Length(0, 500)),
		validation.Field(&r.Tags, validation.Length(0, 1000)),
	))
}

// InitialStatus - mặc định DRAFT
func (r CreatePublicationRequest) InitialStatus() Status {
	if s, ok := ParseStatus(r.Status); ok {
		return s
	}
	return StatusDraft
}

// UpdatePublicationRequest - partial update. Status chỉ được gửi lại đúng giá trị hiện tại,
// đổi status phải qua publish/archive.
type UpdatePublicationRequest struct {
	Title          *string    `json:"title"`
	Content        *string    `json:"content"`
	Status         *string    `json:"status"`
	OrganizationID *uuid.UUID `json:"organization_id"`
	// DetachOrganization bỏ organization khỏi publication
	DetachOrganization bool    `json:"detach_organization"`
	CoverImageURL      *string `json:"cover_image_url"`
	Tags               *string `json:"tags"`
}

func (r UpdatePublicationRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty.Error("title cannot be blank"), validation.Length(1, 255)),
		validation.Field(&r.Content, validation.NilOrNotEmpty.Error("content cannot be blank")),
		validation.Field(&r.CoverImageURL, is.URL.Error("invalid cover image url"), validation.Length(0, 500)),
		validation.Field(&r.Tags, validation.Length(0, 1000)),
	))
}

// CheckStatus trả về ErrStatusChange nếu body muốn đổi status
func (r UpdatePublicationRequest) CheckStatus(current Status) error {
	if r.Status == nil {
		return nil
	}
	s, ok := ParseStatus(*r.Status)
	if !ok || s != current {
		return ErrStatusChange
	}
	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type AuthorSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ListItem - item trong list/search
type ListItem struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	AuthorName       string     `json:"author_name"`
	OrganizationName *string    `json:"organization_name"`
	Status           Status     `json:"status"`
	Slug             string     `json:"slug"`
	ViewsCount       int64      `json:"views_count"`
	PublishedAt      *time.Time `json:"published_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Detail - GET /publications/:id
type Detail struct {
	ID            uuid.UUID             `json:"id"`
	Title         string                `json:"title"`
	Content       string                `json:"content"`
	ContentHTML   string                `json:"content_html"`
	Status        Status                `json:"status"`
	Slug          string                `json:"slug"`
	CoverImageURL *string               `json:"cover_image_url"`
	Tags          string                `json:"tags"`
	TagsList      []string              `json:"tags_list"`
	ViewsCount    int64                 `json:"views_count"`
	Author        AuthorSummary         `json:"author"`
	Organization  *organization.Summary `json:"organization"`
	PublishedAt   *time.Time            `json:"published_at"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type ListResponse struct {
	Items    []ListItem
	Page     int
	PageSize int
	Total    int
}

func (p *Publication) ToListItem() ListItem {
	return ListItem{
		ID:               p.ID,
		Title:            p.Title,
		AuthorName:       p.AuthorName,
		OrganizationName: p.OrganizationName,
		Status:           p.Status,
		Slug:             p.Slug,
		ViewsCount:       p.ViewsCount,
		PublishedAt:      p.PublishedAt,
		CreatedAt:        p.CreatedAt,
	}
}

func (p *Publication) ToDetail() Detail {
	d := Detail{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		ContentHTML:   utils.RenderMarkdown(p.Content),
		Status:        p.Status,
		Slug:          p.Slug,
		CoverImageURL: p.CoverImageURL,
		Tags:          p.Tags,
		TagsList:      p.TagsList(),
		ViewsCount:    p.ViewsCount,
		Author: AuthorSummary{
			ID:    p.AuthorID,
			Name:  p.AuthorName,
			Email: p.AuthorEmail,
		},
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if p.OrganizationID != nil {
		d.Organization = &organization.Summary{
			ID:   *p.OrganizationID,
			Name: utils.DerefString(p.OrganizationName),
		}
	}
	return d
}
