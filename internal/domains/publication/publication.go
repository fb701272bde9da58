package publication

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"publishing-backend/internal/shared/utils"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus không phân biệt hoa thường
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.IsValid()
}

// Publication - author và slug bất biến, published_at chỉ set một lần
type Publication struct {
	ID             uuid.UUID
	AuthorID       uuid.UUID
	OrganizationID *uuid.UUID
	Title          string
	Content        string
	Status         Status
	Slug           string
	CoverImageURL  *string
	Tags           string // dạng chuẩn hóa "a,b,c"
	ViewsCount     int64
	PublishedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Join fields, chỉ đọc
	AuthorName       string
	AuthorEmail      string
	OrganizationName *string
}

// New tạo publication DRAFT hoặc PUBLISHED với slug sinh một lần từ title
func New(authorID uuid.UUID, title, content string, status Status, now time.Time) *Publication {
	p := &Publication{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		Status:    StatusDraft,
		Slug:      utils.GenerateUniqueSlug(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == StatusPublished {
		p.Status = StatusPublished
		p.PublishedAt = &now
	}
	return p
}

func (p *Publication) IsPublished() bool {
	return p.Status == StatusPublished
}

func (p *Publication) TagsList() []string {
	return utils.ParseTags(p.Tags)
}

// Publish: DRAFT -> PUBLISHED. published_at giữ nguyên nếu đã có.
func (p *Publication) Publish(now time.Time) error {
	switch p.Status {
	case StatusPublished:
		return ErrAlreadyPublished
	case StatusArchived:
		return ErrPublishArchived
	}

	p.Status = StatusPublished
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	p.UpdatedAt = now
	return nil
}

// Archive: mọi status -> ARCHIVED. Trả về false nếu đã ARCHIVED (idempotent).
func (p *Publication) Archive(now time.Time) bool {
	if p.Status == StatusArchived {
		return false
	}
	p.Status = StatusArchived
	p.UpdatedAt = now
	return true
}
