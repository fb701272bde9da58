package publication

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/shared/apperr"
	"publishing-backend/internal/shared/utils"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultOrdering = "-created_at"

	// MaxPage giữ Offset() trong khoảng int an toàn
	MaxPage = 10000
)

// orderingColumns - whitelist cho ?ordering=, "-" prefix là DESC
var orderingColumns = map[string]string{
	"created_at":   "p.created_at",
	"published_at": "p.published_at",
	"views_count":  "p.views_count",
	"title":        "p.title",
}

// ========================================
// QUERY DTO (raw query string)
// ========================================

// ListQuery bind từ URL query params, mọi field là string để tự báo lỗi theo field
type ListQuery struct {
	Q                string `form:"q" json:"q"`
	Title            string `form:"title" json:"title"`
	Content          string `form:"content" json:"content"`
	Status           string `form:"status" json:"status"`
	Author           string `form:"author" json:"author"`
	AuthorEmail      string `form:"author_email" json:"author_email"`
	Organization     string `form:"organization" json:"organization"`
	OrganizationName string `form:"organization_name" json:"organization_name"`
	Tags             string `form:"tags" json:"tags"`
	CreatedAfter     string `form:"created_after" json:"created_after"`
	CreatedBefore    string `form:"created_before" json:"created_before"`
	PublishedAfter   string `form:"published_after" json:"published_after"`
	PublishedBefore  string `form:"published_before" json:"published_before"`
	MinViews         string `form:"min_views" json:"min_views"`
	MaxViews         string `form:"max_views" json:"max_views"`
	Ordering         string `form:"ordering" json:"ordering"`
	Page             string `form:"page" json:"page"`
	PageSize         string `form:"page_size" json:"page_size"`
}

func statusRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := ParseStatus(s); !ok {
		return errors.New("status must be one of DRAFT, PUBLISHED, ARCHIVED")
	}
	return nil
}

func timeRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := parseTime(s); err != nil {
		return errors.New("must be an RFC3339 timestamp or YYYY-MM-DD date")
	}
	return nil
}

func orderingRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := orderingColumns[strings.TrimPrefix(s, "-")]; !ok {
		return errors.New("ordering must be one of created_at, published_at, views_count, title (prefix - for descending)")
	}
	return nil
}

// intRule - parse int64 thật sự (is.Int không bắt overflow) và check range [min, max]
func intRule(min, max int64) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.New("must be an integer")
		}
		if n < min || n > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}

func (q ListQuery) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&q,
		validation.Field(&q.Q, validation.Length(0, 200)),
		validation.Field(&q.Status, validation.By(statusRule)),
		validation.Field(&q.Author, is.UUID.Error("must be a valid UUID")),
		validation.Field(&q.Organization, is.UUID.Error("must be a valid UUID")),
		validation.Field(&q.AuthorEmail, is.Email.Error("invalid email format")),
		validation.Field(&q.CreatedAfter, validation.By(timeRule)),
		validation.Field(&q.CreatedBefore, validation.By(timeRule)),
		validation.Field(&q.PublishedAfter, validation.By(timeRule)),
		validation.Field(&q.PublishedBefore, validation.By(timeRule)),
		validation.Field(&q.MinViews, validation.By(intRule(0, math.MaxInt64))),
		validation.Field(&q.MaxViews, validation.By(intRule(0, math.MaxInt64))),
		validation.Field(&q.Ordering, validation.By(orderingRule)),
		validation.Field(&q.Page, validation.By(intRule(1, MaxPage))),
		// page_size lớn hơn MaxPageSize được clamp trong Normalize
		validation.Field(&q.PageSize, validation.By(intRule(1, math.MaxInt32))),
	))
}

// ToFilter validate rồi chuyển sang ListFilter đã chuẩn hóa
func (q ListQuery) ToFilter() (ListFilter, error) {
	if err := q.Validate(); err != nil {
		return ListFilter{}, err
	}

	f := ListFilter{
		Search:           strings.TrimSpace(q.Q),
		Title:            strings.TrimSpace(q.Title),
		Content:          strings.TrimSpace(q.Content),
		AuthorEmail:      q.AuthorEmail,
		OrganizationName: strings.TrimSpace(q.OrganizationName),
		Tags:             utils.ParseTags(q.Tags),
		Ordering:         q.Ordering,
	}

	if s, ok := ParseStatus(q.Status); ok {
		f.Status = &s
	}
	if q.Author != "" {
		id := uuid.MustParse(q.Author)
		f.AuthorID = &id
	}
	if q.Organization != "" {
		id := uuid.MustParse(q.Organization)
		f.OrganizationID = &id
	}

	f.CreatedAfter = mustTime(q.CreatedAfter)
	f.CreatedBefore = mustTime(q.CreatedBefore)
	f.PublishedAfter = mustTime(q.PublishedAfter)
	f.PublishedBefore = mustTime(q.PublishedBefore)
	f.MinViews = mustInt(q.MinViews)
	f.MaxViews = mustInt(q.MaxViews)

	if p := mustInt(q.Page); p != nil {
		f.Page = int(*p)
	}
	if ps := mustInt(q.PageSize); ps != nil {
		f.PageSize = int(*ps)
	}

	if f.MinViews != nil && f.MaxViews != nil && *f.MinViews > *f.MaxViews {
		return ListFilter{}, apperr.FieldInvalid("min_views", "min_views cannot be greater than max_views")
	}

	f.Normalize()
	return f, nil
}

// ========================================
// FILTER
// ========================================

// ListFilter là bộ lọc đã parse, dùng cho list, search, my publications và org publications
type ListFilter struct {
	Search           string // q: title, content hoặc tags
	Title            string
	Content          string
	Status           *Status
	AuthorID         *uuid.UUID
	AuthorEmail      string
	OrganizationID   *uuid.UUID
	OrganizationName string
	// Tags match any-of theo tag nguyên vẹn (array overlap), không phải substring.
	// Substring trên tags đi qua Search.
	Tags             []string
	CreatedAfter     *time.Time
	CreatedBefore    *time.Time
	PublishedAfter   *time.Time
	PublishedBefore  *time.Time
	MinViews         *int64
	MaxViews         *int64
	Ordering         string
	Page             int
	PageSize         int
}

// Normalize áp dụng default cho paging và ordering
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if _, ok := orderingColumns[strings.TrimPrefix(f.Ordering, "-")]; !ok {
		f.Ordering = DefaultOrdering
	}
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// OrderBy trả về ORDER BY clause; id làm tie-breaker để paging ổn định
func (f ListFilter) OrderBy() string {
	field := strings.TrimPrefix(f.Ordering, "-")
	column, ok := orderingColumns[field]
	if !ok {
		column = orderingColumns["created_at"]
	}

	direction := "ASC"
	if strings.HasPrefix(f.Ordering, "-") {
		direction = "DESC"
	}

	nulls := ""
	if field == "published_at" {
		nulls = " NULLS LAST"
	}

	return fmt.Sprintf("%s %s%s, p.id %s", column, direction, nulls, direction)
}

// BuildWhere render visibility + filter thành WHERE clause.
// Các bảng: publications p JOIN users u, LEFT JOIN organizations o.
func BuildWhere(vis Visibility, f ListFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	add := func(format string, value interface{}) {
		conditions = append(conditions, strings.ReplaceAll(format, "$?", fmt.Sprintf("$%d", argIndex)))
		args = append(args, value)
		argIndex++
	}

	// Visibility luôn là điều kiện đầu tiên
	visClause, visArgs := vis.Clause(argIndex)
	conditions = append(conditions, visClause)
	args = append(args, visArgs...)
	argIndex += len(visArgs)

	if f.Search != "" {
		add("(p.title ILIKE $? OR p.content ILIKE $? OR p.tags ILIKE $?)", containsPattern(f.Search))
	}
	if f.Title != "" {
		add("p.title ILIKE $?", containsPattern(f.Title))
	}
	if f.Content != "" {
		add("p.content ILIKE $?", containsPattern(f.Content))
	}
	if f.Status != nil {
		add("p.status = $?", f.Status.String())
	}
	if f.AuthorID != nil {
		add("p.author_id = $?", *f.AuthorID)
	}
	if f.AuthorEmail != "" {
		add("LOWER(u.email) = $?", account.NormalizeEmail(f.AuthorEmail))
	}
	if f.OrganizationID != nil {
		add("p.organization_id = $?", *f.OrganizationID)
	}
	if f.OrganizationName != "" {
		add("o.name ILIKE $?", containsPattern(f.OrganizationName))
	}
	if len(f.Tags) > 0 {
		add("string_to_array(p.tags, ',') && $?::text[]", pq.Array(f.Tags))
	}
	if f.CreatedAfter != nil {
		add("p.created_at >= $?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		add("p.created_at <= $?", *f.CreatedBefore)
	}
	if f.PublishedAfter != nil {
		add("p.published_at >= $?", *f.PublishedAfter)
	}
	if f.PublishedBefore != nil {
		add("p.published_at <= $?", *f.PublishedBefore)
	}
	if f.MinViews != nil {
		add("p.views_count >= $?", *f.MinViews)
	}
	if f.MaxViews != nil {
		add("p.views_count <= $?", *f.MaxViews)
	}

	return utils.JoinWithAnd(conditions), args
}

// ========================================
// HELPERS
// ========================================

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern - ILIKE '%term%' với wildcard của user được escape
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func mustTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil
	}
	return &t
}

func mustInt(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
