package publication

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publishing-backend/internal/shared/apperr"
)

func TestListQueryToFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := ListQuery{}.ToFilter()
		require.NoError(t, err)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, DefaultPageSize, f.PageSize)
		assert.Equal(t, DefaultOrdering, f.Ordering)
		assert.Empty(t, f.Tags)
	})

	t.Run("parses every field", func(t *testing.T) {
		author := uuid.New()
		f, err := ListQuery{
			Q:              "  golang ",
			Status:         "published",
			Author:         author.String(),
			Tags:           "go, web,,",
			CreatedAfter:   "2026-01-02",
			PublishedAfter: "2026-01-02T10:00:00Z",
			MinViews:       "3",
			Ordering:       "-views_count",
			Page:           "2",
			PageSize:       "500",
		}.ToFilter()
		require.NoError(t, err)

		assert.Equal(t, "golang", f.Search)
		require.NotNil(t, f.Status)
		assert.Equal(t, StatusPublished, *f.Status)
		assert.Equal(t, author, *f.AuthorID)
		assert.Equal(t, []string{"go", "web"}, f.Tags)
		assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), *f.CreatedAfter)
		assert.Equal(t, int64(3), *f.MinViews)
		assert.Equal(t, MaxPageSize, f.PageSize)
		assert.Equal(t, 100, f.Offset())
	})

	t.Run("field errors", func(t *testing.T) {
		_, err := ListQuery{
			Status:       "LIVE",
			Author:       "nope",
			CreatedAfter: "yesterday",
			Ordering:     "author",
			MinViews:     "many",
		}.ToFilter()

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		for _, field := range []string{"status", "author", "created_after", "ordering", "min_views"} {
			assert.Contains(t, appErr.Details, field)
		}
	})

	t.Run("rejects out of range numbers", func(t *testing.T) {
		cases := map[string]ListQuery{
			"page":      {Page: "9223372036854775807"},
			"page_size": {PageSize: "0"},
			"min_views": {MinViews: "99999999999999999999"},
			"max_views": {MaxViews: "-1"},
		}
		for field, q := range cases {
			_, err := q.ToFilter()

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr, field)
			assert.Contains(t, appErr.Details, field)
		}
	})

	t.Run("last allowed page keeps a positive offset", func(t *testing.T) {
		f, err := ListQuery{Page: "10000", PageSize: "100"}.ToFilter()
		require.NoError(t, err)
		assert.Equal(t, MaxPage, f.Page)
		assert.Equal(t, (MaxPage-1)*MaxPageSize, f.Offset())
	})

	t.Run("min greater than max", func(t *testing.T) {
		_, err := ListQuery{MinViews: "10", MaxViews: "1"}.ToFilter()
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "p.created_at DESC, p.id DESC", ListFilter{Ordering: "-created_at"}.OrderBy())
	assert.Equal(t, "p.title ASC, p.id ASC", ListFilter{Ordering: "title"}.OrderBy())
	assert.Equal(t, "p.published_at DESC NULLS LAST, p.id DESC", ListFilter{Ordering: "-published_at"}.OrderBy())
}

func TestBuildWhere(t *testing.T) {
	t.Run("anonymous without filters", func(t *testing.T) {
		where, args := BuildWhere(Visibility{}, ListFilter{})
		assert.Equal(t, "p.status = 'PUBLISHED'", where)
		assert.Empty(t, args)
	})

	t.Run("placeholders follow the visibility argument", func(t *testing.T) {
		viewer := uuid.New()
		org := uuid.New()
		status := StatusDraft

		where, args := BuildWhere(Visibility{ViewerID: &viewer}, ListFilter{
			Search:         "50%_off",
			Status:         &status,
			OrganizationID: &org,
			Tags:           []string{"go"},
		})

		assert.Equal(t,
			"(p.status = 'PUBLISHED' OR p.author_id = $1) AND "+
				"(p.title ILIKE $2 OR p.content ILIKE $2 OR p.tags ILIKE $2) AND "+
				"p.status = $3 AND p.organization_id = $4 AND "+
				"string_to_array(p.tags, ',') && $5::text[]",
			where)
		require.Len(t, args, 5)
		assert.Equal(t, viewer, args[0])
		assert.Equal(t, `%50\%\_off%`, args[1])
		assert.Equal(t, "DRAFT", args[2])
		assert.Equal(t, pq.Array([]string{"go"}), args[4])
	})

	t.Run("own only has no status predicate", func(t *testing.T) {
		author := uuid.New()
		where, args := BuildWhere(OwnedBy(author), ListFilter{AuthorEmail: " Ada@Example.com "})
		assert.Equal(t, "p.author_id = $1 AND LOWER(u.email) = $2", where)
		assert.Equal(t, []interface{}{author, "ada@example.com"}, args)
	})
}
