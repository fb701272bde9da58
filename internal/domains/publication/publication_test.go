package publication

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publishing-backend/internal/domains/account"
)

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" published ")
	assert.True(t, ok)
	assert.Equal(t, StatusPublished, s)

	_, ok = ParseStatus("LIVE")
	assert.False(t, ok)
}

func TestStateMachine(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	t.Run("publish sets published_at once", func(t *testing.T) {
		p := New(uuid.New(), "Hello", "body", StatusDraft, t0)
		require.Nil(t, p.PublishedAt)

		require.NoError(t, p.Publish(t0))
		assert.Equal(t, t0, *p.PublishedAt)

		assert.ErrorIs(t, p.Publish(t1), ErrAlreadyPublished)
		assert.Equal(t, t0, *p.PublishedAt)
	})

	t.Run("archive keeps published_at and is terminal", func(t *testing.T) {
		p := New(uuid.New(), "Hello", "body", StatusPublished, t0)

		assert.True(t, p.Archive(t1))
		assert.False(t, p.Archive(t1))
		assert.Equal(t, t0, *p.PublishedAt)
		assert.ErrorIs(t, p.Publish(t1), ErrPublishArchived)
	})

	t.Run("draft can be archived directly", func(t *testing.T) {
		p := New(uuid.New(), "Hello", "body", StatusDraft, t0)
		assert.True(t, p.Archive(t1))
		assert.Nil(t, p.PublishedAt)
	})
}

func TestVisibility(t *testing.T) {
	author := &account.Identity{ID: uuid.New()}
	stranger := &account.Identity{ID: uuid.New()}
	now := time.Now()

	draft := New(author.ID, "d", "c", StatusDraft, now)
	published := New(author.ID, "p", "c", StatusPublished, now)
	archived := New(author.ID, "a", "c", StatusDraft, now)
	archived.Archive(now)

	tests := []struct {
		name string
		vis  Visibility
		pub  *Publication
		want bool
	}{
		{"anonymous sees published", ForViewer(nil), published, true},
		{"anonymous misses draft", ForViewer(nil), draft, false},
		{"stranger misses archived", ForViewer(stranger), archived, false},
		{"author sees draft", ForViewer(author), draft, true},
		{"author sees archived", ForViewer(author), archived, true},
		{"own only excludes others", OwnedBy(stranger.ID), published, false},
		{"own only includes every status", OwnedBy(author.ID), archived, true},
		{"nil publication", ForViewer(author), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.vis.Admits(tt.pub))
		})
	}
}

func TestVisibilityClause(t *testing.T) {
	viewer := uuid.New()

	clause, args := ForViewer(nil).Clause(1)
	assert.Equal(t, "p.status = 'PUBLISHED'", clause)
	assert.Empty(t, args)

	clause, args = Visibility{ViewerID: &viewer}.Clause(3)
	assert.Equal(t, "(p.status = 'PUBLISHED' OR p.author_id = $3)", clause)
	assert.Equal(t, []interface{}{viewer}, args)

	clause, _ = OwnedBy(viewer).Clause(1)
	assert.Equal(t, "p.author_id = $1", clause)
}

func TestDedupe(t *testing.T) {
	a := Publication{ID: uuid.New(), Title: "a"}
	b := Publication{ID: uuid.New(), Title: "b"}

	out := Dedupe([]Publication{a, b, a})
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "b", out[1].Title)
}

func TestUpdateRequestCheckStatus(t *testing.T) {
	same := "draft"
	other := "ARCHIVED"

	assert.NoError(t, UpdatePublicationRequest{}.CheckStatus(StatusDraft))
	assert.NoError(t, UpdatePublicationRequest{Status: &same}.CheckStatus(StatusDraft))
	assert.ErrorIs(t, UpdatePublicationRequest{Status: &other}.CheckStatus(StatusDraft), ErrStatusChange)
}

func TestToDetail(t *testing.T) {
	orgID := uuid.New()
	orgName := "Acme Press"
	p := New(uuid.New(), "Hello", "**bold** <script>x</script>", StatusDraft, time.Now())
	p.Tags = "go,web"
	p.OrganizationID = &orgID
	p.OrganizationName = &orgName

	d := p.ToDetail()
	assert.Contains(t, d.ContentHTML, "<strong>bold</strong>")
	assert.NotContains(t, d.ContentHTML, "<script>")
	assert.Equal(t, []string{"go", "web"}, d.TagsList)
	require.NotNil(t, d.Organization)
	assert.Equal(t, orgName, d.Organization.Name)
}
