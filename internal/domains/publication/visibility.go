package publication

import (
	"fmt"

	"github.com/google/uuid"

	"publishing-backend/internal/domains/account"
)

// Visibility là predicate "viewer được thấy publication nào".
//
//	anonymous:      status = PUBLISHED
//	authenticated:  status = PUBLISHED OR author = viewer
//	OwnOnly:        author = viewer (mọi status)
type Visibility struct {
	ViewerID *uuid.UUID
	OwnOnly  bool
}

// ForViewer - viewer nil là anonymous
func ForViewer(viewer *account.Identity) Visibility {
	if viewer == nil {
		return Visibility{}
	}
	id := viewer.ID
	return Visibility{ViewerID: &id}
}

// OwnedBy dùng cho "my publications"
func OwnedBy(authorID uuid.UUID) Visibility {
	return Visibility{ViewerID: &authorID, OwnOnly: true}
}

// Admits đánh giá predicate trên một publication đã load
func (v Visibility) Admits(p *Publication) bool {
	if p == nil {
		return false
	}
	isAuthor := v.ViewerID != nil && p.AuthorID == *v.ViewerID
	if v.OwnOnly {
		return isAuthor
	}
	return p.Status == StatusPublished || isAuthor
}

// Clause render predicate thành một điều kiện SQL duy nhất trên alias p.
// next là số thứ tự placeholder tiếp theo.
func (v Visibility) Clause(next int) (string, []interface{}) {
	switch {
	case v.ViewerID == nil:
		return "p.status = 'PUBLISHED'", nil
	case v.OwnOnly:
		return fmt.Sprintf("p.author_id = $%d", next), []interface{}{*v.ViewerID}
	default:
		return fmt.Sprintf("(p.status = 'PUBLISHED' OR p.author_id = $%d)", next), []interface{}{*v.ViewerID}
	}
}

// Dedupe bỏ bản trùng theo ID, giữ thứ tự xuất hiện đầu tiên
func Dedupe(pubs []Publication) []Publication {
	seen := make(map[uuid.UUID]struct{}, len(pubs))
	out := make([]Publication, 0, len(pubs))
	for _, p := range pubs {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
