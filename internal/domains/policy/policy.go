// Package policy chứa các quyết định phân quyền dạng pure function:
// không I/O, không phụ thuộc transport. actor nil nghĩa là anonymous.
package policy

import (
	"publishing-backend/internal/domains/account"
	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/domains/publication"
)

// ========================================
// ORGANIZATION
// ========================================

func CanCreateOrganization(actor *account.Identity) bool {
	return actor.IsProfessional()
}

// CanModifyOrganization - owner và vẫn còn là PROFESSIONAL
func CanModifyOrganization(actor *account.Identity, org *organization.Organization) bool {
	return actor != nil && org.IsOwnedBy(actor.ID) && actor.IsProfessional()
}

// CanDeleteOrganization được gọi trong transaction xóa với dependents đọc dưới row lock.
// Owner đã bị hạ xuống PRIVATE vẫn được xóa organization của mình.
func CanDeleteOrganization(actor *account.Identity, org *organization.Organization, dependents int) error {
	if actor == nil || !org.IsOwnedBy(actor.ID) {
		return organization.ErrNotOwner
	}
	if dependents > 0 {
		return organization.ErrHasPublications
	}
	return nil
}

// ========================================
// PUBLICATION
// ========================================

func CanModifyPublication(actor *account.Identity, pub *publication.Publication) bool {
	return actor != nil && pub != nil && pub.AuthorID == actor.ID
}

// CanReadPublication - PUBLISHED hoặc viewer là author
func CanReadPublication(viewer *account.Identity, pub *publication.Publication) bool {
	if pub == nil {
		return false
	}
	return pub.Status == publication.StatusPublished || CanModifyPublication(viewer, pub)
}

// CanAttachOrganization kiểm tra org.owner == author và author còn PROFESSIONAL.
// Org không tồn tại và org của người khác trả cùng một lỗi.
func CanAttachOrganization(actor *account.Identity, org *organization.Organization) error {
	if actor == nil || !org.IsOwnedBy(actor.ID) {
		return publication.ErrOrganizationNotOwned
	}
	if !actor.IsProfessional() {
		return publication.ErrOrganizationRequiresProfessional
	}
	return nil
}
