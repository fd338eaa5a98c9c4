package document

import (
	"context"
	"errors"

	"docvault/internal/domain"

	"gorm.io/gorm"
)

// AccessPolicy decides whether a user may read a document. It is an
// interface so enforcement can be swapped or stubbed in tests.
type AccessPolicy interface {
	CanRead(ctx context.Context, documentID, userID int64) (bool, error)
}

// DepartmentPermissionPolicy allows a read iff a permission row exists for
// (document, user's department). Admins bypass; users without a department
// are denied.
type DepartmentPermissionPolicy struct {
	users       UserReader
	permissions PermissionChecker
}

func NewDepartmentPermissionPolicy(users UserReader, permissions PermissionChecker) *DepartmentPermissionPolicy {
	return &DepartmentPermissionPolicy{users: users, permissions: permissions}
}

func (p *DepartmentPermissionPolicy) CanRead(ctx context.Context, documentID, userID int64) (bool, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if user.Role == domain.RoleAdmin {
		return true, nil
	}
	if user.DepartmentID == nil {
		return false, nil
	}

	return p.permissions.Exists(ctx, documentID, *user.DepartmentID)
}
