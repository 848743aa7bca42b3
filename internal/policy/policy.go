// Package policy holds the access-control predicates for every operation.
// Each rule is a pure function over the caller's identity and the target's
// owner, so the contract is testable without any transport plumbing.
package policy

import (
	"github.com/google/uuid"

	"taskboard/internal/domain"
)

// Identity is the authenticated caller as seen by the policy layer.
type Identity struct {
	UserID string
	Role   domain.Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == domain.RoleAdmin
}

// CanCreateTask allows admins to create tasks for anyone; everyone else only
// for their own account.
func CanCreateTask(caller Identity, ownerID string) bool {
	return caller.IsAdmin() || caller.UserID == ownerID
}

// CanAccessTask gates read, update and delete on a task.
func CanAccessTask(caller Identity, ownerID string) bool {
	return caller.IsAdmin() || caller.UserID == ownerID
}

// TaskOwnerFilter resolves the owner filter for a task listing. Admins may
// narrow to a well-formed user id (a malformed one is ignored); non-admins
// are always pinned to their own tasks regardless of what they asked for.
func TaskOwnerFilter(caller Identity, requested string) string {
	if !caller.IsAdmin() {
		return caller.UserID
	}
	if requested == "" {
		return ""
	}
	if _, err := uuid.Parse(requested); err != nil {
		return ""
	}
	return requested
}

// CanManageUsers gates user create, list and delete.
func CanManageUsers(caller Identity) bool {
	return caller.IsAdmin()
}

// CanAccessUser gates read and update of a user record: admin or the user
// themselves.
func CanAccessUser(caller Identity, targetID string) bool {
	return caller.IsAdmin() || caller.UserID == targetID
}

// AllowRoleChange reports whether the caller may change a role field.
// Non-admin role submissions are dropped, not rejected.
func AllowRoleChange(caller Identity) bool {
	return caller.IsAdmin()
}
