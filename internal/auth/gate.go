package auth

import "github.com/tudao164/KiemThuPhanMem/types"

// AllowAdmin permits only administrators.
func AllowAdmin(identity Identity) error {
	if isAdmin(identity.Role) {
		return nil
	}
	return ErrForbidden
}

// AllowSelfOrAdmin permits the owner of a resource and administrators.
func AllowSelfOrAdmin(identity Identity, ownerID int) error {
	if isAdmin(identity.Role) {
		return nil
	}
	if identity.UserID > 0 && identity.UserID == ownerID {
		return nil
	}
	return ErrForbidden
}

// AllowTargetMutation guards block, unblock and delete of a user account.
// Administrators are never valid targets, whoever the actor is.
func AllowTargetMutation(target types.User) error {
	if isAdmin(target.Role) {
		return ErrProtectedTarget
	}
	if !target.Role.Valid() {
		return ErrForbidden
	}
	return nil
}

func isAdmin(role types.Role) bool {
	switch role {
	case types.RoleAdmin:
		return true
	case types.RoleUser:
		return false
	default:
		return false
	}
}
