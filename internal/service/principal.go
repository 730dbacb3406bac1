package service

import "github.com/noah-isme/scholartrack-api/internal/models"

// Principal is the authenticated caller resolved once per request.
type Principal struct {
	UserID uint
	Role   models.Role
}

// IsAdministrative reports whether the caller holds an Admin or StudentAdmin role.
func (p Principal) IsAdministrative() bool {
	return p.Role.IsAdministrative()
}

// CanActFor reports whether the caller may act on resources owned by userID.
func (p Principal) CanActFor(userID uint) bool {
	return p.UserID == userID || p.IsAdministrative()
}
