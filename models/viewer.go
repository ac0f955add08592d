package models

// Viewer identifies the caller of an operation and the roles it holds.
type Viewer struct {
	UserID string
	Roles  []Role
}

// IsStaff reports whether the viewer has employee level access.
func (v Viewer) IsStaff() bool { return IsStaff(v.Roles) }

func (v Viewer) IsAdmin() bool { return HasAny(v.Roles, RoleAdmin) }
