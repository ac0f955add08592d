package models

import "time"

// Role is a portal permission level.
type Role string

const (
	RoleResident Role = "resident"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleResident, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// UserRole is one row of user_roles.
type UserRole struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Role      Role      `bson:"role" json:"role"`
	GrantedBy string    `bson:"grantedBy,omitempty" json:"grantedBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// RoleRequest grants or revokes a role.
type RoleRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   Role   `json:"role" binding:"required,oneof=resident employee admin"`
}

// HasAny reports whether roles contains any of want.
func HasAny(roles []Role, want ...Role) bool {
	for _, r := range roles {
		for _, w := range want {
			if r == w {
				return true
			}
		}
	}
	return false
}

// IsStaff reports whether roles grant employee level access.
func IsStaff(roles []Role) bool {
	return HasAny(roles, RoleEmployee, RoleAdmin)
}
