package roleRepo

import (
	"context"
	"errors"

	"cityportal/models"
)

// ErrLastHolder is returned when removing a role would leave nobody holding it.
var ErrLastHolder = errors.New("last holder of role")

// RoleRepository stores user_roles rows.
type RoleRepository interface {
	// Add inserts a role row; an existing (user, role) pair yields models.ErrAlreadyExists.
	Add(ctx context.Context, r *models.UserRole) error
	Remove(ctx context.Context, userID string, role models.Role) error
	// RemoveKeepingOne removes the role unless no other user would hold it, in which case
	// it returns ErrLastHolder and the role stays.
	RemoveKeepingOne(ctx context.Context, userID string, role models.Role) error
	ListByUser(ctx context.Context, userID string) ([]models.Role, error)
	// UserIDs returns distinct users holding any of roles.
	UserIDs(ctx context.Context, roles ...models.Role) ([]string, error)
}
