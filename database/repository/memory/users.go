package memoryRepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	profileRepo "cityportal/database/repository/profile"
	roleRepo "cityportal/database/repository/role"
	userRepo "cityportal/database/repository/user"
	"cityportal/models"
)

type Users struct{ s *Store }

func NewUserRepo(s *Store) userRepo.UserRepository { return &Users{s: s} }

func (r *Users) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.s.users {
		if existing.Email == u.Email || existing.ID == u.ID {
			return fmt.Errorf("user %s: %w", u.Email, models.ErrAlreadyExists)
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	u.Devices = append([]models.Device(nil), u.Devices...)
	return &u, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			u.Devices = append([]models.Device(nil), u.Devices...)
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
}

func (r *Users) update(id string, fn func(u *models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	fn(&u)
	r.s.users[id] = u
	return nil
}

func (r *Users) UpdateDevices(ctx context.Context, id string, devices []models.Device) error {
	return r.update(id, func(u *models.User) { u.Devices = append([]models.Device(nil), devices...) })
}

func (r *Users) RecordSignIn(ctx context.Context, id string, devices []models.Device, at time.Time) error {
	return r.update(id, func(u *models.User) {
		u.Devices = append([]models.Device(nil), devices...)
		u.LastSignInAt = at
	})
}

func (r *Users) UpdatePassword(ctx context.Context, id, hash string, devices []models.Device) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = hash
		u.Devices = append([]models.Device(nil), devices...)
	})
}

func (r *Users) SetFCMToken(ctx context.Context, id, token string) error {
	return r.update(id, func(u *models.User) { u.FCMToken = token })
}

func (r *Users) PushTokens(ctx context.Context, ids []string) (map[string]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]string)
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok && u.FCMToken != "" {
			out[id] = u.FCMToken
		}
	}
	return out, nil
}

func (r *Users) ListIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *Users) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	delete(r.s.users, id)
	return nil
}

type Profiles struct{ s *Store }

func NewProfileRepo(s *Store) profileRepo.ProfileRepository { return &Profiles{s: s} }

func (r *Profiles) Create(ctx context.Context, p *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; ok {
		return fmt.Errorf("profile %s: %w", p.ID, models.ErrAlreadyExists)
	}
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *Profiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (r *Profiles) GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Profile
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Profiles) Update(ctx context.Context, p *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; !ok {
		return fmt.Errorf("profile %s: %w", p.ID, models.ErrNotFound)
	}
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *Profiles) SetAvatar(ctx context.Context, id string, avatar models.FileRef) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	p.Avatar = avatar
	r.s.profiles[id] = p
	return nil
}

func (r *Profiles) SetUserType(ctx context.Context, id, userType string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	p.UserType = userType
	r.s.profiles[id] = p
	return nil
}

type Roles struct{ s *Store }

func NewRoleRepo(s *Store) roleRepo.RoleRepository { return &Roles{s: s} }

func (r *Roles) Add(ctx context.Context, ur *models.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if existing.UserID == ur.UserID && existing.Role == ur.Role {
			return fmt.Errorf("role %s of %s: %w", ur.Role, ur.UserID, models.ErrAlreadyExists)
		}
	}
	r.s.roles = append(r.s.roles, *ur)
	return nil
}

func (r *Roles) Remove(ctx context.Context, userID string, role models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.roles {
		if existing.UserID == userID && existing.Role == role {
			r.s.roles = append(r.s.roles[:i], r.s.roles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("role %s of %s: %w", role, userID, models.ErrNotFound)
}

func (r *Roles) RemoveKeepingOne(ctx context.Context, userID string, role models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	at, holders := -1, 0
	for i, existing := range r.s.roles {
		if existing.Role != role {
			continue
		}
		holders++
		if existing.UserID == userID {
			at = i
		}
	}
	switch {
	case at < 0:
		return fmt.Errorf("role %s of %s: %w", role, userID, models.ErrNotFound)
	case holders <= 1:
		return fmt.Errorf("role %s of %s: %w", role, userID, roleRepo.ErrLastHolder)
	}
	r.s.roles = append(r.s.roles[:at], r.s.roles[at+1:]...)
	return nil
}

func (r *Roles) ListByUser(ctx context.Context, userID string) ([]models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Role{}
	for _, ur := range r.s.roles {
		if ur.UserID == userID {
			out = append(out, ur.Role)
		}
	}
	return out, nil
}

func (r *Roles) UserIDs(ctx context.Context, roles ...models.Role) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, ur := range r.s.roles {
		if models.HasAny([]models.Role{ur.Role}, roles...) && !seen[ur.UserID] {
			seen[ur.UserID] = true
			out = append(out, ur.UserID)
		}
	}
	return out, nil
}
