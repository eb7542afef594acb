package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/parkinghub/internal/domain/role"
	"github.com/geocoder89/parkinghub/internal/domain/user"
)

// AccountsRepo keeps users and roles in process memory. Inserts enforce the
// same uniqueness and role reference rules as the Postgres schema.
type AccountsRepo struct {
	mu    sync.RWMutex
	users map[string]user.User // by id
	roles map[string]role.Role // by id
}

func NewAccountsRepo() *AccountsRepo {
	return &AccountsRepo{
		users: make(map[string]user.User),
		roles: make(map[string]role.Role),
	}
}

// Users and Roles expose the repo through the two store shapes the service
// expects.
func (r *AccountsRepo) Users() *UsersView { return &UsersView{r} }
func (r *AccountsRepo) Roles() *RolesView { return &RolesView{r} }

type UsersView struct{ r *AccountsRepo }
type RolesView struct{ r *AccountsRepo }

func (v *RolesView) GetByName(_ context.Context, name string) (role.Role, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()

	for _, ro := range v.r.roles {
		if ro.Name == name {
			return ro, nil
		}
	}
	return role.Role{}, role.ErrNotFound
}

func (v *RolesView) Create(_ context.Context, in role.Role) error {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()

	for _, ro := range v.r.roles {
		if ro.Name == in.Name {
			return role.ErrNameTaken
		}
	}

	v.r.roles[in.ID] = in
	return nil
}

func (v *UsersView) GetByUsername(_ context.Context, username string) (user.WithRole, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()

	for _, u := range v.r.users {
		if u.Username == username {
			return v.r.withRole(u), nil
		}
	}
	return user.WithRole{}, user.ErrNotFound
}

func (v *UsersView) GetByID(_ context.Context, id string) (user.WithRole, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()

	u, ok := v.r.users[id]
	if !ok {
		return user.WithRole{}, user.ErrNotFound
	}
	return v.r.withRole(u), nil
}

func (v *UsersView) Create(_ context.Context, u user.User) error {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()

	for _, existing := range v.r.users {
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
	}

	if u.RoleID != nil {
		if _, ok := v.r.roles[*u.RoleID]; !ok {
			return user.ErrUnknownRole
		}
	}

	v.r.users[u.ID] = u
	return nil
}

func (v *UsersView) List(_ context.Context) ([]user.WithRole, error) {
	v.r.mu.RLock()
	out := make([]user.WithRole, 0, len(v.r.users))
	for _, u := range v.r.users {
		out = append(out, v.r.withRole(u))
	}
	v.r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// caller holds the lock
func (r *AccountsRepo) withRole(u user.User) user.WithRole {
	out := user.WithRole{User: u}

	if u.RoleID != nil {
		if ro, ok := r.roles[*u.RoleID]; ok {
			name := ro.Name
			out.RoleName = &name
		}
	}
	return out
}
