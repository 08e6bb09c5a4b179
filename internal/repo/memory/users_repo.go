package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/widiatmoko/jurnalku/internal/domain/user"
)

// UsersRepo keeps the roster in a mutex-guarded map. It backs the dev server
// (no DATABASE_URL) and the handler tests.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a == b {
			return out[i].ID < out[j].ID
		}
		return a < b
	})
	return out, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByLogin(ctx context.Context, role, identifier string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Role == role && u.LoginID() == identifier {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Role == u.Role && existing.LoginID() != "" && existing.LoginID() == u.LoginID() {
			return user.User{}, user.ErrLoginTaken
		}
	}

	r.items[u.ID] = u
	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[u.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}

	for id, existing := range r.items {
		if id != u.ID && existing.Role == u.Role && existing.LoginID() != "" && existing.LoginID() == u.LoginID() {
			return user.User{}, user.ErrLoginTaken
		}
	}

	r.items[u.ID] = u
	return u, nil
}

// Delete is idempotent: removing an id that is already gone is not an error.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
	return nil
}

func (r *UsersRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	r.items = make(map[string]user.User)
	r.mu.Unlock()
	return nil
}
