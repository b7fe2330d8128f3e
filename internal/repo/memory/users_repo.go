package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/chancity/tournamenthub/internal/domain/user"
)

type UsersRepo struct {
	mu      sync.RWMutex
	byEmail map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{byEmail: make(map[string]user.User)}
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) Create(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := r.byEmail[key]; ok {
		return user.ErrEmailTaken
	}
	r.byEmail[key] = u

	return nil
}
