package store

import (
	"context"
	"sync"
	"time"

	"github.com/minitodo/apiserver/types"
)

// UserRepository keeps registered users in memory for the process lifetime.
// Lookups scan in insertion order, so the first user registered with an
// email wins when duplicates exist.
type UserRepository struct {
	mu    sync.RWMutex
	users []types.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{now: time.Now}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	return r.insert(ctx, user, false)
}

// CreateUnique inserts user unless the email is already registered, in which
// case ErrDuplicate is returned. The check and the insert happen under the
// same lock.
func (r *UserRepository) CreateUnique(ctx context.Context, user types.User) (types.User, error) {
	return r.insert(ctx, user, true)
}

func (r *UserRepository) insert(ctx context.Context, user types.User, unique bool) (types.User, error) {
	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	if user.Status == "" {
		user.Status = types.UserInactive
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if unique {
		for _, existing := range r.users {
			if existing.Email == user.Email {
				return types.User{}, ErrDuplicate
			}
		}
	}
	r.users = append(r.users, user)
	return user, nil
}

// Activate marks the first user with the given email as active and returns
// the updated record. Activating an already active user is not an error.
func (r *UserRepository) Activate(ctx context.Context, email string) (types.User, error) {
	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Email == email {
			r.users[i].Status = types.UserActive
			return r.users[i], nil
		}
	}
	return types.User{}, ErrNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]types.User, len(r.users))
	copy(users, r.users)
	return users, nil
}
