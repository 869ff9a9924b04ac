package memory

import (
	"context"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) emailTaken(email string, exceptID int64) bool {
	for _, u := range r.store.data.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	defer r.store.lock(ctx)()
	if r.emailTaken(u.Email, 0) {
		return entity.ErrEmailTaken
	}
	now := r.store.now()
	u.ID = r.store.data.next("users")
	u.CreatedAt, u.UpdatedAt = now, now
	r.store.data.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	defer r.store.lock(ctx)()
	u, ok := r.store.data.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	defer r.store.lock(ctx)()
	for _, u := range r.store.data.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.data.users[u.ID]; !ok {
		return entity.ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return entity.ErrEmailTaken
	}
	u.UpdatedAt = r.store.now()
	r.store.data.users[u.ID] = *u
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
