package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

// ImageStorage is the blob store holding recipe pictures by key.
type ImageStorage interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// RecipeIndex is an optional full-text index of recipes.
type RecipeIndex interface {
	Index(ctx context.Context, r *entity.Recipe) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, ownerID int64, q string, size int) ([]int64, error)
}

// SessionStore records issued tokens so logout can revoke them.
type SessionStore interface {
	Create(ctx context.Context, s entity.Session, ttl time.Duration) error
	Exists(ctx context.Context, userID int64, sessionID string) (bool, error)
	Delete(ctx context.Context, userID int64, sessionID string) error
	Touch(ctx context.Context, s entity.Session) error
}

// MailPublisher queues e-mail jobs for the worker.
type MailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
