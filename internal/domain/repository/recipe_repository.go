package repository

import (
	"context"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

// RecipeRepository stores recipe rows. Every method is scoped to an owner;
// rows of other owners behave as if they did not exist.
// Relation sets are managed through AttributeRepository.
type RecipeRepository interface {
	List(ctx context.Context, ownerID int64, f entity.RecipeFilter) ([]*entity.Recipe, error)
	GetByIDs(ctx context.Context, ownerID int64, ids []int64) ([]*entity.Recipe, error)
	Get(ctx context.Context, ownerID, id int64) (*entity.Recipe, error)
	Create(ctx context.Context, r *entity.Recipe) error
	Update(ctx context.Context, r *entity.Recipe) error
	// SetImage changes only the image column and returns the key it replaced.
	SetImage(ctx context.Context, ownerID, id int64, key string) (previous string, err error)
	Delete(ctx context.Context, ownerID, id int64) error
}
