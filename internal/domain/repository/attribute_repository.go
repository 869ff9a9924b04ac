package repository

import (
	"context"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

// AttributeRepository stores one attribute kind (tags or ingredients) and
// its link table to recipes.
type AttributeRepository interface {
	Kind() entity.AttributeKind

	List(ctx context.Context, ownerID int64, f entity.AttributeFilter) ([]*entity.Attribute, error)
	Get(ctx context.Context, ownerID, id int64) (*entity.Attribute, error)
	// Create fails with entity.ErrDuplicateName when the owner already has the name.
	Create(ctx context.Context, a *entity.Attribute) error
	// GetOrCreate returns the owner's attribute with exactly this name,
	// inserting it when absent. Safe under concurrent callers.
	GetOrCreate(ctx context.Context, ownerID int64, name string) (*entity.Attribute, error)
	Update(ctx context.Context, a *entity.Attribute) error
	Delete(ctx context.Context, ownerID, id int64) error

	// Attach links attributes to a recipe; existing links are kept.
	Attach(ctx context.Context, recipeID int64, ids ...int64) error
	// Clear removes every link of the recipe for this kind.
	Clear(ctx context.Context, recipeID int64) error
	// ListForRecipes returns linked attributes per recipe id, ordered by id.
	ListForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]entity.Attribute, error)
}
