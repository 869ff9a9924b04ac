package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
)

type RecipeRepository struct {
	store *Store
}

func (r *RecipeRepository) linkedToAny(kind entity.AttributeKind, recipeID int64, ids []int64) bool {
	set := r.store.data.links[kind][recipeID]
	for _, id := range ids {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// detached returns a copy without relation slices; relations live in the link tables.
func detached(rec entity.Recipe) *entity.Recipe {
	rec.Tags, rec.Ingredients = nil, nil
	return &rec
}

func (r *RecipeRepository) List(ctx context.Context, ownerID int64, f entity.RecipeFilter) ([]*entity.Recipe, error) {
	defer r.store.lock(ctx)()
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]*entity.Recipe, 0)
	for _, rec := range r.store.data.recipes {
		if rec.OwnerID != ownerID {
			continue
		}
		if len(f.TagIDs) > 0 && !r.linkedToAny(entity.KindTag, rec.ID, f.TagIDs) {
			continue
		}
		if len(f.IngredientIDs) > 0 && !r.linkedToAny(entity.KindIngredient, rec.ID, f.IngredientIDs) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(rec.Title), query) {
			continue
		}
		out = append(out, detached(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *RecipeRepository) GetByIDs(ctx context.Context, ownerID int64, ids []int64) ([]*entity.Recipe, error) {
	defer r.store.lock(ctx)()
	out := make([]*entity.Recipe, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.store.data.recipes[id]; ok && rec.OwnerID == ownerID {
			out = append(out, detached(rec))
		}
	}
	return out, nil
}

func (r *RecipeRepository) Get(ctx context.Context, ownerID, id int64) (*entity.Recipe, error) {
	defer r.store.lock(ctx)()
	rec, ok := r.store.data.recipes[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, entity.ErrNotFound
	}
	return detached(rec), nil
}

func (r *RecipeRepository) Create(ctx context.Context, rec *entity.Recipe) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.data.users[rec.OwnerID]; !ok {
		return entity.ErrNotFound
	}
	now := r.store.now()
	rec.ID = r.store.data.next("recipes")
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.store.data.recipes[rec.ID] = *detached(*rec)
	return nil
}

func (r *RecipeRepository) Update(ctx context.Context, rec *entity.Recipe) error {
	defer r.store.lock(ctx)()
	cur, ok := r.store.data.recipes[rec.ID]
	if !ok || cur.OwnerID != rec.OwnerID {
		return entity.ErrNotFound
	}
	rec.CreatedAt = cur.CreatedAt
	rec.UpdatedAt = r.store.now()
	r.store.data.recipes[rec.ID] = *detached(*rec)
	return nil
}

func (r *RecipeRepository) SetImage(ctx context.Context, ownerID, id int64, key string) (string, error) {
	defer r.store.lock(ctx)()
	cur, ok := r.store.data.recipes[id]
	if !ok || cur.OwnerID != ownerID {
		return "", entity.ErrNotFound
	}
	previous := cur.Image
	cur.Image = key
	cur.UpdatedAt = r.store.now()
	r.store.data.recipes[id] = cur
	return previous, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, ownerID, id int64) error {
	defer r.store.lock(ctx)()
	cur, ok := r.store.data.recipes[id]
	if !ok || cur.OwnerID != ownerID {
		return entity.ErrNotFound
	}
	delete(r.store.data.recipes, id)
	for _, byRecipe := range r.store.data.links {
		delete(byRecipe, id)
	}
	return nil
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
