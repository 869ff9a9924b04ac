package memory

import (
	"context"
	"sort"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
)

// AttributeRepository serves one attribute kind.
type AttributeRepository struct {
	store *Store
	kind  entity.AttributeKind
}

func (r *AttributeRepository) Kind() entity.AttributeKind { return r.kind }

func (r *AttributeRepository) rows() map[int64]entity.Attribute {
	return r.store.data.attrs[r.kind]
}

func (r *AttributeRepository) links() map[int64]map[int64]struct{} {
	return r.store.data.links[r.kind]
}

func (r *AttributeRepository) findByName(ownerID int64, name string) (entity.Attribute, bool) {
	for _, a := range r.rows() {
		if a.OwnerID == ownerID && a.Name == name {
			return a, true
		}
	}
	return entity.Attribute{}, false
}

func (r *AttributeRepository) assigned(id int64) bool {
	for _, set := range r.links() {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

func (r *AttributeRepository) List(ctx context.Context, ownerID int64, f entity.AttributeFilter) ([]*entity.Attribute, error) {
	defer r.store.lock(ctx)()
	out := make([]*entity.Attribute, 0)
	for _, a := range r.rows() {
		if a.OwnerID != ownerID {
			continue
		}
		if f.AssignedOnly && !r.assigned(a.ID) {
			continue
		}
		found := a
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name > out[j].Name
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *AttributeRepository) Get(ctx context.Context, ownerID, id int64) (*entity.Attribute, error) {
	defer r.store.lock(ctx)()
	a, ok := r.rows()[id]
	if !ok || a.OwnerID != ownerID {
		return nil, entity.ErrNotFound
	}
	return &a, nil
}

func (r *AttributeRepository) insert(a *entity.Attribute) {
	a.ID = r.store.data.next(r.kind.Plural())
	a.Kind = r.kind
	r.rows()[a.ID] = *a
}

func (r *AttributeRepository) Create(ctx context.Context, a *entity.Attribute) error {
	defer r.store.lock(ctx)()
	if _, ok := r.findByName(a.OwnerID, a.Name); ok {
		return entity.ErrDuplicateName
	}
	r.insert(a)
	return nil
}

func (r *AttributeRepository) GetOrCreate(ctx context.Context, ownerID int64, name string) (*entity.Attribute, error) {
	defer r.store.lock(ctx)()
	if a, ok := r.findByName(ownerID, name); ok {
		return &a, nil
	}
	a := &entity.Attribute{OwnerID: ownerID, Name: name}
	r.insert(a)
	return a, nil
}

func (r *AttributeRepository) Update(ctx context.Context, a *entity.Attribute) error {
	defer r.store.lock(ctx)()
	cur, ok := r.rows()[a.ID]
	if !ok || cur.OwnerID != a.OwnerID {
		return entity.ErrNotFound
	}
	if other, ok := r.findByName(a.OwnerID, a.Name); ok && other.ID != a.ID {
		return entity.ErrDuplicateName
	}
	a.Kind = r.kind
	r.rows()[a.ID] = *a
	return nil
}

func (r *AttributeRepository) Delete(ctx context.Context, ownerID, id int64) error {
	defer r.store.lock(ctx)()
	cur, ok := r.rows()[id]
	if !ok || cur.OwnerID != ownerID {
		return entity.ErrNotFound
	}
	delete(r.rows(), id)
	for _, set := range r.links() {
		delete(set, id)
	}
	return nil
}

func (r *AttributeRepository) Attach(ctx context.Context, recipeID int64, ids ...int64) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.data.recipes[recipeID]; !ok {
		return entity.ErrNotFound
	}
	set, ok := r.links()[recipeID]
	if !ok {
		set = map[int64]struct{}{}
		r.links()[recipeID] = set
	}
	for _, id := range ids {
		if _, ok := r.rows()[id]; !ok {
			return entity.ErrNotFound
		}
		set[id] = struct{}{}
	}
	return nil
}

func (r *AttributeRepository) Clear(ctx context.Context, recipeID int64) error {
	defer r.store.lock(ctx)()
	delete(r.links(), recipeID)
	return nil
}

func (r *AttributeRepository) ListForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]entity.Attribute, error) {
	defer r.store.lock(ctx)()
	out := make(map[int64][]entity.Attribute, len(recipeIDs))
	for _, rid := range recipeIDs {
		set := r.links()[rid]
		attrs := make([]entity.Attribute, 0, len(set))
		for id := range set {
			attrs = append(attrs, r.rows()[id])
		}
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].ID < attrs[j].ID })
		out[rid] = attrs
	}
	return out, nil
}

var _ repository.AttributeRepository = (*AttributeRepository)(nil)
