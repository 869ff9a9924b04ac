// Package memory is an in-process storage driver. It keeps every table in
// maps guarded by one mutex and implements transactions by snapshotting the
// whole dataset, which is enough for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
)

type dataset struct {
	seq     map[string]int64
	users   map[int64]entity.User
	recipes map[int64]entity.Recipe
	attrs   map[entity.AttributeKind]map[int64]entity.Attribute
	// links[kind][recipeID] is the set of attribute ids linked to the recipe.
	links map[entity.AttributeKind]map[int64]map[int64]struct{}
}

func newDataset() *dataset {
	d := &dataset{
		seq:     map[string]int64{},
		users:   map[int64]entity.User{},
		recipes: map[int64]entity.Recipe{},
		attrs:   map[entity.AttributeKind]map[int64]entity.Attribute{},
		links:   map[entity.AttributeKind]map[int64]map[int64]struct{}{},
	}
	for _, k := range []entity.AttributeKind{entity.KindTag, entity.KindIngredient} {
		d.attrs[k] = map[int64]entity.Attribute{}
		d.links[k] = map[int64]map[int64]struct{}{}
	}
	return d
}

func (d *dataset) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.seq {
		c.seq[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.recipes {
		c.recipes[k] = v
	}
	for kind, rows := range d.attrs {
		for k, v := range rows {
			c.attrs[kind][k] = v
		}
	}
	for kind, byRecipe := range d.links {
		for rid, set := range byRecipe {
			cp := make(map[int64]struct{}, len(set))
			for id := range set {
				cp[id] = struct{}{}
			}
			c.links[kind][rid] = cp
		}
	}
	return c
}

// Store owns the dataset shared by the repositories it hands out.
type Store struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newDataset(), now: time.Now}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store mutex unless ctx already runs inside a transaction of
// this store, which holds it for its whole duration.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx serialises transactions and restores the snapshot taken at the
// start when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Repositories returns the repository bundle backed by this store.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Users:       &UserRepository{store: s},
		Recipes:     &RecipeRepository{store: s},
		Tags:        &AttributeRepository{store: s, kind: entity.KindTag},
		Ingredients: &AttributeRepository{store: s, kind: entity.KindIngredient},
		Tx:          s,
		Health:      s,
	}
}

var (
	_ repository.Transactor = (*Store)(nil)
	_ repository.Pinger     = (*Store)(nil)
)
