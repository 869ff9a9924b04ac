package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
)

type ReconcileMode int

const (
	// ModeCreate attaches the resolved set to a fresh recipe; a nil list means none.
	ModeCreate ReconcileMode = iota
	// ModeUpdate replaces the relation set when the list is non-nil and
	// leaves it alone when nil.
	ModeUpdate
)

// Reconciler resolves tag and ingredient names to the owner's rows and
// syncs a recipe's relation sets with them.
type Reconciler struct {
	Tags        repo.AttributeRepository
	Ingredients repo.AttributeRepository
}

func NewReconciler(tags, ingredients repo.AttributeRepository) *Reconciler {
	return &Reconciler{Tags: tags, Ingredients: ingredients}
}

// Reconcile must run inside the caller's transaction. Names are expected to
// be validated already. On return rec.Tags and rec.Ingredients hold the
// persisted sets ordered by id.
func (r *Reconciler) Reconcile(ctx context.Context, rec *entity.Recipe, ownerID int64, tagNames, ingredientNames *[]string, mode ReconcileMode) error {
	if err := r.sync(ctx, r.Tags, rec, ownerID, tagNames, mode); err != nil {
		return err
	}
	return r.sync(ctx, r.Ingredients, rec, ownerID, ingredientNames, mode)
}

func (r *Reconciler) sync(ctx context.Context, attrs repo.AttributeRepository, rec *entity.Recipe, ownerID int64, names *[]string, mode ReconcileMode) error {
	kind := attrs.Kind()
	if names == nil {
		if mode == ModeCreate {
			rec.SetAttributes(kind, []entity.Attribute{})
		}
		return nil
	}

	if mode == ModeUpdate {
		if err := attrs.Clear(ctx, rec.ID); err != nil {
			return fmt.Errorf("clear %s: %w", kind.Plural(), err)
		}
	}

	resolved := make([]entity.Attribute, 0, len(*names))
	seen := make(map[int64]struct{}, len(*names))
	ids := make([]int64, 0, len(*names))
	for _, name := range *names {
		a, err := attrs.GetOrCreate(ctx, ownerID, name)
		if err != nil {
			return fmt.Errorf("resolve %s %q: %w", kind, name, err)
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		ids = append(ids, a.ID)
		resolved = append(resolved, *a)
	}

	if err := attrs.Attach(ctx, rec.ID, ids...); err != nil {
		return fmt.Errorf("attach %s: %w", kind.Plural(), err)
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].ID < resolved[j].ID })
	rec.SetAttributes(kind, resolved)
	return nil
}

// CleanNames trims and checks every name of a nested list. field is the
// payload key, e.g. "tags".
func CleanNames(field string, names *[]string) (*[]string, error) {
	if names == nil {
		return nil, nil
	}
	v := &entity.ValidationError{}
	out := make([]string, 0, len(*names))
	for i, name := range *names {
		clean, err := entity.CleanName(fmt.Sprintf("%s[%d].name", field, i), name)
		if err != nil {
			var ve *entity.ValidationError
			if !errors.As(err, &ve) {
				return nil, err
			}
			for k, msg := range ve.Fields {
				v.Add(k, msg)
			}
			continue
		}
		out = append(out, clean)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return &out, nil
}
