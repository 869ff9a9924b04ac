package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
)

// ImageDir is the logical directory recipe pictures are stored under.
const ImageDir = "upload/recipie"

var ErrImageStorageUnavailable = errors.New("image storage is not configured")

// RecipeInput is a create or update payload. Nil fields were absent from
// the request; for Tags and Ingredients absence and an empty list differ.
type RecipeInput struct {
	Title       *string
	Description *string
	TimeMinutes *int
	Price       *entity.Price
	Link        *string
	Tags        *[]string
	Ingredients *[]string
}

type RecipeService struct {
	Recipes     repo.RecipeRepository
	Tags        repo.AttributeRepository
	Ingredients repo.AttributeRepository
	Tx          repo.Transactor
	Reconciler  *Reconciler
	Images      ImageStorage
	Index       RecipeIndex
	Logger      *logrus.Logger
}

// NewRecipeService wires the recipe service. images and index may be nil.
func NewRecipeService(store repo.Store, images ImageStorage, index RecipeIndex, logger *logrus.Logger) *RecipeService {
	return &RecipeService{
		Recipes:     store.Recipes,
		Tags:        store.Tags,
		Ingredients: store.Ingredients,
		Tx:          store.Tx,
		Reconciler:  NewReconciler(store.Tags, store.Ingredients),
		Images:      images,
		Index:       index,
		Logger:      logger,
	}
}

func (s *RecipeService) List(ctx context.Context, ownerID int64, f entity.RecipeFilter) ([]*entity.Recipe, error) {
	recs, err := s.Recipes.List(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, recs...); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *RecipeService) Get(ctx context.Context, ownerID, id int64) (*entity.Recipe, error) {
	rec, err := s.Recipes.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts the recipe, then resolves and attaches its tags and
// ingredients, all in one transaction.
func (s *RecipeService) Create(ctx context.Context, ownerID int64, in RecipeInput) (*entity.Recipe, error) {
	if err := requireScalars(in); err != nil {
		return nil, err
	}
	tags, ingredients, err := cleanRelations(in)
	if err != nil {
		return nil, err
	}
	rec := &entity.Recipe{OwnerID: ownerID}
	applyScalars(rec, in)
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Recipes.Create(ctx, rec); err != nil {
			return err
		}
		return s.Reconciler.Reconcile(ctx, rec, ownerID, tags, ingredients, ModeCreate)
	})
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, rec)
	return rec, nil
}

// Update applies a partial (PATCH) or full (PUT) update. Relations are
// reconciled first, then scalar fields are assigned and saved once.
func (s *RecipeService) Update(ctx context.Context, ownerID, id int64, in RecipeInput, partial bool) (*entity.Recipe, error) {
	if !partial {
		if err := requireScalars(in); err != nil {
			return nil, err
		}
	}
	tags, ingredients, err := cleanRelations(in)
	if err != nil {
		return nil, err
	}

	var rec *entity.Recipe
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.Recipes.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := s.hydrate(ctx, current); err != nil {
			return err
		}

		next := *current
		applyScalars(&next, in)
		if err := next.Validate(); err != nil {
			return err
		}

		if err := s.Reconciler.Reconcile(ctx, current, ownerID, tags, ingredients, ModeUpdate); err != nil {
			return err
		}
		next.Tags, next.Ingredients = current.Tags, current.Ingredients
		if err := s.Recipes.Update(ctx, &next); err != nil {
			return err
		}
		rec = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, rec)
	return rec, nil
}

func (s *RecipeService) Delete(ctx context.Context, ownerID, id int64) error {
	var image string
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := s.Recipes.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		image = rec.Image
		return s.Recipes.Delete(ctx, ownerID, id)
	})
	if err != nil {
		return err
	}
	s.dropImage(ctx, image)
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			s.warn(err, "remove recipe from index failed", id)
		}
	}
	return nil
}

// ImageKey builds a fresh object key keeping the original file extension.
func ImageKey(filename string) string {
	return path.Join(ImageDir, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

// UploadImage stores a new picture for the recipe and drops the previous one.
func (s *RecipeService) UploadImage(ctx context.Context, ownerID, id int64, filename, contentType string, r io.Reader) (*entity.Recipe, error) {
	if s.Images == nil {
		return nil, ErrImageStorageUnavailable
	}
	if _, err := s.Recipes.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}

	key := ImageKey(filename)
	if err := s.Images.Save(ctx, key, contentType, r); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	// Only the image column changes; edits committed while the blob was
	// uploading are kept.
	var (
		rec      *entity.Recipe
		previous string
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if previous, err = s.Recipes.SetImage(ctx, ownerID, id, key); err != nil {
			return err
		}
		if rec, err = s.Recipes.Get(ctx, ownerID, id); err != nil {
			return err
		}
		return s.hydrate(ctx, rec)
	})
	if err != nil {
		s.dropImage(ctx, key)
		return nil, err
	}
	s.dropImage(ctx, previous)
	s.reindex(ctx, rec)
	return rec, nil
}

// ImageURL resolves a stored key to the URL clients fetch it from.
func (s *RecipeService) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	if s.Images == nil {
		return key
	}
	return s.Images.URL(key)
}

// Search matches q against the owner's recipes, through the index when one
// is configured and by title otherwise.
func (s *RecipeService) Search(ctx context.Context, ownerID int64, q string, size int) ([]*entity.Recipe, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, entity.NewValidationError("q", "is required")
	}
	if s.Index == nil {
		return s.List(ctx, ownerID, entity.RecipeFilter{Query: q})
	}

	ids, err := s.Index.Search(ctx, ownerID, q, size)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("owner_id", ownerID).Warn("index search failed, falling back to title match")
		}
		return s.List(ctx, ownerID, entity.RecipeFilter{Query: q})
	}
	recs, err := s.Recipes.GetByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*entity.Recipe, len(recs))
	for _, r := range recs {
		byID[r.ID] = r
	}
	ordered := make([]*entity.Recipe, 0, len(recs))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
			delete(byID, id)
		}
	}
	if err := s.hydrate(ctx, ordered...); err != nil {
		return nil, err
	}
	return ordered, nil
}

// hydrate loads relation sets for the given recipes in two queries.
func (s *RecipeService) hydrate(ctx context.Context, recs ...*entity.Recipe) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	for _, attrs := range []repo.AttributeRepository{s.Tags, s.Ingredients} {
		byRecipe, err := attrs.ListForRecipes(ctx, ids)
		if err != nil {
			return err
		}
		for _, r := range recs {
			set := byRecipe[r.ID]
			if set == nil {
				set = []entity.Attribute{}
			}
			r.SetAttributes(attrs.Kind(), set)
		}
	}
	return nil
}

func (s *RecipeService) reindex(ctx context.Context, rec *entity.Recipe) {
	if s.Index == nil || rec == nil {
		return
	}
	if err := s.Index.Index(ctx, rec); err != nil {
		s.warn(err, "index recipe failed", rec.ID)
	}
}

func (s *RecipeService) dropImage(ctx context.Context, key string) {
	if key == "" || s.Images == nil {
		return
	}
	if err := s.Images.Delete(ctx, key); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("delete image failed")
	}
}

func (s *RecipeService) warn(err error, msg string, recipeID int64) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("recipe_id", recipeID).Warn(msg)
	}
}

func requireScalars(in RecipeInput) error {
	v := &entity.ValidationError{}
	if in.Title == nil {
		v.Add("title", "is required")
	}
	if in.TimeMinutes == nil {
		v.Add("time_minutes", "is required")
	}
	if in.Price == nil {
		v.Add("price", "is required")
	}
	return v.OrNil()
}

func cleanRelations(in RecipeInput) (tags, ingredients *[]string, err error) {
	v := &entity.ValidationError{}
	collect := func(field string, names *[]string) *[]string {
		clean, err := CleanNames(field, names)
		var ve *entity.ValidationError
		if errors.As(err, &ve) {
			for k, msg := range ve.Fields {
				v.Add(k, msg)
			}
		}
		return clean
	}
	tags = collect("tags", in.Tags)
	ingredients = collect("ingredients", in.Ingredients)
	if err := v.OrNil(); err != nil {
		return nil, nil, err
	}
	return tags, ingredients, nil
}

func applyScalars(rec *entity.Recipe, in RecipeInput) {
	if in.Title != nil {
		rec.Title = *in.Title
	}
	if in.Description != nil {
		rec.Description = *in.Description
	}
	if in.TimeMinutes != nil {
		rec.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		rec.Price = *in.Price
	}
	if in.Link != nil {
		rec.Link = strings.TrimSpace(*in.Link)
	}
}
