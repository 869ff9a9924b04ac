package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
	"github.com/oksasatya/recipe-api/pkg/helpers"
)

func newRecipeService(store repo.Store) (*RecipeService, *fakeImages) {
	images := newFakeImages()
	return NewRecipeService(store, images, nil, helpers.NopLogger()), images
}

func curryInput(tags ...string) RecipeInput {
	in := RecipeInput{
		Title:       ptr("Indian Prawn curry"),
		TimeMinutes: ptr(30),
		Price:       ptr(entity.MustPrice("50.00")),
	}
	if tags != nil {
		in.Tags = &tags
	}
	return in
}

func TestCreate_WithNewTags(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")

	rec, err := svc.Create(ctx, me.ID, curryInput("Indian", "prawn", "curry"))
	require.NoError(t, err)

	require.Len(t, rec.Tags, 3)
	for _, tag := range rec.Tags {
		assert.Equal(t, me.ID, tag.OwnerID)
	}
	assert.Empty(t, rec.Ingredients)
	assert.NotNil(t, rec.Ingredients)

	got, err := svc.Get(ctx, me.ID, rec.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Indian", "prawn", "curry"}, names(got.Tags))
}

func TestCreate_ReusesOwnersTagOnly(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")
	other := mustUser(t, store, "other@example.com")

	existing, err := store.Tags.GetOrCreate(ctx, me.ID, "Breakfast")
	require.NoError(t, err)

	mine, err := svc.Create(ctx, me.ID, curryInput("Breakfast", "Breakfast", " Breakfast "))
	require.NoError(t, err)
	require.Len(t, mine.Tags, 1)
	assert.Equal(t, existing.ID, mine.Tags[0].ID)

	theirs, err := svc.Create(ctx, other.ID, curryInput("Breakfast"))
	require.NoError(t, err)
	require.Len(t, theirs.Tags, 1)
	assert.NotEqual(t, existing.ID, theirs.Tags[0].ID)

	tags, err := store.Tags.List(ctx, me.ID, entity.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")

	_, err := svc.Create(ctx, me.ID, RecipeInput{Title: ptr("x")})
	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "is required", ve.Fields["time_minutes"])
	assert.Equal(t, "is required", ve.Fields["price"])

	in := curryInput("ok", "  ")
	_, err = svc.Create(ctx, me.ID, in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "may not be blank", ve.Fields["tags[1].name"])

	in = curryInput()
	in.TimeMinutes = ptr(0)
	_, err = svc.Create(ctx, me.ID, in)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "time_minutes")

	list, err := store.Recipes.List(ctx, me.ID, entity.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdate_RelationPresenceSemantics(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")

	in := curryInput("Breakfast")
	in.Ingredients = &[]string{"Salt"}
	rec, err := svc.Create(ctx, me.ID, in)
	require.NoError(t, err)

	// omitted: untouched
	got, err := svc.Update(ctx, me.ID, rec.ID, RecipeInput{Title: ptr("Renamed")}, true)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, []string{"Breakfast"}, names(got.Tags))
	assert.Equal(t, []string{"Salt"}, names(got.Ingredients))

	// new name: created and replaces
	got, err = svc.Update(ctx, me.ID, rec.ID, RecipeInput{Tags: &[]string{"Lunch"}}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch"}, names(got.Tags))
	assert.Equal(t, "Renamed", got.Title)
	lunch, err := store.Tags.List(ctx, me.ID, entity.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, lunch, 2, "Breakfast row survives, only the link is gone")

	// empty list: cleared
	got, err = svc.Update(ctx, me.ID, rec.ID, RecipeInput{Tags: &[]string{}, Ingredients: &[]string{}}, true)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	assert.Empty(t, got.Ingredients)

	reloaded, err := svc.Get(ctx, me.ID, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Tags)
	assert.Empty(t, reloaded.Ingredients)
}

func TestUpdate_FullReplaceRequiresScalars(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")

	in := curryInput("Dinner")
	in.Link = ptr("https://example.com/curry")
	rec, err := svc.Create(ctx, me.ID, in)
	require.NoError(t, err)

	_, err = svc.Update(ctx, me.ID, rec.ID, RecipeInput{Title: ptr("Only title")}, false)
	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)

	got, err := svc.Update(ctx, me.ID, rec.ID, RecipeInput{
		Title: ptr("Soup"), TimeMinutes: ptr(10), Price: ptr(entity.MustPrice("5.25")),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Title)
	assert.Equal(t, "5.25", got.Price.String())
	assert.Equal(t, "https://example.com/curry", got.Link)
	assert.Equal(t, []string{"Dinner"}, names(got.Tags))
}

func TestUpdate_OtherOwnerIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	a := mustUser(t, store, "a@example.com")
	b := mustUser(t, store, "b@example.com")

	rec, err := svc.Create(ctx, b.ID, curryInput("Spicy"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, a.ID, rec.ID, RecipeInput{Title: ptr("hijacked"), Tags: &[]string{}}, true)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, a.ID, rec.ID), entity.ErrNotFound)

	got, err := svc.Get(ctx, b.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Indian Prawn curry", got.Title)
	assert.Equal(t, []string{"Spicy"}, names(got.Tags))
}

func TestUpdate_AtomicOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")

	in := curryInput("Breakfast")
	in.Ingredients = &[]string{"Salt"}
	rec, err := svc.Create(ctx, me.ID, in)
	require.NoError(t, err)

	broken := store
	broken.Ingredients = failingAttach{store.Ingredients}
	brokenSvc, _ := newRecipeService(broken)

	_, err = brokenSvc.Update(ctx, me.ID, rec.ID, RecipeInput{
		Title:       ptr("changed"),
		Tags:        &[]string{"Lunch"},
		Ingredients: &[]string{"Pepper"},
	}, true)
	require.ErrorIs(t, err, errAttach)

	got, err := svc.Get(ctx, me.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Indian Prawn curry", got.Title)
	assert.Equal(t, []string{"Breakfast"}, names(got.Tags))
	assert.Equal(t, []string{"Salt"}, names(got.Ingredients))

	tags, err := store.Tags.List(ctx, me.ID, entity.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, tags, 1, "Lunch was rolled back")
}

func TestCreate_AtomicOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	me := mustUser(t, store, "me@example.com")

	broken := store
	broken.Ingredients = failingAttach{store.Ingredients}
	svc, _ := newRecipeService(broken)

	in := curryInput("Dinner", "Spicy")
	in.Ingredients = &[]string{"Prawns"}
	_, err := svc.Create(ctx, me.ID, in)
	require.ErrorIs(t, err, errAttach)

	recs, err := store.Recipes.List(ctx, me.ID, entity.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, recs)

	tags, err := store.Tags.List(ctx, me.ID, entity.AttributeFilter{})
	require.NoError(t, err)
	assert.Empty(t, tags)

	ingredients, err := store.Ingredients.List(ctx, me.ID, entity.AttributeFilter{})
	require.NoError(t, err)
	assert.Empty(t, ingredients)
}

func TestList_FiltersAndHydrates(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")
	other := mustUser(t, store, "other@example.com")

	_, err := svc.Create(ctx, other.ID, curryInput("Vegan"))
	require.NoError(t, err)
	vegan, err := svc.Create(ctx, me.ID, curryInput("Vegan"))
	require.NoError(t, err)
	plain, err := svc.Create(ctx, me.ID, curryInput())
	require.NoError(t, err)

	all, err := svc.List(ctx, me.ID, entity.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, plain.ID, all[0].ID)
	assert.Equal(t, []string{"Vegan"}, names(all[1].Tags))

	filtered, err := svc.List(ctx, me.ID, entity.RecipeFilter{TagIDs: []int64{vegan.Tags[0].ID}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, vegan.ID, filtered[0].ID)
}

func TestUploadImage_ReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, images := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")
	rec, err := svc.Create(ctx, me.ID, curryInput())
	require.NoError(t, err)

	first, err := svc.UploadImage(ctx, me.ID, rec.ID, "photo.JPG", "image/jpeg", strings.NewReader("one"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Image, ImageDir+"/"))
	assert.True(t, strings.HasSuffix(first.Image, ".jpg"))
	firstKey := first.Image

	second, err := svc.UploadImage(ctx, me.ID, rec.ID, "photo.png", "image/png", strings.NewReader("two"))
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, second.Image)
	assert.Equal(t, []string{firstKey}, images.deleted)
	assert.Equal(t, "two", images.objects[second.Image])
	assert.Equal(t, "http://media.test/"+second.Image, svc.ImageURL(second.Image))

	_, err = svc.UploadImage(ctx, me.ID+100, rec.ID, "x.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestUploadImage_KeepsEditsMadeDuringUpload(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, images := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")
	rec, err := svc.Create(ctx, me.ID, curryInput("Spicy"))
	require.NoError(t, err)

	images.onSave = func() {
		_, err := svc.Update(ctx, me.ID, rec.ID, RecipeInput{Title: ptr("Renamed"), Tags: &[]string{"Mild"}}, true)
		require.NoError(t, err)
	}
	up, err := svc.UploadImage(ctx, me.ID, rec.ID, "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", up.Title)
	assert.Equal(t, []string{"Mild"}, names(up.Tags))

	got, err := svc.Get(ctx, me.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, up.Image, got.Image)
	assert.Equal(t, []string{"Mild"}, names(got.Tags))
}

func TestUploadImage_RecipeDeletedDuringUpload(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, images := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")
	rec, err := svc.Create(ctx, me.ID, curryInput())
	require.NoError(t, err)

	images.onSave = func() { require.NoError(t, svc.Delete(ctx, me.ID, rec.ID)) }
	_, err = svc.UploadImage(ctx, me.ID, rec.ID, "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Empty(t, images.objects, "orphaned blob is removed")
}

func TestUploadImage_StorageFailure(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, images := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")
	rec, err := svc.Create(ctx, me.ID, curryInput())
	require.NoError(t, err)

	images.saveErr = errors.New("bucket gone")
	_, err = svc.UploadImage(ctx, me.ID, rec.ID, "a.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)

	svc.Images = nil
	_, err = svc.UploadImage(ctx, me.ID, rec.ID, "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrImageStorageUnavailable)
}

func TestDelete_DropsImageAndIndex(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, images := newRecipeService(store)
	var removed []int64
	svc.Index = &fakeIndex{DeleteFunc: func(_ context.Context, id int64) error {
		removed = append(removed, id)
		return nil
	}}
	me := mustUser(t, store, "me@example.com")
	rec, err := svc.Create(ctx, me.ID, curryInput("Tag"))
	require.NoError(t, err)
	rec, err = svc.UploadImage(ctx, me.ID, rec.ID, "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, me.ID, rec.ID))
	assert.Contains(t, images.deleted, rec.Image)
	assert.Equal(t, []int64{rec.ID}, removed)

	_, err = svc.Get(ctx, me.ID, rec.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newRecipeService(store)
	me := mustUser(t, store, "me@example.com")
	other := mustUser(t, store, "other@example.com")

	soup, err := svc.Create(ctx, me.ID, RecipeInput{Title: ptr("Tomato soup"), TimeMinutes: ptr(5), Price: ptr(entity.MustPrice("1"))})
	require.NoError(t, err)
	curry, err := svc.Create(ctx, me.ID, curryInput())
	require.NoError(t, err)
	foreign, err := svc.Create(ctx, other.ID, RecipeInput{Title: ptr("Soup"), TimeMinutes: ptr(5), Price: ptr(entity.MustPrice("1"))})
	require.NoError(t, err)

	_, err = svc.Search(ctx, me.ID, " ", 0)
	var ve *entity.ValidationError
	assert.ErrorAs(t, err, &ve)

	t.Run("title fallback", func(t *testing.T) {
		got, err := svc.Search(ctx, me.ID, "SOUP", 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, soup.ID, got[0].ID)
	})

	t.Run("index order, owner scoped", func(t *testing.T) {
		svc.Index = &fakeIndex{SearchFunc: func(_ context.Context, ownerID int64, q string, _ int) ([]int64, error) {
			assert.Equal(t, me.ID, ownerID)
			return []int64{soup.ID, foreign.ID, curry.ID}, nil
		}}
		defer func() { svc.Index = nil }()

		got, err := svc.Search(ctx, me.ID, "anything", 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, soup.ID, got[0].ID)
		assert.Equal(t, curry.ID, got[1].ID)
	})

	t.Run("index failure falls back", func(t *testing.T) {
		svc.Index = &fakeIndex{SearchFunc: func(context.Context, int64, string, int) ([]int64, error) {
			return nil, errors.New("es down")
		}}
		defer func() { svc.Index = nil }()

		got, err := svc.Search(ctx, me.ID, "curry", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, curry.ID, got[0].ID)
	})
}
