package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
)

func newRepos(t *testing.T) repository.Store {
	t.Helper()
	return NewStore().Repositories()
}

func mustUser(t *testing.T, repos repository.Store, email string) *entity.User {
	t.Helper()
	u, err := entity.NewUser(email, "", "hash")
	require.NoError(t, err)
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func mustRecipe(t *testing.T, repos repository.Store, owner int64, title string) *entity.Recipe {
	t.Helper()
	r := &entity.Recipe{OwnerID: owner, Title: title, TimeMinutes: 5, Price: entity.MustPrice("1.00")}
	require.NoError(t, repos.Recipes.Create(context.Background(), r))
	return r
}

func TestUsers_UniqueEmail(t *testing.T) {
	repos := newRepos(t)
	mustUser(t, repos, "a@example.com")

	dup := &entity.User{Email: "a@example.com"}
	assert.ErrorIs(t, repos.Users.Create(context.Background(), dup), entity.ErrEmailTaken)

	found, err := repos.Users.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ID)

	_, err = repos.Users.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRecipes_ScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	other := mustUser(t, repos, "other@example.com")
	me := mustUser(t, repos, "me@example.com")

	mustRecipe(t, repos, other.ID, "theirs")
	first := mustRecipe(t, repos, me.ID, "first")
	second := mustRecipe(t, repos, me.ID, "second")

	list, err := repos.Recipes.List(ctx, me.ID, entity.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = repos.Recipes.Get(ctx, other.ID, first.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.ErrorIs(t, repos.Recipes.Delete(ctx, other.ID, first.ID), entity.ErrNotFound)
}

func TestRecipes_FilterByAttributes(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	me := mustUser(t, repos, "me@example.com")
	r1 := mustRecipe(t, repos, me.ID, "Thai curry")
	r2 := mustRecipe(t, repos, me.ID, "Porridge")
	mustRecipe(t, repos, me.ID, "Fish and chips")

	vegan, err := repos.Tags.GetOrCreate(ctx, me.ID, "Vegan")
	require.NoError(t, err)
	veg, err := repos.Tags.GetOrCreate(ctx, me.ID, "Vegetarian")
	require.NoError(t, err)
	require.NoError(t, repos.Tags.Attach(ctx, r1.ID, vegan.ID))
	require.NoError(t, repos.Tags.Attach(ctx, r2.ID, veg.ID))

	list, err := repos.Recipes.List(ctx, me.ID, entity.RecipeFilter{TagIDs: []int64{vegan.ID, veg.ID}})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	salt, err := repos.Ingredients.GetOrCreate(ctx, me.ID, "Salt")
	require.NoError(t, err)
	require.NoError(t, repos.Ingredients.Attach(ctx, r2.ID, salt.ID))

	list, err = repos.Recipes.List(ctx, me.ID, entity.RecipeFilter{TagIDs: []int64{vegan.ID, veg.ID}, IngredientIDs: []int64{salt.ID}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r2.ID, list[0].ID)

	list, err = repos.Recipes.List(ctx, me.ID, entity.RecipeFilter{Query: "CURRY"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r1.ID, list[0].ID)
}

func TestAttributes_GetOrCreateIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	a := mustUser(t, repos, "a@example.com")
	b := mustUser(t, repos, "b@example.com")

	t1, err := repos.Tags.GetOrCreate(ctx, a.ID, "Lunch")
	require.NoError(t, err)
	t2, err := repos.Tags.GetOrCreate(ctx, a.ID, "Lunch")
	require.NoError(t, err)
	t3, err := repos.Tags.GetOrCreate(ctx, b.ID, "Lunch")
	require.NoError(t, err)

	assert.Equal(t, t1.ID, t2.ID)
	assert.NotEqual(t, t1.ID, t3.ID)
	assert.Equal(t, entity.KindTag, t1.Kind)

	err = repos.Tags.Create(ctx, &entity.Attribute{OwnerID: a.ID, Name: "Lunch"})
	assert.ErrorIs(t, err, entity.ErrDuplicateName)
}

func TestAttributes_AssignedOnlyDistinctAndOrdered(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	me := mustUser(t, repos, "me@example.com")
	r1 := mustRecipe(t, repos, me.ID, "one")
	r2 := mustRecipe(t, repos, me.ID, "two")

	eggs, _ := repos.Ingredients.GetOrCreate(ctx, me.ID, "Eggs")
	_, _ = repos.Ingredients.GetOrCreate(ctx, me.ID, "Lentils")
	apple, _ := repos.Ingredients.GetOrCreate(ctx, me.ID, "apple")
	require.NoError(t, repos.Ingredients.Attach(ctx, r1.ID, eggs.ID))
	require.NoError(t, repos.Ingredients.Attach(ctx, r2.ID, eggs.ID))

	all, err := repos.Ingredients.List(ctx, me.ID, entity.AttributeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// byte-wise descending: lower-case sorts after upper-case
	assert.Equal(t, apple.ID, all[0].ID)
	assert.Equal(t, "Lentils", all[1].Name)
	assert.Equal(t, "Eggs", all[2].Name)

	assigned, err := repos.Ingredients.List(ctx, me.ID, entity.AttributeFilter{AssignedOnly: true})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, eggs.ID, assigned[0].ID)
}

func TestAttributes_DeleteDropsLinks(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	me := mustUser(t, repos, "me@example.com")
	r := mustRecipe(t, repos, me.ID, "one")
	tag, _ := repos.Tags.GetOrCreate(ctx, me.ID, "Dinner")
	require.NoError(t, repos.Tags.Attach(ctx, r.ID, tag.ID))

	require.NoError(t, repos.Tags.Delete(ctx, me.ID, tag.ID))
	links, err := repos.Tags.ListForRecipes(ctx, []int64{r.ID})
	require.NoError(t, err)
	assert.Empty(t, links[r.ID])
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	me := mustUser(t, repos, "me@example.com")
	r := mustRecipe(t, repos, me.ID, "kept")
	tag, _ := repos.Tags.GetOrCreate(ctx, me.ID, "Old")
	require.NoError(t, repos.Tags.Attach(ctx, r.ID, tag.ID))

	boom := errors.New("boom")
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := repos.Tags.Clear(ctx, r.ID); err != nil {
			return err
		}
		if _, err := repos.Tags.GetOrCreate(ctx, me.ID, "New"); err != nil {
			return err
		}
		r.Title = "changed"
		if err := repos.Recipes.Update(ctx, r); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repos.Recipes.Get(ctx, me.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)

	links, err := repos.Tags.ListForRecipes(ctx, []int64{r.ID})
	require.NoError(t, err)
	require.Len(t, links[r.ID], 1)
	assert.Equal(t, "Old", links[r.ID][0].Name)

	tags, err := repos.Tags.List(ctx, me.ID, entity.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestRecipeDelete_DropsLinks(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	me := mustUser(t, repos, "me@example.com")
	r := mustRecipe(t, repos, me.ID, "gone")
	tag, _ := repos.Tags.GetOrCreate(ctx, me.ID, "Brunch")
	require.NoError(t, repos.Tags.Attach(ctx, r.ID, tag.ID))

	require.NoError(t, repos.Recipes.Delete(ctx, me.ID, r.ID))
	assigned, err := repos.Tags.List(ctx, me.ID, entity.AttributeFilter{AssignedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, assigned)
}
