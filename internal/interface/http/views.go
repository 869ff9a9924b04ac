package handlers

import (
	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

type AttributeView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RecipeListView struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       entity.Price    `json:"price"`
	Link        string          `json:"link"`
	Tags        []AttributeView `json:"tags"`
	Ingredients []AttributeView `json:"ingredients"`
	Image       *string         `json:"image"`
}

// RecipeDetailView is the list projection plus the description.
type RecipeDetailView struct {
	RecipeListView
	Description string `json:"description"`
}

type RecipeImageView struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}

type UserView struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenView struct {
	Token string `json:"token"`
}

// URLFunc resolves a stored image key to its public URL.
type URLFunc func(key string) string

func NewAttributeView(a entity.Attribute) AttributeView {
	return AttributeView{ID: a.ID, Name: a.Name}
}

func attributeViews(attrs []entity.Attribute) []AttributeView {
	out := make([]AttributeView, len(attrs))
	for i, a := range attrs {
		out[i] = NewAttributeView(a)
	}
	return out
}

func imageURL(key string, url URLFunc) *string {
	if key == "" {
		return nil
	}
	if url != nil {
		key = url(key)
	}
	return &key
}

func NewRecipeListView(r *entity.Recipe, url URLFunc) RecipeListView {
	return RecipeListView{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        attributeViews(r.Tags),
		Ingredients: attributeViews(r.Ingredients),
		Image:       imageURL(r.Image, url),
	}
}

func NewRecipeDetailView(r *entity.Recipe, url URLFunc) RecipeDetailView {
	return RecipeDetailView{RecipeListView: NewRecipeListView(r, url), Description: r.Description}
}

func NewRecipeImageView(r *entity.Recipe, url URLFunc) RecipeImageView {
	return RecipeImageView{ID: r.ID, Image: imageURL(r.Image, url)}
}

func NewUserView(u *entity.User) UserView {
	return UserView{Email: u.Email, Name: u.Name}
}
