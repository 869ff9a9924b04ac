package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Recipe is owned by exactly one user. Tags and Ingredients always belong
// to the same owner as the recipe.
type Recipe struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	TimeMinutes int
	Price       Price
	Link        string
	// Image is the blob-store key of the recipe picture, empty when unset.
	Image       string
	Tags        []Attribute
	Ingredients []Attribute
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeFilter narrows recipe listings. Empty id sets do not filter.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
	// Query matches titles case-insensitively.
	Query string
}

// Attributes returns the relation set of the given kind.
func (r *Recipe) Attributes(kind AttributeKind) []Attribute {
	if kind == KindIngredient {
		return r.Ingredients
	}
	return r.Tags
}

// SetAttributes replaces the in-memory relation set of the given kind.
func (r *Recipe) SetAttributes(kind AttributeKind, attrs []Attribute) {
	if kind == KindIngredient {
		r.Ingredients = attrs
		return
	}
	r.Tags = attrs
}

// Validate checks scalar fields after a create or update has been applied.
func (r *Recipe) Validate() error {
	v := &ValidationError{}
	r.Title = strings.TrimSpace(r.Title)
	switch {
	case r.Title == "":
		v.Add("title", "may not be blank")
	case utf8.RuneCountInString(r.Title) > MaxNameLength:
		v.Add("title", fmt.Sprintf("ensure this field has no more than %d characters", MaxNameLength))
	}
	switch {
	case r.TimeMinutes <= 0:
		v.Add("time_minutes", "ensure this value is greater than 0")
	case r.TimeMinutes > math.MaxInt32:
		v.Add("time_minutes", fmt.Sprintf("ensure this value is less than or equal to %d", math.MaxInt32))
	}
	if err := r.Price.Check(); err != nil {
		v.Add("price", err.Error())
	}
	if utf8.RuneCountInString(r.Link) > MaxNameLength {
		v.Add("link", fmt.Sprintf("ensure this field has no more than %d characters", MaxNameLength))
	}
	return v.OrNil()
}
