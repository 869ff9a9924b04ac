package entity

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// AttributeKind distinguishes the two owner-scoped recipe attributes.
// Tags and ingredients share storage shape and behaviour.
type AttributeKind string

const (
	KindTag        AttributeKind = "tag"
	KindIngredient AttributeKind = "ingredient"
)

// MaxNameLength bounds titles, links and attribute names.
const MaxNameLength = 255

// Plural returns the collection name used in routes and payload fields.
func (k AttributeKind) Plural() string {
	switch k {
	case KindIngredient:
		return "ingredients"
	default:
		return "tags"
	}
}

// Attribute is a Tag or an Ingredient owned by a single user.
// (OwnerID, Name) is unique per kind.
type Attribute struct {
	ID      int64
	OwnerID int64
	Kind    AttributeKind
	Name    string
}

// AttributeFilter narrows attribute listings.
type AttributeFilter struct {
	// AssignedOnly keeps attributes attached to at least one recipe.
	AssignedOnly bool
}

// CleanName trims a candidate name and checks its bounds.
func CleanName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError(field, "may not be blank")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", NewValidationError(field, fmt.Sprintf("ensure this field has no more than %d characters", MaxNameLength))
	}
	return name, nil
}
