package postgres

import "github.com/oksasatya/recipe-api/internal/domain/repository"

// NewStore wires every postgres repository over one connection.
func NewStore(conn Conn) repository.Store {
	db := NewDB(conn)
	return repository.Store{
		Users:       NewUserRepository(db),
		Recipes:     NewRecipeRepository(db),
		Tags:        NewTagRepository(db),
		Ingredients: NewIngredientRepository(db),
		Tx:          db,
		Health:      db,
	}
}
