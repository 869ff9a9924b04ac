package repository

import "context"

// Transactor runs fn inside one storage transaction. Repositories called
// with the context passed to fn take part in that transaction; any error
// returned by fn rolls every write back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles the repositories of one storage driver.
type Store struct {
	Users       UserRepository
	Recipes     RecipeRepository
	Tags        AttributeRepository
	Ingredients AttributeRepository
	Tx          Transactor
	Health      Pinger
}
