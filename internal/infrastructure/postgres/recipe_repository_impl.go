package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

var recipeColumns = []string{
	"r.id", "r.owner_id", "r.title", "r.description", "r.time_minutes",
	"r.price::text", "r.link", "r.image", "r.created_at", "r.updated_at",
}

type RecipeRepository struct {
	db *DB
}

func NewRecipeRepository(db *DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) selectRecipes(ownerID int64) sq.SelectBuilder {
	return psql.Select(recipeColumns...).
		From("recipes r").
		Where(sq.Eq{"r.owner_id": ownerID}).
		OrderBy("r.id DESC")
}

// List returns the owner's recipes, newest first. Tag and ingredient filters
// match recipes linked to at least one of the given ids.
func (r *RecipeRepository) List(ctx context.Context, ownerID int64, f entity.RecipeFilter) ([]*entity.Recipe, error) {
	b := r.selectRecipes(ownerID)
	if len(f.TagIDs) > 0 {
		b = b.Where("EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = r.id AND rt.tag_id = ANY(?))", f.TagIDs)
	}
	if len(f.IngredientIDs) > 0 {
		b = b.Where("EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = r.id AND ri.ingredient_id = ANY(?))", f.IngredientIDs)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		b = b.Where(sq.ILike{"r.title": "%" + escapeLike(q) + "%"})
	}
	return r.query(ctx, b)
}

func (r *RecipeRepository) GetByIDs(ctx context.Context, ownerID int64, ids []int64) ([]*entity.Recipe, error) {
	if len(ids) == 0 {
		return []*entity.Recipe{}, nil
	}
	return r.query(ctx, r.selectRecipes(ownerID).Where("r.id = ANY(?)", ids))
}

func (r *RecipeRepository) Get(ctx context.Context, ownerID, id int64) (*entity.Recipe, error) {
	query, args, err := r.selectRecipes(ownerID).Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recipe query: %w", err)
	}
	rec, err := scanRecipe(r.db.q(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return rec, err
}

func (r *RecipeRepository) Create(ctx context.Context, rec *entity.Recipe) error {
	row := r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO recipes (owner_id, title, description, time_minutes, price, link, image)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		RETURNING id, created_at, updated_at
	`, rec.OwnerID, rec.Title, rec.Description, rec.TimeMinutes, rec.Price.String(), rec.Link, nullable(rec.Image))

	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return entity.ErrNotFound
		}
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepository) Update(ctx context.Context, rec *entity.Recipe) error {
	row := r.db.q(ctx).QueryRow(ctx, `
		UPDATE recipes
		SET title = $1, description = $2, time_minutes = $3, price = $4::numeric,
		    link = $5, image = $6, updated_at = NOW()
		WHERE id = $7 AND owner_id = $8
		RETURNING created_at, updated_at
	`, rec.Title, rec.Description, rec.TimeMinutes, rec.Price.String(), rec.Link, nullable(rec.Image), rec.ID, rec.OwnerID)

	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ErrNotFound
		}
		return fmt.Errorf("update recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepository) SetImage(ctx context.Context, ownerID, id int64, key string) (string, error) {
	row := r.db.q(ctx).QueryRow(ctx, `
		UPDATE recipes AS r
		SET image = $1, updated_at = NOW()
		FROM (SELECT id, image FROM recipes WHERE id = $2 AND owner_id = $3 FOR UPDATE) AS old
		WHERE r.id = old.id
		RETURNING COALESCE(old.image, '')
	`, nullable(key), id, ownerID)

	var previous string
	if err := row.Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", entity.ErrNotFound
		}
		return "", fmt.Errorf("set recipe image: %w", err)
	}
	return previous, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.q(ctx).Exec(ctx, `DELETE FROM recipes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) query(ctx context.Context, b sq.SelectBuilder) ([]*entity.Recipe, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recipe query: %w", err)
	}
	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	out := []*entity.Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return out, nil
}

func scanRecipe(row pgx.Row) (*entity.Recipe, error) {
	var (
		rec   entity.Recipe
		price string
		image *string
	)
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.Description, &rec.TimeMinutes,
		&price, &rec.Link, &image, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan recipe: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("scan recipe price %q: %w", price, err)
	}
	rec.Price = entity.Price{Decimal: d}
	if image != nil {
		rec.Image = *image
	}
	return &rec, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
