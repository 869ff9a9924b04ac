package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

// attributeTable names the row table and recipe link table of one kind.
type attributeTable struct {
	table string
	link  string
	fk    string
}

var attributeTables = map[entity.AttributeKind]attributeTable{
	entity.KindTag:        {table: "tags", link: "recipe_tags", fk: "tag_id"},
	entity.KindIngredient: {table: "ingredients", link: "recipe_ingredients", fk: "ingredient_id"},
}

// AttributeRepository serves tags or ingredients depending on its kind.
type AttributeRepository struct {
	db   *DB
	kind entity.AttributeKind
	t    attributeTable
}

func NewTagRepository(db *DB) *AttributeRepository {
	return &AttributeRepository{db: db, kind: entity.KindTag, t: attributeTables[entity.KindTag]}
}

func NewIngredientRepository(db *DB) *AttributeRepository {
	return &AttributeRepository{db: db, kind: entity.KindIngredient, t: attributeTables[entity.KindIngredient]}
}

func (r *AttributeRepository) Kind() entity.AttributeKind { return r.kind }

// List orders by name descending with byte-wise comparison, then id.
func (r *AttributeRepository) List(ctx context.Context, ownerID int64, f entity.AttributeFilter) ([]*entity.Attribute, error) {
	b := psql.Select("a.id", "a.owner_id", "a.name").
		From(r.t.table+" a").
		Where(sq.Eq{"a.owner_id": ownerID}).
		OrderBy(`a.name COLLATE "C" DESC`, "a.id DESC")
	if f.AssignedOnly {
		b = b.Where(fmt.Sprintf("EXISTS (SELECT 1 FROM %s l WHERE l.%s = a.id)", r.t.link, r.t.fk))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", r.t.table, err)
	}

	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.t.table, err)
	}
	defer rows.Close()

	out := []*entity.Attribute{}
	for rows.Next() {
		a := &entity.Attribute{Kind: r.kind}
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.table, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.t.table, err)
	}
	return out, nil
}

func (r *AttributeRepository) Get(ctx context.Context, ownerID, id int64) (*entity.Attribute, error) {
	a := &entity.Attribute{Kind: r.kind}
	err := r.db.q(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT id, owner_id, name FROM %s WHERE id = $1 AND owner_id = $2`, r.t.table),
		id, ownerID,
	).Scan(&a.ID, &a.OwnerID, &a.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", r.kind, err)
	}
	return a, nil
}

func (r *AttributeRepository) Create(ctx context.Context, a *entity.Attribute) error {
	err := r.db.q(ctx).QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (owner_id, name) VALUES ($1, $2) RETURNING id`, r.t.table),
		a.OwnerID, a.Name,
	).Scan(&a.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return entity.ErrDuplicateName
		case isForeignKeyViolation(err):
			return entity.ErrNotFound
		}
		return fmt.Errorf("insert %s: %w", r.kind, err)
	}
	a.Kind = r.kind
	return nil
}

// GetOrCreate relies on UNIQUE (owner_id, name): a concurrent insert of the
// same name makes ours a no-op and the row is read back instead.
func (r *AttributeRepository) GetOrCreate(ctx context.Context, ownerID int64, name string) (*entity.Attribute, error) {
	a := &entity.Attribute{OwnerID: ownerID, Name: name, Kind: r.kind}
	q := r.db.q(ctx)

	err := q.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (owner_id, name) VALUES ($1, $2) ON CONFLICT (owner_id, name) DO NOTHING RETURNING id`, r.t.table),
		ownerID, name,
	).Scan(&a.ID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get or create %s %q: %w", r.kind, name, err)
	}

	err = q.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE owner_id = $1 AND name = $2`, r.t.table),
		ownerID, name,
	).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("get or create %s %q: %w", r.kind, name, err)
	}
	return a, nil
}

func (r *AttributeRepository) Update(ctx context.Context, a *entity.Attribute) error {
	tag, err := r.db.q(ctx).Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2 AND owner_id = $3`, r.t.table),
		a.Name, a.ID, a.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateName
		}
		return fmt.Errorf("update %s: %w", r.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	a.Kind = r.kind
	return nil
}

func (r *AttributeRepository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.q(ctx).Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.t.table),
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *AttributeRepository) Attach(ctx context.Context, recipeID int64, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.q(ctx).Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (recipe_id, %s) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, r.t.link, r.t.fk),
		recipeID, ids,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return entity.ErrNotFound
		}
		return fmt.Errorf("attach %s: %w", r.t.table, err)
	}
	return nil
}

func (r *AttributeRepository) Clear(ctx context.Context, recipeID int64) error {
	if _, err := r.db.q(ctx).Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE recipe_id = $1`, r.t.link), recipeID); err != nil {
		return fmt.Errorf("clear %s: %w", r.t.table, err)
	}
	return nil
}

func (r *AttributeRepository) ListForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]entity.Attribute, error) {
	out := make(map[int64][]entity.Attribute, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.q(ctx).Query(ctx,
		fmt.Sprintf(`SELECT l.recipe_id, a.id, a.owner_id, a.name
			FROM %s l JOIN %s a ON a.id = l.%s
			WHERE l.recipe_id = ANY($1)
			ORDER BY l.recipe_id, a.id`, r.t.link, r.t.table, r.t.fk),
		recipeIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s for recipes: %w", r.t.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		a := entity.Attribute{Kind: r.kind}
		if err := rows.Scan(&recipeID, &a.ID, &a.OwnerID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.table, err)
		}
		out[recipeID] = append(out[recipeID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s for recipes: %w", r.t.table, err)
	}
	return out, nil
}
