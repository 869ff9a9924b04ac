package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// RecipeIndex keeps a searchable copy of recipes in Elasticsearch.
// Every search is filtered by owner.
type RecipeIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewRecipeIndex(es *elasticsearch.Client, index string) *RecipeIndex {
	return &RecipeIndex{es: es, index: index}
}

type recipeDoc struct {
	ID          int64    `json:"id"`
	OwnerID     int64    `json:"owner_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
	UpdatedAt   string   `json:"updated_at"`
}

func newRecipeDoc(r *entity.Recipe) recipeDoc {
	doc := recipeDoc{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Tags:        make([]string, 0, len(r.Tags)),
		Ingredients: make([]string, 0, len(r.Ingredients)),
		UpdatedAt:   r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, t := range r.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	for _, i := range r.Ingredients {
		doc.Ingredients = append(doc.Ingredients, i.Name)
	}
	return doc
}

func (x *RecipeIndex) Index(ctx context.Context, r *entity.Recipe) error {
	b, err := json.Marshal(newRecipeDoc(r))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: strconv.FormatInt(r.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("index recipe %d: %w", r.ID, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index recipe %d: %s", r.ID, res.Status())
	}
	return nil
}

// Delete removes a recipe document; a missing document is not an error.
func (x *RecipeIndex) Delete(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("delete recipe %d: %w", id, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete recipe %d: %s", id, res.Status())
	}
	return nil
}

// Search returns ids of the owner's recipes matching q, best match first.
func (x *RecipeIndex) Search(ctx context.Context, ownerID int64, q string, size int) ([]int64, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"owner_id": ownerID}},
				},
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^3", "tags^2", "ingredients^2", "description"},
					}},
				},
			},
		},
		"_source": []string{"id"},
		"size":    size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search recipes: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, nil
}
