package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newFakeES(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handle(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &reqs
}

func TestRecipeIndex_Index(t *testing.T) {
	es, reqs := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	idx := NewRecipeIndex(es, "recipes")

	err := idx.Index(context.Background(), &entity.Recipe{
		ID: 7, OwnerID: 1, Title: "Curry",
		Tags:        []entity.Attribute{{ID: 1, Name: "Spicy"}},
		Ingredients: []entity.Attribute{{ID: 2, Name: "Rice"}},
	})
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/recipes/_doc/7", got.path)

	var doc recipeDoc
	require.NoError(t, json.Unmarshal([]byte(got.body), &doc))
	assert.Equal(t, int64(1), doc.OwnerID)
	assert.Equal(t, []string{"Spicy"}, doc.Tags)
	assert.Equal(t, []string{"Rice"}, doc.Ingredients)
}

func TestRecipeIndex_DeleteIgnoresMissing(t *testing.T) {
	es, reqs := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	idx := NewRecipeIndex(es, "recipes")

	require.NoError(t, idx.Delete(context.Background(), 9))
	assert.Equal(t, "/recipes/_doc/9", (*reqs)[0].path)
}

func TestRecipeIndex_SearchFiltersByOwner(t *testing.T) {
	es, reqs := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":4}},{"_source":{"id":2}}]}}`))
	})
	idx := NewRecipeIndex(es, "recipes")

	ids, err := idx.Search(context.Background(), 3, "curry", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2}, ids)

	got := (*reqs)[0]
	assert.True(t, strings.HasSuffix(got.path, "/recipes/_search"))
	assert.Contains(t, got.body, `"owner_id":3`)
	assert.Contains(t, got.body, `"query":"curry"`)
	assert.Contains(t, got.body, `"size":20`)
}

func TestRecipeIndex_SearchError(t *testing.T) {
	es, _ := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	idx := NewRecipeIndex(es, "recipes")

	_, err := idx.Search(context.Background(), 1, "x", 5)
	assert.Error(t, err)
}
