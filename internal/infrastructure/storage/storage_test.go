package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestLocalStore_SaveDelete(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root, "/media")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "upload/recipie/a.jpg", "image/jpeg", strings.NewReader("jpeg-bytes")))

	b, err := os.ReadFile(filepath.Join(root, "upload", "recipie", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(b))
	assert.Equal(t, "/media/upload/recipie/a.jpg", s.URL("upload/recipie/a.jpg"))

	require.NoError(t, s.Delete(ctx, "upload/recipie/a.jpg"))
	_, err = os.Stat(filepath.Join(root, "upload", "recipie", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, "upload/recipie/a.jpg"), "missing file is fine")
}

func TestLocalStore_KeyStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root, "/media/")

	require.NoError(t, s.Save(context.Background(), "../../escape.jpg", "image/jpeg", strings.NewReader("x")))
	_, err := os.Stat(filepath.Join(root, "escape.jpg"))
	assert.NoError(t, err)

	assert.Error(t, s.Save(context.Background(), "", "image/jpeg", strings.NewReader("x")))
}

func TestGCSStore_DeleteAndURL(t *testing.T) {
	var deleted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		deleted = append(deleted, r.URL.Path)
		if strings.Contains(r.URL.Path, "gone.jpg") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"No such object"}}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := gcs.NewClient(context.Background(),
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	defer client.Close()

	s := NewGCSStore(client, "media")
	require.NoError(t, s.Delete(context.Background(), "upload/recipie/a.jpg"))
	require.NoError(t, s.Delete(context.Background(), "upload/recipie/gone.jpg"))

	require.Len(t, deleted, 2)
	assert.Contains(t, deleted[0], "/b/media/o/")
	assert.Equal(t, "https://storage.googleapis.com/media/upload/recipie/a.jpg", s.URL("upload/recipie/a.jpg"))
}
