package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/recipe-api/config"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
	"github.com/oksasatya/recipe-api/internal/infrastructure/memory"
	"github.com/oksasatya/recipe-api/pkg/helpers"
)

type fakeImages struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
	saveErr error
	// onSave runs before the object is written.
	onSave func()
}

func newFakeImages() *fakeImages { return &fakeImages{objects: map[string]string{}} }

func (f *fakeImages) Save(_ context.Context, key, _ string, r io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.onSave != nil {
		f.onSave()
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = string(b)
	return nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImages) URL(key string) string { return "http://media.test/" + key }

type fakeIndex struct {
	IndexFunc  func(ctx context.Context, r *entity.Recipe) error
	DeleteFunc func(ctx context.Context, id int64) error
	SearchFunc func(ctx context.Context, ownerID int64, q string, size int) ([]int64, error)
}

func (f *fakeIndex) Index(ctx context.Context, r *entity.Recipe) error {
	if f.IndexFunc == nil {
		return nil
	}
	return f.IndexFunc(ctx, r)
}

func (f *fakeIndex) Delete(ctx context.Context, id int64) error {
	if f.DeleteFunc == nil {
		return nil
	}
	return f.DeleteFunc(ctx, id)
}

func (f *fakeIndex) Search(ctx context.Context, ownerID int64, q string, size int) ([]int64, error) {
	return f.SearchFunc(ctx, ownerID, q, size)
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
}

func newFakeSessions() *fakeSessions { return &fakeSessions{sessions: map[string]entity.Session{}} }

func (f *fakeSessions) Create(_ context.Context, s entity.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) Exists(_ context.Context, userID int64, sid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sid]
	return ok && s.UserID == userID, nil
}

func (f *fakeSessions) Delete(_ context.Context, _ int64, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sid)
	return nil
}

func (f *fakeSessions) Touch(_ context.Context, s entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[s.ID]; ok {
		f.sessions[s.ID] = s
	}
	return nil
}

type fakeMail struct {
	published []any
	err       error
}

func (f *fakeMail) PublishJSON(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, body)
	return nil
}

// failingAttach wraps an attribute repository and fails every Attach.
type failingAttach struct {
	repo.AttributeRepository
}

var errAttach = errors.New("attach failed")

func (f failingAttach) Attach(context.Context, int64, ...int64) error { return errAttach }

func testConfig() *config.Config {
	return &config.Config{AppName: "Recipes", PasswordMinLength: 5, MailSendEnabled: true}
}

func newUserService(t *testing.T, store repo.Store) (*UserService, *fakeSessions, *fakeMail) {
	t.Helper()
	sessions := newFakeSessions()
	mail := &fakeMail{}
	jwt := helpers.NewJWTManager("test-secret", time.Hour, "recipe-api")
	return NewUserService(store.Users, jwt, sessions, mail, testConfig(), helpers.NopLogger()), sessions, mail
}

func mustUser(t *testing.T, store repo.Store, email string) *entity.User {
	t.Helper()
	u, err := entity.NewUser(email, "", "hash")
	require.NoError(t, err)
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func newStore() repo.Store { return memory.NewStore().Repositories() }

func ptr[T any](v T) *T { return &v }

func names(attrs []entity.Attribute) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Name
	}
	return out
}
