package handler

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sakif/feedboard/internal/auth"
	"github.com/sakif/feedboard/internal/model"
	"github.com/sakif/feedboard/internal/realtime"
	"github.com/sakif/feedboard/internal/repository/sqlite"
	"github.com/sakif/feedboard/internal/service"
)

// fakeImageStore records deletions and stores nothing.
type fakeImageStore struct {
	deleted []string
}

func (f *fakeImageStore) Store(_ context.Context, filename string, _ io.Reader) (string, error) {
	return "images/" + filename, nil
}

func (f *fakeImageStore) Delete(_ context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

// fakeNotifier records published events.
type fakeNotifier struct {
	events []realtime.Event
}

func (f *fakeNotifier) Publish(event realtime.Event) {
	f.events = append(f.events, event)
}

// testEnv wires real services over a throwaway database, with the image
// store and notifier faked out.
type testEnv struct {
	auth     *AuthHandler
	posts    *PostHandler
	images   *ImageHandler
	authSvc  *service.AuthService
	postSvc  *service.PostService
	store    *fakeImageStore
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store := &fakeImageStore{}
	notifier := &fakeNotifier{}

	authSvc := service.NewAuthService(db.Users, tokens, auth.NewPasswordServiceForTest(4), logger)
	postSvc := service.NewPostService(db.Posts, db.Users, store, notifier, logger)

	return &testEnv{
		auth:     NewAuthHandler(authSvc, logger),
		posts:    NewPostHandler(postSvc, logger),
		images:   NewImageHandler(store, logger),
		authSvc:  authSvc,
		postSvc:  postSvc,
		store:    store,
		notifier: notifier,
	}
}

func (e *testEnv) registerUser(t *testing.T, email string) *model.User {
	t.Helper()

	user, err := e.authSvc.Register(context.Background(), email, "Test User", "secret1")
	if err != nil {
		t.Fatalf("registering test user: %v", err)
	}
	return user
}
