package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/feedboard/internal/auth"
	"github.com/sakif/feedboard/internal/model"
	"github.com/sakif/feedboard/internal/service"
)

func (e *testEnv) createPost(t *testing.T, userID, title string) *model.Post {
	t.Helper()

	post, err := e.postSvc.Create(context.Background(), userID, service.CreatePostInput{
		Title:    title,
		Content:  "content for " + title,
		ImageURL: "images/" + title + ".png",
	})
	if err != nil {
		t.Fatalf("creating test post: %v", err)
	}
	return post
}

func authedRequest(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}

func TestHandleCreatePost(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")

	body := `{"title":"hello feed","content":"my first post","imageUrl":"images/hello.png"}`
	req := authedRequest(http.MethodPost, "/feed/post", body, user.ID)
	rec := httptest.NewRecorder()
	env.posts.HandleCreate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string     `json:"message"`
		Post    model.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Post created successfully!", resp.Message)
	assert.Equal(t, "hello feed", resp.Post.Title)
	assert.Equal(t, user.ID, resp.Post.CreatorID)
	require.NotNil(t, resp.Post.Creator)
	assert.Equal(t, "Test User", resp.Post.Creator.Name)
}

func TestHandleCreatePost_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	body := `{"title":"hello feed","content":"my first post","imageUrl":"images/hello.png"}`
	req := authedRequest(http.MethodPost, "/feed/post", body, "")
	rec := httptest.NewRecorder()
	env.posts.HandleCreate(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleListPosts(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")
	for i := 0; i < 12; i++ {
		env.createPost(t, user.ID, fmt.Sprintf("post %02d", i))
	}

	// The feed listing is open to anonymous callers.
	req := authedRequest(http.MethodGet, "/feed/posts?page=2", "", "")
	rec := httptest.NewRecorder()
	env.posts.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Posts      []model.Post `json:"posts"`
		TotalItems int          `json:"totalItems"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Posts, 2)
	assert.Equal(t, 12, resp.TotalItems)
}

func TestHandleGetPost(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")
	post := env.createPost(t, user.ID, "detail")

	req := authedRequest(http.MethodGet, "/feed/post/"+post.ID, "", user.ID)
	req.SetPathValue("id", post.ID)
	rec := httptest.NewRecorder()
	env.posts.HandleGet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Post model.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, post.ID, resp.Post.ID)
}

func TestHandleGetPost_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")
	post := env.createPost(t, user.ID, "detail")

	req := authedRequest(http.MethodGet, "/feed/post/"+post.ID, "", "")
	req.SetPathValue("id", post.ID)
	rec := httptest.NewRecorder()
	env.posts.HandleGet(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleUpdatePost_OtherUserForbidden(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	post := env.createPost(t, alice.ID, "original")

	body := `{"title":"hijacked title","content":"hijacked content"}`
	req := authedRequest(http.MethodPut, "/feed/post/"+post.ID, body, bob.ID)
	req.SetPathValue("id", post.ID)
	rec := httptest.NewRecorder()
	env.posts.HandleUpdate(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleUpdatePost(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")
	post := env.createPost(t, user.ID, "original")

	body := `{"title":"revised title","content":"revised content"}`
	req := authedRequest(http.MethodPut, "/feed/post/"+post.ID, body, user.ID)
	req.SetPathValue("id", post.ID)
	rec := httptest.NewRecorder()
	env.posts.HandleUpdate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Post model.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "revised title", resp.Post.Title)
	// The imageUrl field was absent, so the stored image stays.
	assert.Equal(t, post.ImageURL, resp.Post.ImageURL)
	assert.Empty(t, env.store.deleted)
}

func TestHandleDeletePost(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")
	post := env.createPost(t, user.ID, "doomed")

	req := authedRequest(http.MethodDelete, "/feed/post/"+post.ID, "", user.ID)
	req.SetPathValue("id", post.ID)
	rec := httptest.NewRecorder()
	env.posts.HandleDelete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Successful post deletion!", resp["message"])

	assert.Equal(t, []string{post.ImageURL}, env.store.deleted)

	req = authedRequest(http.MethodGet, "/feed/post/"+post.ID, "", user.ID)
	req.SetPathValue("id", post.ID)
	rec = httptest.NewRecorder()
	env.posts.HandleGet(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
