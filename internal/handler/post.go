package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/feedboard/internal/auth"
	"github.com/sakif/feedboard/internal/service"
)

// PostHandler exposes the post lifecycle endpoints.
type PostHandler struct {
	postService *service.PostService
	logger      *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(postService *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{postService: postService, logger: logger}
}

type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

// HandleCreate creates a new post for the authenticated caller.
//
// HTTP: POST /feed/post
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid JSON body",
		})
		return
	}

	post, err := h.postService.Create(r.Context(), callerID, service.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post created successfully!",
		"post":    post,
	})
}

// HandleList returns one page of the feed. Open to anonymous callers.
//
// HTTP: GET /feed/posts?page=N
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil {
			page = parsed
		}
	}

	result, err := h.postService.List(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGet returns a single post. Requires authentication.
//
// HTTP: GET /feed/post/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	post, err := h.postService.Get(r.Context(), callerID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

type updatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	// A pointer so an absent field ("keep the image") can be told apart
	// from an explicit empty value.
	ImageURL *string `json:"imageUrl"`
}

// HandleUpdate edits a post owned by the caller.
//
// HTTP: PUT /feed/post/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid JSON body",
		})
		return
	}

	post, err := h.postService.Update(r.Context(), callerID, id, service.UpdatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Post updated successfully!",
		"post":    post,
	})
}

// HandleDelete removes a post owned by the caller.
//
// HTTP: DELETE /feed/post/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.postService.Delete(r.Context(), callerID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successful post deletion!"})
}
