// Package service contains the business logic layer: validation, ownership
// enforcement, and the orchestration of store writes, image cleanup, and
// change notifications. Handlers stay HTTP-only; repositories stay SQL-only.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/feedboard/internal/apperror"
	"github.com/sakif/feedboard/internal/model"
	"github.com/sakif/feedboard/internal/realtime"
	"github.com/sakif/feedboard/internal/repository"
	"github.com/sakif/feedboard/internal/storage"
)

const (
	// MinTitleLength and MinContentLength mirror the feed's input rules:
	// both fields must be at least 5 characters after trimming.
	MinTitleLength   = 5
	MinContentLength = 5

	// PageSize is the fixed number of posts per listing page.
	PageSize = 10
)

// Notifier publishes post lifecycle events to connected clients.
// *realtime.Hub satisfies this; tests use a recording fake.
type Notifier interface {
	Publish(event realtime.Event)
}

// PostService orchestrates the post lifecycle: create, list, fetch, update,
// delete. It enforces authentication and ownership, keeps the creator's
// owned-set in step with the post store, deletes superseded images, and
// publishes change notifications.
type PostService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	images   storage.ImageStore
	notifier Notifier
	logger   *slog.Logger
}

// NewPostService creates a PostService with all required dependencies.
func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	images storage.ImageStore,
	notifier Notifier,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		images:   images,
		notifier: notifier,
		logger:   logger,
	}
}

// CreatePostInput carries the fields for a new post. ImageURL is a
// reference previously returned by the image upload endpoint.
type CreatePostInput struct {
	Title    string
	Content  string
	ImageURL string
}

// UpdatePostInput carries the fields for a post update. A nil ImageURL
// means "keep the existing image"; a non-nil value replaces it. The two
// must not be conflated: absent and empty are different things.
type UpdatePostInput struct {
	Title    string
	Content  string
	ImageURL *string
}

// PostPage is one page of the feed plus the total count for pagination.
type PostPage struct {
	Posts      []model.Post `json:"posts"`
	TotalCount int          `json:"totalItems"`
}

// Create validates and persists a new post for the authenticated caller.
//
// Effect order matters and is not transactional: the post row is written
// first, then the creator's owned-set, and only after both succeed is the
// create event published. A failure between the two writes surfaces as an
// internal error and leaves the orphaned post in place; no rollback is
// attempted.
func (s *PostService) Create(ctx context.Context, callerID string, in CreatePostInput) (*model.Post, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to create a post")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)

	violations := validatePostFields(in.Title, in.Content)
	if in.ImageURL == "" {
		violations = append(violations, apperror.Violation{
			Field:  "imageUrl",
			Reason: "an image is required",
		})
	}
	if len(violations) > 0 {
		return nil, apperror.ValidationFailed(violations...)
	}

	// Resolve the creator before any write. A valid token for a missing
	// user should not happen, but a dangling post reference is worse.
	creator, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:     in.Title,
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		CreatorID: creator.ID,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("creatorID", creator.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	if err := s.users.AddPostRef(ctx, creator.ID, post.ID); err != nil {
		// The post row exists but the owned-set write failed. Surface as
		// internal and leave the orphan for a reconciliation pass.
		s.logger.Error("post created but owned-set update failed",
			slog.String("postID", post.ID),
			slog.String("creatorID", creator.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal("could not record the new post against its creator", err)
	}

	post.Creator = &model.CreatorInfo{ID: creator.ID, Name: creator.Name}

	s.notifier.Publish(realtime.Event{Action: realtime.ActionCreate, Post: post})

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("creatorID", creator.ID),
	)

	return post, nil
}

// List returns one page of the feed, newest first, with the total count.
// Listing is the one operation open to anonymous callers. A non-positive
// page is treated as page 1.
func (s *PostService) List(ctx context.Context, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("counting posts: %w", err)
	}

	posts, err := s.posts.List(ctx, repository.ListOptions{
		Limit:  PageSize,
		Offset: (page - 1) * PageSize,
	})
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	return &PostPage{Posts: posts, TotalCount: total}, nil
}

// Get returns a single post with creator info embedded. Unlike listing,
// single-post detail requires authentication.
func (s *PostService) Get(ctx context.Context, callerID, id string) (*model.Post, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to view a post")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return post, nil
}

// Update validates and persists changes to a post owned by the caller.
//
// When the input carries a new image reference that differs from the stored
// one, the old image is deleted from the store (best effort) before the new
// reference is persisted. A nil image input leaves the stored reference
// untouched.
func (s *PostService) Update(ctx context.Context, callerID, id string, in UpdatePostInput) (*model.Post, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("authentication required to edit a post")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)

	violations := validatePostFields(in.Title, in.Content)
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) == "" {
		violations = append(violations, apperror.Violation{
			Field:  "imageUrl",
			Reason: "the image cannot be removed, only replaced",
		})
	}
	if len(violations) > 0 {
		return nil, apperror.ValidationFailed(violations...)
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Ownership is derived from the post's own creator field; the user's
	// owned-set is bookkeeping and never consulted for authorization.
	if post.CreatorID != callerID {
		return nil, apperror.Forbidden("not authorized to edit this post")
	}

	if in.ImageURL != nil && *in.ImageURL != post.ImageURL {
		s.deleteImage(ctx, post.ImageURL)
		post.ImageURL = *in.ImageURL
	}

	post.Title = in.Title
	post.Content = in.Content

	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error("failed to update post",
			slog.String("postID", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating post: %w", err)
	}

	s.notifier.Publish(realtime.Event{Action: realtime.ActionUpdate, Post: post})

	s.logger.Info("post updated", slog.String("postID", id))

	return post, nil
}

// Delete removes a post owned by the caller.
//
// Effect order: post row, then the creator's owned-set, then the stored
// image (best effort), then the delete notification. Deleting the database
// record is the success criterion; an image-store failure is logged and
// swallowed.
func (s *PostService) Delete(ctx context.Context, callerID, id string) error {
	if callerID == "" {
		return apperror.Unauthenticated("authentication required to delete a post")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if post.CreatorID != callerID {
		return apperror.Forbidden("not authorized to delete this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete post",
			slog.String("postID", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting post: %w", err)
	}

	if err := s.users.RemovePostRef(ctx, post.CreatorID, id); err != nil {
		s.logger.Error("post deleted but owned-set update failed",
			slog.String("postID", id),
			slog.String("creatorID", post.CreatorID),
			slog.String("error", err.Error()),
		)
		return apperror.Internal("could not remove the post from its creator's references", err)
	}

	s.deleteImage(ctx, post.ImageURL)

	s.notifier.Publish(realtime.Event{Action: realtime.ActionDelete, PostID: id})

	s.logger.Info("post deleted",
		slog.String("postID", id),
		slog.String("creatorID", post.CreatorID),
	)

	return nil
}

// deleteImage removes a stored image, logging failures instead of
// returning them. No post operation ever fails because of the image store.
func (s *PostService) deleteImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("failed to delete stored image",
			slog.String("imageUrl", ref),
			slog.String("error", err.Error()),
		)
	}
}

// validatePostFields collects every violated constraint on title and
// content rather than stopping at the first.
func validatePostFields(title, content string) []apperror.Violation {
	var violations []apperror.Violation

	if utf8.RuneCountInString(title) < MinTitleLength {
		violations = append(violations, apperror.Violation{
			Field:  "title",
			Reason: fmt.Sprintf("title must be at least %d characters", MinTitleLength),
		})
	}
	if utf8.RuneCountInString(content) < MinContentLength {
		violations = append(violations, apperror.Violation{
			Field:  "content",
			Reason: fmt.Sprintf("content must be at least %d characters", MinContentLength),
		})
	}

	return violations
}
