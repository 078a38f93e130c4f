// Package repository defines the persistence interfaces consumed by the
// service layer. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/feedboard/internal/model"
)

// ListOptions controls pagination for post listings.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the credential store: user records plus the owned-set
// bookkeeping that tracks which posts each user created.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateStatus(ctx context.Context, id, status string) error

	// AddPostRef and RemovePostRef maintain the user's owned-set. They are
	// bookkeeping only; ownership checks read the post's creator field.
	AddPostRef(ctx context.Context, userID, postID string) error
	RemovePostRef(ctx context.Context, userID, postID string) error
}

// PostRepository is the post store. Reads resolve the creator's public info
// into Post.Creator.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, opts ListOptions) ([]model.Post, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}
