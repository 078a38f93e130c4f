package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/feedboard/internal/apperror"
	"github.com/sakif/feedboard/internal/model"
	"github.com/sakif/feedboard/internal/repository"
)

// PostRepo implements repository.PostRepository on the shared connection.
type PostRepo struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostRepo)(nil)

// Create inserts a new post. The ID and timestamps are assigned here and
// written back into the caller's struct.
func (r *PostRepo) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, image_url, creator_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Content,
		post.ImageURL,
		post.CreatorID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post with its creator's public info embedded.
func (r *PostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var (
		p           model.Post
		creatorName sql.NullString
	)

	err := r.conn.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.content, p.image_url, p.creator_id,
		        p.created_at, p.updated_at, u.name
		 FROM posts p
		 LEFT JOIN users u ON u.id = p.creator_id
		 WHERE p.id = ?`,
		id,
	).Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.ImageURL,
		&p.CreatorID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&creatorName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	p.Creator = &model.CreatorInfo{ID: p.CreatorID, Name: creatorName.String}

	return &p, nil
}

// List retrieves posts newest-created-first with creator info embedded.
func (r *PostRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.image_url, p.creator_id,
		        p.created_at, p.updated_at, u.name
		 FROM posts p
		 LEFT JOIN users u ON u.id = p.creator_id
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, limit)

	for rows.Next() {
		var (
			p           model.Post
			creatorName sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Content, &p.ImageURL, &p.CreatorID,
			&p.CreatedAt, &p.UpdatedAt, &creatorName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		p.Creator = &model.CreatorInfo{ID: p.CreatorID, Name: creatorName.String}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Count returns the total number of posts, used for pagination.
func (r *PostRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return count, nil
}

// Update persists new title/content/image values and refreshes updated_at.
// The creator and created_at columns are immutable.
func (r *PostRepo) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, content = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		post.Title,
		post.Content,
		post.ImageURL,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// Delete removes a post by ID.
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}
