package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/feedboard/internal/apperror"
	"github.com/sakif/feedboard/internal/model"
	"github.com/sakif/feedboard/internal/repository"
)

// UserRepo implements repository.UserRepository on the shared connection.
type UserRepo struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserRepo)(nil)

// Create inserts a new user. The ID and timestamps are assigned here; the
// caller's struct is updated in place. A duplicate email maps to Conflict
// via the UNIQUE constraint, so the uniqueness invariant holds even when
// two registrations race past the service-level pre-check.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	if user.Status == "" {
		user.Status = model.DefaultStatus
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return apperror.Conflict("a user with this email already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user and their owned-set by internal ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := r.scanUser(r.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, status, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	if err := r.loadOwnedSet(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail retrieves a user and their owned-set by email address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.scanUser(r.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, status, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}

	if err := r.loadOwnedSet(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateStatus replaces the user's status string.
func (r *UserRepo) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating status for user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// AddPostRef appends a post reference to the user's owned-set.
// INSERT OR IGNORE keeps the call idempotent.
func (r *UserRepo) AddPostRef(ctx context.Context, userID, postID string) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_posts (user_id, post_id) VALUES (?, ?)`,
		userID, postID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding post ref %s to user %s: %w", postID, userID, err)
	}
	return nil
}

// RemovePostRef removes a post reference from the user's owned-set.
// Removing a ref that is not present is not an error.
func (r *UserRepo) RemovePostRef(ctx context.Context, userID, postID string) error {
	_, err := r.conn.ExecContext(ctx,
		`DELETE FROM user_posts WHERE user_id = ? AND post_id = ?`,
		userID, postID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing post ref %s from user %s: %w", postID, userID, err)
	}
	return nil
}

func (r *UserRepo) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) loadOwnedSet(ctx context.Context, user *model.User) error {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT post_id FROM user_posts WHERE user_id = ?`,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading owned-set for user %s: %w", user.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		if err := rows.Scan(&postID); err != nil {
			return fmt.Errorf("sqlite: scanning owned-set row: %w", err)
		}
		user.Posts = append(user.Posts, postID)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating owned-set: %w", err)
	}

	return nil
}
