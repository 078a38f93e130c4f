package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sakif/feedboard/internal/apperror"
	"github.com/sakif/feedboard/internal/auth"
	"github.com/sakif/feedboard/internal/model"
	"github.com/sakif/feedboard/internal/repository"
)

// MinPasswordLength is the minimum accepted password length after trimming.
const MinPasswordLength = 5

// AuthService handles registration, login, and the caller's status string.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles the issued token with the user it identifies.
type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Register creates a new user account.
//
// All field violations are collected before the email uniqueness check, so
// a bad form comes back with the full list in one round trip. The stored
// password is only ever the bcrypt hash.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	password = strings.TrimSpace(password)

	var violations []apperror.Violation
	if _, err := mail.ParseAddress(email); err != nil {
		violations = append(violations, apperror.Violation{
			Field:  "email",
			Reason: "please enter a valid email",
		})
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		violations = append(violations, apperror.Violation{
			Field:  "password",
			Reason: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		})
	}
	if name == "" {
		violations = append(violations, apperror.Violation{
			Field:  "name",
			Reason: "name is required",
		})
	}
	if len(violations) > 0 {
		return nil, apperror.ValidationFailed(violations...)
	}

	// Check uniqueness up front for a clean Conflict. The UNIQUE column in
	// the store still catches the race where two registrations interleave.
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperror.Conflict("a user with this email already exists")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking existing email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Status:       model.DefaultStatus,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies the credentials and issues an identity token.
//
// Both failure modes classify as unauthenticated; the messages match what
// the frontend has always displayed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("A user with this email could not be found.")
		}
		return nil, fmt.Errorf("looking up user by email: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("Passwords do not match")
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &LoginResult{Token: token, UserID: user.ID}, nil
}

// GetStatus returns the authenticated caller's status string.
func (s *AuthService) GetStatus(ctx context.Context, callerID string) (string, error) {
	if callerID == "" {
		return "", apperror.Unauthenticated("authentication required")
	}

	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return "", err
	}

	return user.Status, nil
}

// UpdateStatus replaces the authenticated caller's status string.
func (s *AuthService) UpdateStatus(ctx context.Context, callerID, status string) error {
	if callerID == "" {
		return apperror.Unauthenticated("authentication required")
	}

	status = strings.TrimSpace(status)
	if status == "" {
		return apperror.ValidationFailed(apperror.Violation{
			Field:  "status",
			Reason: "status cannot be empty",
		})
	}

	if err := s.users.UpdateStatus(ctx, callerID, status); err != nil {
		return err
	}

	s.logger.Info("status updated", slog.String("userID", callerID))
	return nil
}
