// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services enforce the rules and
// orchestrate; repositories talk to the database. Each service receives its
// dependencies as interfaces, so tests swap in fakes and the HTTP layer
// never appears below this line.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/auth"
	"github.com/hasan-mia/manufacturer-server/internal/model"
	"github.com/hasan-mia/manufacturer-server/internal/repository"
)

// UserService handles identity business logic: sign-in, profile updates,
// the admin role, and identity removal.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// SignInResult bundles what the sign-in route responds with: the upsert
// outcome and the freshly issued bearer token.
type SignInResult struct {
	Result model.UpsertResult `json:"result"`
	Token  string             `json:"token"`
}

// SignIn upserts the identity for email and issues its bearer token.
//
// Signing in twice with the same email yields one record — the second call
// refreshes the profile in place. The upsert never touches the role, and
// the token is issued regardless of whether the record was created or
// updated.
func (s *UserService) SignIn(ctx context.Context, email string, profile model.User) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	profile.Email = email
	profile.Role = "" // role is managed only through promotion

	result, err := s.users.Upsert(ctx, &profile)
	if err != nil {
		s.logger.Error("failed to upsert identity",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("signing in %s: %w", email, err)
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", email, err)
	}

	s.logger.Info("user signed in",
		slog.String("email", email),
		slog.Bool("created", result.Created),
	)

	return &SignInResult{Result: result, Token: token}, nil
}

// UpdateProfile upserts the profile fields of the identity keyed by email.
// Same write path as sign-in, minus the token.
func (s *UserService) UpdateProfile(ctx context.Context, email string, profile model.User) (model.UpsertResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.UpsertResult{}, apperror.ValidationFailed("email", "email is required")
	}

	profile.Email = email
	profile.Role = ""

	result, err := s.users.Upsert(ctx, &profile)
	if err != nil {
		s.logger.Error("failed to update profile",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return model.UpsertResult{}, fmt.Errorf("updating profile %s: %w", email, err)
	}

	return result, nil
}

// List returns all identities.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetByEmail returns one identity or apperror.ErrNotFound.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	return s.users.GetByEmail(ctx, email)
}

// PromoteAdmin grants the admin role to an existing identity. Unknown
// emails are NotFound: promotion never creates a record.
func (s *UserService) PromoteAdmin(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}

	if err := s.users.SetRole(ctx, email, model.RoleAdmin); err != nil {
		return err
	}

	s.logger.Info("user promoted to admin", slog.String("email", email))
	return nil
}

// IsAdmin reports whether the identity exists and holds the admin role.
// A missing record is simply "not admin", never an error.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking admin %s: %w", email, err)
	}
	return user.IsAdmin(), nil
}

// Delete removes an identity.
func (s *UserService) Delete(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}

	if err := s.users.Delete(ctx, email); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("email", email))
	return nil
}
