package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/auth"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/repository"
)

// AuthService handles login: password credentials and the GitHub OAuth
// callback. Both paths end in the same issued access token.
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

// AuthResult bundles the authenticated user with the issued access token so
// the handler can set the cookie and shape the response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login verifies a username/password pair and issues an access token.
//
// The hash lookup happens before the password check, so an unknown username
// surfaces as NotFound rather than Unauthorized. That ordering is part of
// the API contract (404 "User not found" vs 401 "Invalid password").
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	hash, err := s.users.GetPasswordHashByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("logging in %q: %w", username, err)
	}

	// GitHub-only accounts store an empty hash and cannot log in with a
	// password.
	if hash == "" {
		return nil, apperror.Unauthorized("Invalid password")
	}

	if err := s.passwords.Verify(hash, password); err != nil {
		s.logger.Warn("failed login attempt", slog.String("username", username))
		return nil, apperror.Unauthorized("Invalid password")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("logging in %q: %w", username, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("logging in %q: %w", username, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// LoginWithGitHub completes a GitHub sign-in after the handler has exchanged
// the OAuth code for a profile. The user is upserted keyed by GitHub account
// id; when the GitHub login is already taken by a different local account,
// the username falls back to "<login>-<githubID>".
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("github login: profile must not be nil")
	}

	username := ghUser.Login
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err == nil && existing.GitHubID != ghUser.ID {
		username = fmt.Sprintf("%s-%d", ghUser.Login, ghUser.ID)
	}

	user := &model.User{
		GitHubID: ghUser.ID,
		Username: username,
		Email:    ghUser.Email,
	}

	if err := s.users.UpsertGitHubUser(ctx, user); err != nil {
		return nil, fmt.Errorf("github login (githubID=%d): %w", ghUser.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("github login (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user logged in via GitHub",
		slog.String("userID", user.ID),
		slog.Int64("githubID", ghUser.ID),
	)

	return &AuthResult{User: user, Token: token}, nil
}
