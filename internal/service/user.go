// Package service contains the business logic layer: validation, state
// preconditions, and orchestration between repositories and the auth
// utilities. Services accept primitives and return domain errors from
// internal/apperror; they have no knowledge of HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/auth"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/repository"
)

// MaxInteractionTypeLength bounds the interaction_type column. The set of
// types is open, so the length check is the only constraint.
const MaxInteractionTypeLength = 32

// UserService handles accounts, onboarding preferences, and interaction
// logging.
type UserService struct {
	users        repository.UserRepository
	interactions repository.InteractionRepository
	passwords    *auth.PasswordService
	logger       *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(
	users repository.UserRepository,
	interactions repository.InteractionRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:        users,
		interactions: interactions,
		passwords:    passwords,
		logger:       logger,
	}
}

// Profile is the aggregated account view returned by GET /me.
type Profile struct {
	User         *model.User
	Preferences  model.PreferenceSet
	Interactions []model.UserInteraction
}

// Register creates a new password account. The repository enforces username
// and email uniqueness and reports conflicts as apperror.ErrConflict.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("registering user %q: %w", username, err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("registering user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// GetByID returns the user for the given internal id.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", id, err)
	}
	return user, nil
}

// GetByUsername returns the user for the given username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching user %q: %w", username, err)
	}
	return user, nil
}

// PasswordHashByUsername returns the stored password hash for a username.
// The hash is empty for accounts created through GitHub sign-in.
func (s *UserService) PasswordHashByUsername(ctx context.Context, username string) (string, error) {
	hash, err := s.users.GetPasswordHashByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("fetching password hash for %q: %w", username, err)
	}
	return hash, nil
}

// CompleteOnboarding stores the submitted preference sets and marks the user
// onboarded, in one transaction. Fails with apperror.ErrStateViolation when
// onboarding was already completed.
func (s *UserService) CompleteOnboarding(ctx context.Context, userID string, prefs model.PreferenceSet) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("completing onboarding for %s: %w", userID, err)
	}
	if user.OnboardingDone {
		return nil, apperror.StateViolation("Onboarding already completed")
	}

	if err := s.users.CompleteOnboarding(ctx, userID, prefs); err != nil {
		return nil, fmt.Errorf("completing onboarding for %s: %w", userID, err)
	}

	s.logger.Info("onboarding completed",
		slog.String("userID", userID),
		slog.Int("categories", len(prefs)),
	)

	user.OnboardingDone = true
	return user, nil
}

// ResetOnboarding removes the user's preference rows and clears the
// onboarding flag. Fails with apperror.ErrStateViolation when onboarding was
// never completed.
func (s *UserService) ResetOnboarding(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resetting onboarding for %s: %w", userID, err)
	}
	if !user.OnboardingDone {
		return nil, apperror.StateViolation("Onboarding has not been completed")
	}

	if err := s.users.ResetOnboarding(ctx, userID); err != nil {
		return nil, fmt.Errorf("resetting onboarding for %s: %w", userID, err)
	}

	s.logger.Info("onboarding reset", slog.String("userID", userID))

	user.OnboardingDone = false
	return user, nil
}

// Preferences returns the user's onboarding answers grouped by category.
func (s *UserService) Preferences(ctx context.Context, userID string) (model.PreferenceSet, error) {
	rows, err := s.users.GetPreferencesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching preferences for %s: %w", userID, err)
	}
	return model.ToSet(rows), nil
}

// AddInteraction logs a user action against a course. The course id is not
// checked against the catalog; interactions may reference courses that were
// never imported.
func (s *UserService) AddInteraction(ctx context.Context, userID string, courseID int64, interactionType string) (*model.UserInteraction, error) {
	interactionType = strings.TrimSpace(interactionType)
	if interactionType == "" {
		return nil, apperror.ValidationFailed("interaction_type", "interaction_type is required")
	}
	if len(interactionType) > MaxInteractionTypeLength {
		return nil, apperror.ValidationFailed("interaction_type",
			fmt.Sprintf("interaction_type must be %d characters or fewer", MaxInteractionTypeLength))
	}

	// user_id is a real foreign key, so the row must exist before insert
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("logging interaction for %s: %w", userID, err)
	}

	interaction := &model.UserInteraction{
		UserID:   userID,
		CourseID: courseID,
		Type:     interactionType,
	}

	if err := s.interactions.CreateInteraction(ctx, interaction); err != nil {
		return nil, fmt.Errorf("logging interaction for %s: %w", userID, err)
	}

	s.logger.Info("interaction logged",
		slog.String("userID", userID),
		slog.Int64("courseID", courseID),
		slog.String("type", interactionType),
	)

	return interaction, nil
}

// Interactions returns the user's logged interactions in creation order.
func (s *UserService) Interactions(ctx context.Context, userID string) ([]model.UserInteraction, error) {
	interactions, err := s.interactions.GetInteractionsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing interactions for %s: %w", userID, err)
	}
	return interactions, nil
}

// DeleteInteraction removes an interaction by id and returns the API
// message. The operation is idempotent: deleting an unknown id still
// succeeds, it is only logged. The caller's ownership of the interaction is
// not verified.
func (s *UserService) DeleteInteraction(ctx context.Context, id string) (string, error) {
	deleted, err := s.interactions.DeleteInteraction(ctx, id)
	if err != nil {
		return "", fmt.Errorf("deleting interaction %s: %w", id, err)
	}

	if !deleted {
		s.logger.Warn("delete of unknown interaction", slog.String("interactionID", id))
	} else {
		s.logger.Info("interaction deleted", slog.String("interactionID", id))
	}

	return "Interaction deleted successfully", nil
}

// GetProfile assembles the /me view: the user row, grouped preferences, and
// interactions. NotFound when the user behind a still-valid token is gone.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching profile for %s: %w", userID, err)
	}

	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	interactions, err := s.Interactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:         user,
		Preferences:  prefs,
		Interactions: interactions,
	}, nil
}
