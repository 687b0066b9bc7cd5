package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. Username and email uniqueness is checked
// up front so the caller gets a field-specific conflict; the UNIQUE
// constraints remain the backstop for the race between check and insert.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, user.Username,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("sqlite: checking username %q: %w", user.Username, err)
	}
	if count > 0 {
		return apperror.Conflict("Username already taken")
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, user.Email,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("sqlite: checking email %q: %w", user.Email, err)
	}
	if count > 0 {
		return apperror.Conflict("Email already registered")
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, onboarding_done,
		                    used_in_collaborative, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.OnboardingDone,
		user.UsedInCollaborative,
		user.GitHubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("User already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by internal id. Returns apperror.ErrNotFound
// when no such user exists.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, onboarding_done,
		        used_in_collaborative, github_id, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.OnboardingDone,
		&u.UsedInCollaborative,
		&u.GitHubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, onboarding_done,
		        used_in_collaborative, github_id, created_at, updated_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.OnboardingDone,
		&u.UsedInCollaborative,
		&u.GitHubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("sqlite: getting user by username %q: %w", username, err)
	}

	return &u, nil
}

// GetPasswordHashByUsername retrieves just the stored password hash for a
// username, the first step of a password login.
func (db *DB) GetPasswordHashByUsername(ctx context.Context, username string) (string, error) {
	var hash string

	err := db.conn.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("User not found")
		}
		return "", fmt.Errorf("sqlite: getting password hash for %q: %w", username, err)
	}

	return hash, nil
}

// UpsertGitHubUser inserts or refreshes a user keyed by GitHub account id.
// An existing account keeps its internal id, username, and onboarding state;
// only the email is refreshed from the GitHub profile. The passed user is
// overwritten with the canonical row either way.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		email := user.Email
		now := time.Now()

		if email != "" {
			_, err = db.conn.ExecContext(ctx,
				`UPDATE users SET email = ?, updated_at = ? WHERE id = ?`,
				email, now, existingID,
			)
			if err != nil {
				return fmt.Errorf("sqlite: updating user %s: %w", existingID, err)
			}
		}

		existing, err := db.GetUserByID(ctx, existingID)
		if err != nil {
			return err
		}
		*user = *existing
		return nil
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, onboarding_done,
		                    used_in_collaborative, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.OnboardingDone,
		user.UsedInCollaborative,
		user.GitHubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}

	return nil
}

// CompleteOnboarding writes the preference rows and sets onboarding_done in
// one transaction. Categories are written in sorted order and values in
// submission order, so reads group back into the submitted sets.
func (db *DB) CompleteOnboarding(ctx context.Context, userID string, prefs model.PreferenceSet) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning onboarding tx: %w", err)
	}
	defer tx.Rollback()

	categories := make([]string, 0, len(prefs))
	for category := range prefs {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	now := time.Now()
	for _, category := range categories {
		for _, value := range prefs[category] {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO user_preferences (id, user_id, category, value, created_at)
				 VALUES (?, ?, ?, ?, ?)`,
				xid.New().String(), userID, category, value, now,
			)
			if err != nil {
				return fmt.Errorf("sqlite: inserting preference %s/%s: %w", category, value, err)
			}
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET onboarding_done = 1, updated_at = ? WHERE id = ?`,
		now, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking onboarding done for %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("User not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing onboarding tx: %w", err)
	}

	return nil
}

// ResetOnboarding deletes the user's preference rows and clears
// onboarding_done in one transaction.
func (db *DB) ResetOnboarding(ctx context.Context, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning onboarding reset tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM user_preferences WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting preferences for %s: %w", userID, err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET onboarding_done = 0, updated_at = ? WHERE id = ?`,
		time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: clearing onboarding for %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("User not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing onboarding reset tx: %w", err)
	}

	return nil
}

// GetPreferencesByUserID lists a user's preference rows in creation order.
func (db *DB) GetPreferencesByUserID(ctx context.Context, userID string) ([]model.UserPreference, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, category, value, created_at
		 FROM user_preferences
		 WHERE user_id = ?
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing preferences for %s: %w", userID, err)
	}
	defer rows.Close()

	prefs := make([]model.UserPreference, 0)

	for rows.Next() {
		var p model.UserPreference
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Category, &p.Value, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning preference row: %w", err)
		}
		prefs = append(prefs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating preferences: %w", err)
	}

	return prefs, nil
}
