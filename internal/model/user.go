// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account. The JSON shape is the public "user
// dict" returned by the API: password hash, GitHub id, and timestamps are
// never serialized.
//
// GitHubID is zero for accounts registered with a password; PasswordHash is
// empty for accounts created through GitHub sign-in.
type User struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	OnboardingDone      bool      `json:"onboarding_done"`
	UsedInCollaborative bool      `json:"used_in_collaborative"`
	GitHubID            int64     `json:"-"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}
