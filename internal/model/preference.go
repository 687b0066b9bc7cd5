package model

import "time"

// UserPreference is a single onboarding answer: one row per (user, category,
// value). Rows are written as a set at onboarding completion and removed as a
// set at onboarding reset.
type UserPreference struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Category  string    `json:"category"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// PreferenceSet is the grouped wire shape of a user's preferences, keyed by
// category ("subject", "level") with the answer values in submission order.
type PreferenceSet map[string][]string

// ToSet groups preference rows into a PreferenceSet, preserving row order
// within each category.
func ToSet(prefs []UserPreference) PreferenceSet {
	set := make(PreferenceSet)
	for _, p := range prefs {
		set[p.Category] = append(set[p.Category], p.Value)
	}
	return set
}
