package model

import "time"

// Known interaction types. The set is open: the API accepts other values,
// these are the ones the platform itself emits.
const (
	InteractionView     = "view"
	InteractionEnrolled = "enrolled"
	InteractionComplete = "complete"
	InteractionBuy      = "buy"
)

// UserInteraction is a logged user action against a course. CourseID refers
// to the external catalog id and is not constrained to an existing catalog
// row, so interactions survive catalog reloads.
type UserInteraction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourseID  int64     `json:"course_id"`
	Type      string    `json:"interaction_type"`
	CreatedAt time.Time `json:"created_at"`
}
