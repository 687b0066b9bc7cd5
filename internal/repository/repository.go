package repository

import (
	"context"

	"github.com/sakif/course-platform/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetPasswordHashByUsername(ctx context.Context, username string) (string, error)
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	CompleteOnboarding(ctx context.Context, userID string, prefs model.PreferenceSet) error
	ResetOnboarding(ctx context.Context, userID string) error
	GetPreferencesByUserID(ctx context.Context, userID string) ([]model.UserPreference, error)
}

type InteractionRepository interface {
	CreateInteraction(ctx context.Context, interaction *model.UserInteraction) error
	GetInteractionsByUserID(ctx context.Context, userID string) ([]model.UserInteraction, error)
	DeleteInteraction(ctx context.Context, id string) (bool, error)
}

type CourseRepository interface {
	ListCourses(ctx context.Context, opts ListOptions) ([]model.Course, error)
	GetCourseByCourseID(ctx context.Context, courseID int64) (*model.Course, error)
	GetRandomCoursesBySubject(ctx context.Context, subject string, n int) ([]model.Course, error)
	UpsertCourse(ctx context.Context, course *model.Course) error
}
