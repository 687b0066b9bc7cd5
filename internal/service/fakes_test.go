package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/auth"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/recommender"
	"github.com/sakif/course-platform/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory implementations of the repository interfaces. The *Err fields
// inject failures so service error paths can be exercised without a broken
// database.

type fakeUserRepo struct {
	users  map[string]*model.User
	prefs  []model.UserPreference
	nextID int

	createErr  error
	getErr     error
	onboardErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("Username already taken")
		}
		if u.Email == user.Email {
			return apperror.Conflict("Email already registered")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("fake-%d", f.nextID)
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (f *fakeUserRepo) GetPasswordHashByUsername(_ context.Context, username string) (string, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u.PasswordHash, nil
		}
	}
	return "", apperror.NotFound("User not found")
}

func (f *fakeUserRepo) UpsertGitHubUser(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.GitHubID == user.GitHubID {
			if user.Email != "" {
				u.Email = user.Email
			}
			*user = *u
			return nil
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("fake-%d", f.nextID)
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) CompleteOnboarding(_ context.Context, userID string, prefs model.PreferenceSet) error {
	if f.onboardErr != nil {
		return f.onboardErr
	}
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("User not found")
	}
	for category, values := range prefs {
		for _, value := range values {
			f.prefs = append(f.prefs, model.UserPreference{
				UserID:   userID,
				Category: category,
				Value:    value,
			})
		}
	}
	u.OnboardingDone = true
	return nil
}

func (f *fakeUserRepo) ResetOnboarding(_ context.Context, userID string) error {
	if f.onboardErr != nil {
		return f.onboardErr
	}
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("User not found")
	}
	kept := f.prefs[:0]
	for _, p := range f.prefs {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	f.prefs = kept
	u.OnboardingDone = false
	return nil
}

func (f *fakeUserRepo) GetPreferencesByUserID(_ context.Context, userID string) ([]model.UserPreference, error) {
	result := make([]model.UserPreference, 0)
	for _, p := range f.prefs {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

type fakeInteractionRepo struct {
	rows   []model.UserInteraction
	nextID int

	createErr error
	listErr   error
	deleteErr error
}

var _ repository.InteractionRepository = (*fakeInteractionRepo)(nil)

func (f *fakeInteractionRepo) CreateInteraction(_ context.Context, interaction *model.UserInteraction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	interaction.ID = fmt.Sprintf("inter-%d", f.nextID)
	f.rows = append(f.rows, *interaction)
	return nil
}

func (f *fakeInteractionRepo) GetInteractionsByUserID(_ context.Context, userID string) ([]model.UserInteraction, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]model.UserInteraction, 0)
	for _, row := range f.rows {
		if row.UserID == userID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (f *fakeInteractionRepo) DeleteInteraction(_ context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeCourseRepo struct {
	courses []model.Course

	listErr error
	getErr  error
}

var _ repository.CourseRepository = (*fakeCourseRepo)(nil)

func (f *fakeCourseRepo) ListCourses(_ context.Context, _ repository.ListOptions) ([]model.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Course(nil), f.courses...), nil
}

func (f *fakeCourseRepo) GetCourseByCourseID(_ context.Context, courseID int64) (*model.Course, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, c := range f.courses {
		if c.CourseID == courseID {
			result := c
			return &result, nil
		}
	}
	return nil, apperror.NotFound("Course not found")
}

// GetRandomCoursesBySubject is deterministic in the fake: it returns the
// first n courses of the subject in insertion order.
func (f *fakeCourseRepo) GetRandomCoursesBySubject(_ context.Context, subject string, n int) ([]model.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]model.Course, 0, n)
	for _, c := range f.courses {
		if c.Subject == subject && len(result) < n {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeCourseRepo) UpsertCourse(_ context.Context, course *model.Course) error {
	f.courses = append(f.courses, *course)
	return nil
}

type fakeLookup struct {
	ids []int64
	err error

	gotCourseID int64
	gotN        int
}

var _ recommender.Lookup = (*fakeLookup)(nil)

func (f *fakeLookup) Recommend(_ context.Context, courseID int64, n int) ([]int64, error) {
	f.gotCourseID = courseID
	f.gotN = n
	if f.err != nil {
		return nil, f.err
	}
	return f.ids, nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("unit-test-secret-0123456789", 0)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	return tokens
}

func newTestUserService(t *testing.T) (*UserService, *fakeUserRepo, *fakeInteractionRepo) {
	t.Helper()
	users := newFakeUserRepo()
	interactions := &fakeInteractionRepo{}
	svc := NewUserService(users, interactions, auth.NewPasswordServiceForTest(), testLogger())
	return svc, users, interactions
}

// registerTestUser creates an account through the service so the stored
// hash is a real bcrypt hash.
func registerTestUser(t *testing.T, svc *UserService, username string) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), username, username+"@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	return user
}
