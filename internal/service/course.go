package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/recommender"
	"github.com/sakif/course-platform/internal/repository"
)

// Subjects is the fixed subject set of the catalog, in the order random
// selections are concatenated.
var Subjects = []string{
	"Business Finance",
	"Graphics Design",
	"Web Development",
	"Musical Instruments",
}

// Defaults for the n query parameters.
const (
	DefaultRandomPerSubject = 2
	DefaultRecommendations  = 5
)

// CourseService serves catalog reads and recommendation lookups. The catalog
// itself is read-only here; rows arrive via cmd/seed.
type CourseService struct {
	courses repository.CourseRepository
	lookup  recommender.Lookup
	logger  *slog.Logger
}

// NewCourseService creates a CourseService with all required dependencies.
func NewCourseService(
	courses repository.CourseRepository,
	lookup recommender.Lookup,
	logger *slog.Logger,
) *CourseService {
	return &CourseService{
		courses: courses,
		lookup:  lookup,
		logger:  logger,
	}
}

// All returns the whole catalog ordered by course id.
func (s *CourseService) All(ctx context.Context) ([]model.Course, error) {
	courses, err := s.courses.ListCourses(ctx, repository.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// ByCourseID returns one course by its external catalog id.
func (s *CourseService) ByCourseID(ctx context.Context, courseID int64) (*model.Course, error) {
	course, err := s.courses.GetCourseByCourseID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("fetching course %d: %w", courseID, err)
	}
	return course, nil
}

// Random draws up to n courses per fixed subject, uniformly at random
// without replacement within each subject, concatenated in subject order.
// Subjects holding fewer than n courses contribute all they have. A
// non-positive n selects the default of 2.
func (s *CourseService) Random(ctx context.Context, n int) ([]model.Course, error) {
	if n <= 0 {
		n = DefaultRandomPerSubject
	}

	result := make([]model.Course, 0, n*len(Subjects))
	for _, subject := range Subjects {
		courses, err := s.courses.GetRandomCoursesBySubject(ctx, subject, n)
		if err != nil {
			return nil, fmt.Errorf("selecting random courses for %q: %w", subject, err)
		}
		result = append(result, courses...)
	}

	return result, nil
}

// Recommendations resolves up to n recommended courses for a course. The
// lookup's ordering is preserved; recommended ids missing from the catalog
// are skipped silently. A non-positive n selects the default of 5.
func (s *CourseService) Recommendations(ctx context.Context, courseID int64, n int) ([]model.Course, error) {
	if n <= 0 {
		n = DefaultRecommendations
	}

	ids, err := s.lookup.Recommend(ctx, courseID, n)
	if err != nil {
		return nil, fmt.Errorf("looking up recommendations for %d: %w", courseID, err)
	}

	result := make([]model.Course, 0, len(ids))
	for _, id := range ids {
		course, err := s.courses.GetCourseByCourseID(ctx, id)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				s.logger.Warn("recommended course missing from catalog",
					slog.Int64("courseID", id),
				)
				continue
			}
			return nil, fmt.Errorf("resolving recommended course %d: %w", id, err)
		}
		result = append(result, *course)
	}

	return result, nil
}
