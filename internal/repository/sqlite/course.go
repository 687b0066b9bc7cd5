package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/repository"
)

// compile-time check that *DB implements repository.CourseRepository
var _ repository.CourseRepository = (*DB)(nil)

const courseColumns = `course_id, title, url, is_paid, price, num_subscribers,
	num_reviews, num_lectures, level, content_duration, published_at, subject`

// ListCourses returns catalog rows ordered by course id. A zero or negative
// Limit returns the whole catalog, which is the default for the listing
// endpoint; a positive Limit pages with Offset.
func (db *DB) ListCourses(ctx context.Context, opts repository.ListOptions) ([]model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY course_id`
	args := []any{}

	if opts.Limit > 0 {
		offset := opts.Offset
		if offset < 0 {
			offset = 0
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing courses: %w", err)
	}
	defer rows.Close()

	return scanCourses(rows)
}

// GetCourseByCourseID retrieves one catalog row by its external course id.
func (db *DB) GetCourseByCourseID(ctx context.Context, courseID int64) (*model.Course, error) {
	var c model.Course

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE course_id = ?`,
		courseID,
	).Scan(
		&c.CourseID,
		&c.Title,
		&c.URL,
		&c.IsPaid,
		&c.Price,
		&c.NumSubscribers,
		&c.NumReviews,
		&c.NumLectures,
		&c.Level,
		&c.ContentDuration,
		&c.PublishedAt,
		&c.Subject,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Course not found")
		}
		return nil, fmt.Errorf("sqlite: getting course %d: %w", courseID, err)
	}

	return &c, nil
}

// GetRandomCoursesBySubject selects up to n rows of one subject uniformly at
// random, without replacement.
func (db *DB) GetRandomCoursesBySubject(ctx context.Context, subject string, n int) ([]model.Course, error) {
	if n <= 0 {
		return []model.Course{}, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses
		 WHERE subject = ?
		 ORDER BY RANDOM()
		 LIMIT ?`,
		subject, n,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: selecting random courses for %q: %w", subject, err)
	}
	defer rows.Close()

	return scanCourses(rows)
}

// UpsertCourse inserts a catalog row or refreshes it in place when the
// course id is already present. Used by the seed importer.
func (db *DB) UpsertCourse(ctx context.Context, course *model.Course) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO courses (course_id, title, url, is_paid, price, num_subscribers,
		                      num_reviews, num_lectures, level, content_duration,
		                      published_at, subject)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(course_id) DO UPDATE SET
		     title = excluded.title,
		     url = excluded.url,
		     is_paid = excluded.is_paid,
		     price = excluded.price,
		     num_subscribers = excluded.num_subscribers,
		     num_reviews = excluded.num_reviews,
		     num_lectures = excluded.num_lectures,
		     level = excluded.level,
		     content_duration = excluded.content_duration,
		     published_at = excluded.published_at,
		     subject = excluded.subject`,
		course.CourseID,
		course.Title,
		course.URL,
		course.IsPaid,
		course.Price,
		course.NumSubscribers,
		course.NumReviews,
		course.NumLectures,
		course.Level,
		course.ContentDuration,
		course.PublishedAt,
		course.Subject,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting course %d: %w", course.CourseID, err)
	}

	return nil
}

func scanCourses(rows *sql.Rows) ([]model.Course, error) {
	courses := make([]model.Course, 0)

	for rows.Next() {
		var c model.Course
		if err := rows.Scan(
			&c.CourseID,
			&c.Title,
			&c.URL,
			&c.IsPaid,
			&c.Price,
			&c.NumSubscribers,
			&c.NumReviews,
			&c.NumLectures,
			&c.Level,
			&c.ContentDuration,
			&c.PublishedAt,
			&c.Subject,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning course row: %w", err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating courses: %w", err)
	}

	return courses, nil
}
