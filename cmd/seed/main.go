// Command seed imports a course-catalog CSV into the database, upserting
// rows keyed on course_id. Columns are resolved by header name, so column
// order in the export does not matter. Malformed rows are skipped with a
// log line.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/repository/sqlite"
)

var requiredColumns = []string{
	"course_id",
	"course_title",
	"url",
	"is_paid",
	"price",
	"num_subscribers",
	"num_reviews",
	"num_lectures",
	"level",
	"content_duration",
	"published_timestamp",
	"subject",
}

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", envOr("DB_PATH", "data/platform.db"), "path to the SQLite database")
	file := flag.String("file", "", "path to the course catalog CSV")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *file == "" {
		logger.Error("-file is required")
		os.Exit(1)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("failed to open catalog file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	imported, skipped, err := importCatalog(context.Background(), db, f, logger)
	if err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("catalog import finished",
		slog.Int("imported", imported),
		slog.Int("skipped", skipped),
	)
}

func importCatalog(ctx context.Context, db *sqlite.DB, r io.Reader, logger *slog.Logger) (imported, skipped int, err error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return 0, 0, fmt.Errorf("catalog is missing column %q", name)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("skipping unreadable row", slog.Int("line", line), slog.String("error", err.Error()))
			skipped++
			continue
		}

		course, err := parseCourse(record, index)
		if err != nil {
			logger.Warn("skipping malformed row", slog.Int("line", line), slog.String("error", err.Error()))
			skipped++
			continue
		}

		if err := db.UpsertCourse(ctx, course); err != nil {
			logger.Warn("skipping row that failed to store",
				slog.Int("line", line),
				slog.Int64("courseID", course.CourseID),
				slog.String("error", err.Error()),
			)
			skipped++
			continue
		}
		imported++
	}

	return imported, skipped, nil
}

func parseCourse(record []string, index map[string]int) (*model.Course, error) {
	field := func(name string) string { return record[index[name]] }

	courseID, err := strconv.ParseInt(field("course_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("course_id: %w", err)
	}

	isPaid, err := strconv.ParseBool(field("is_paid"))
	if err != nil {
		return nil, fmt.Errorf("is_paid: %w", err)
	}

	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	subscribers, err := strconv.ParseInt(field("num_subscribers"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("num_subscribers: %w", err)
	}

	reviews, err := strconv.ParseInt(field("num_reviews"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("num_reviews: %w", err)
	}

	lectures, err := strconv.ParseInt(field("num_lectures"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("num_lectures: %w", err)
	}

	duration, err := strconv.ParseFloat(field("content_duration"), 64)
	if err != nil {
		return nil, fmt.Errorf("content_duration: %w", err)
	}

	publishedAt, err := time.Parse(time.RFC3339, field("published_timestamp"))
	if err != nil {
		return nil, fmt.Errorf("published_timestamp: %w", err)
	}

	return &model.Course{
		CourseID:        courseID,
		Title:           field("course_title"),
		URL:             field("url"),
		IsPaid:          isPaid,
		Price:           price,
		NumSubscribers:  subscribers,
		NumReviews:      reviews,
		NumLectures:     lectures,
		Level:           field("level"),
		ContentDuration: duration,
		PublishedAt:     publishedAt,
		Subject:         field("subject"),
	}, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
