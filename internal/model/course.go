package model

import "time"

// Course is one row of the course catalog. CourseID is the external catalog
// id and the lookup key for every course operation; the catalog is read-only
// from the API's perspective and populated by cmd/seed.
type Course struct {
	CourseID        int64     `json:"course_id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	IsPaid          bool      `json:"is_paid"`
	Price           float64   `json:"price"`
	NumSubscribers  int64     `json:"num_subscribers"`
	NumReviews      int64     `json:"num_reviews"`
	NumLectures     int64     `json:"num_lectures"`
	Level           string    `json:"level"`
	ContentDuration float64   `json:"content_duration"`
	PublishedAt     time.Time `json:"published_at"`
	Subject         string    `json:"subject"`
}
