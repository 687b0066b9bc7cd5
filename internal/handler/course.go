package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/service"
)

// CourseHandler serves catalog reads: full listing, single lookup, random
// sampling, and recommendation resolution.
type CourseHandler struct {
	courses *service.CourseService
	logger  *slog.Logger
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(courses *service.CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, logger: logger}
}

type courseListResponse struct {
	Courses []model.Course `json:"courses"`
}

// HandleList returns the whole catalog.
//
// GET /courses
func (h *CourseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Courses retrieved successfully", courseListResponse{Courses: courses})
}

// HandleGetByID returns one course by its external catalog id.
//
// GET /courses/{id}
func (h *CourseHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	courseID, err := courseIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	course, err := h.courses.ByCourseID(r.Context(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Course retrieved successfully", course)
}

// HandleRandom returns up to n random courses per fixed subject, in subject
// order.
//
// GET /courses/random?n=2
func (h *CourseHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	n, err := nQueryParam(r, service.DefaultRandomPerSubject)
	if err != nil {
		writeError(w, err)
		return
	}

	courses, err := h.courses.Random(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Random courses retrieved successfully", courseListResponse{Courses: courses})
}

// HandleRecommendations resolves up to n recommended courses for a course.
//
// GET /courses/{id}/recommendations?n=5
func (h *CourseHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	courseID, err := courseIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	n, err := nQueryParam(r, service.DefaultRecommendations)
	if err != nil {
		writeError(w, err)
		return
	}

	courses, err := h.courses.Recommendations(r.Context(), courseID, n)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Recommended courses retrieved successfully", courseListResponse{Courses: courses})
}

func courseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	courseID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed("id", "Invalid payload: course id must be an integer")
	}
	return courseID, nil
}

func nQueryParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperror.ValidationFailed("n", "Invalid payload: n must be a positive integer")
	}
	return n, nil
}
