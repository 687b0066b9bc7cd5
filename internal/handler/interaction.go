package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/course-platform/internal/auth"
	"github.com/sakif/course-platform/internal/service"
)

// InteractionHandler logs and deletes user interactions with courses.
type InteractionHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewInteractionHandler creates an InteractionHandler.
func NewInteractionHandler(users *service.UserService, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{users: users, logger: logger}
}

type interactionRequest struct {
	CourseID        int64  `json:"course_id" validate:"required"`
	InteractionType string `json:"interaction_type" validate:"required,max=32"`
}

// HandleCreate logs an interaction for the authenticated user.
//
// POST /interactions (auth) {course_id, interaction_type}
func (h *InteractionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req interactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	interaction, err := h.users.AddInteraction(r.Context(), userID, req.CourseID, req.InteractionType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Interaction logged successfully", interaction)
}

// HandleDelete removes an interaction by id. Idempotent: an unknown id still
// reports success. The id is not checked against the requesting user.
//
// DELETE /interactions/{id} (auth)
func (h *InteractionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	message, err := h.users.DeleteInteraction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, message, nil)
}
