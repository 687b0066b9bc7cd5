package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/auth"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/service"
)

// OnboardingHandler serves the one-time preference capture and its reset.
type OnboardingHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewOnboardingHandler creates an OnboardingHandler.
func NewOnboardingHandler(users *service.UserService, logger *slog.Logger) *OnboardingHandler {
	return &OnboardingHandler{users: users, logger: logger}
}

// onboardingRequest wraps the category→values preference sets. The
// categories are open ("subject" and "level" in practice), so the structural
// rules are checked by hand rather than with tags.
type onboardingRequest struct {
	Preferences map[string][]string `json:"preferences"`
}

type onboardingResponse struct {
	User        *model.User         `json:"user"`
	Preferences model.PreferenceSet `json:"preferences"`
}

func (req *onboardingRequest) validate() error {
	if len(req.Preferences) == 0 {
		return apperror.ValidationFailed("preferences",
			"Invalid payload: preferences must contain at least one category")
	}
	for category, values := range req.Preferences {
		if strings.TrimSpace(category) == "" {
			return apperror.ValidationFailed("preferences",
				"Invalid payload: preference categories must not be empty")
		}
		if len(values) == 0 {
			return apperror.ValidationFailed("preferences",
				"Invalid payload: preference category "+category+" has no values")
		}
		for _, value := range values {
			if strings.TrimSpace(value) == "" {
				return apperror.ValidationFailed("preferences",
					"Invalid payload: preference values must not be empty")
			}
		}
	}
	return nil
}

// HandleComplete persists the submitted preferences and marks the user
// onboarded. Only allowed while onboarding_done is false.
//
// POST /onboarding (auth) {preferences: {subject: [...], level: [...]}}
func (h *OnboardingHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req onboardingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.CompleteOnboarding(r.Context(), userID, model.PreferenceSet(req.Preferences))
	if err != nil {
		writeError(w, err)
		return
	}

	prefs, err := h.users.Preferences(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Onboarding completed successfully", onboardingResponse{
		User:        user,
		Preferences: prefs,
	})
}

// HandleReset removes the stored preferences and clears the onboarding flag.
// Only allowed while onboarding_done is true.
//
// DELETE /onboarding (auth)
func (h *OnboardingHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.users.ResetOnboarding(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	prefs, err := h.users.Preferences(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Onboarding reset successfully", onboardingResponse{
		User:        user,
		Preferences: prefs,
	})
}
