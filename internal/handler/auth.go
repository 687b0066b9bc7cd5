package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/auth"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/service"
)

// AuthHandler serves registration, login, the /me profile view, and the
// GitHub OAuth flow.
type AuthHandler struct {
	users  *service.UserService
	auths  *service.AuthService
	github *auth.GitHubProvider // nil when GitHub sign-in is not configured
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil; the OAuth routes
// are only registered when a provider is configured.
func NewAuthHandler(
	users *service.UserService,
	auths *service.AuthService,
	github *auth.GitHubProvider,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:  users,
		auths:  auths,
		github: github,
		logger: logger,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// loginRequest carries no validate tags: an empty or unknown username
// resolves through the service to 404, not 400.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginUser is the trimmed user shape inside the login response.
type loginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	User        loginUser `json:"user"`
}

// interactionView is an interaction as shown in the /me profile: the owner
// is implied by the route, so user_id is stripped.
type interactionView struct {
	ID        string    `json:"id"`
	CourseID  int64     `json:"course_id"`
	Type      string    `json:"interaction_type"`
	CreatedAt time.Time `json:"created_at"`
}

type meResponse struct {
	User         *model.User         `json:"user"`
	Preferences  model.PreferenceSet `json:"preferences"`
	Interactions []interactionView   `json:"interactions"`
}

// HandleRegister creates a password account.
//
// POST /register {username, email, password}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully", user)
}

// HandleLogin verifies credentials and returns an access token.
//
// POST /login {username, password}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", loginResponse{
		AccessToken: result.Token,
		User: loginUser{
			ID:       result.User.ID,
			Username: result.User.Username,
			Email:    result.User.Email,
		},
	})
}

// HandleMe returns the authenticated user's profile: the user dict, grouped
// preferences, and interactions.
//
// GET /me (auth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]interactionView, 0, len(profile.Interactions))
	for _, in := range profile.Interactions {
		views = append(views, interactionView{
			ID:        in.ID,
			CourseID:  in.CourseID,
			Type:      in.Type,
			CreatedAt: in.CreatedAt,
		})
	}

	writeSuccess(w, http.StatusOK, "User retrieved successfully", meResponse{
		User:         profile.User,
		Preferences:  profile.Preferences,
		Interactions: views,
	})
}

// HandleGitHubLogin redirects the browser to GitHub's consent page. The
// random state lands in a short-lived cookie and is checked on callback.
//
// GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow: state check, code
// exchange, user upsert, token issue. Browser clients get the token as an
// HttpOnly cookie alongside the JSON response.
//
// GET /auth/github/callback?code=...&state=...
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" ||
		r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback with bad state")
		writeError(w, apperror.ValidationFailed("state", "Invalid OAuth state"))
		return
	}

	// single-use
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "Missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github code exchange failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	result, err := h.auths.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int((72 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, http.StatusOK, "Login successful", loginResponse{
		AccessToken: result.Token,
		User: loginUser{
			ID:       result.User.ID,
			Username: result.User.Username,
			Email:    result.User.Email,
		},
	})
}
