package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/sakif/course-platform/internal/auth"
	"github.com/sakif/course-platform/internal/handler"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/repository/sqlite"
	"github.com/sakif/course-platform/internal/service"
)

// fakeLookup stands in for the recommendation service.
type fakeLookup struct {
	ids []int64
	err error
}

func (f *fakeLookup) Recommend(_ context.Context, _ int64, n int) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n < len(f.ids) {
		return f.ids[:n], nil
	}
	return f.ids, nil
}

// testAPI wires a :memory: database through the real services into the
// same routes the server registers, minus the OAuth routes (no GitHub in
// tests).
type testAPI struct {
	router *chi.Mux
	db     *sqlite.DB
	tokens *auth.TokenService
	lookup *fakeLookup
	users  *service.UserService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", 0)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest()
	lookup := &fakeLookup{}

	userService := service.NewUserService(db, db, passwords, logger)
	authService := service.NewAuthService(db, tokens, passwords, logger)
	courseService := service.NewCourseService(db, lookup, logger)

	authHandler := handler.NewAuthHandler(userService, authService, nil, logger)
	onboardingHandler := handler.NewOnboardingHandler(userService, logger)
	interactionHandler := handler.NewInteractionHandler(userService, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)

	router := chi.NewRouter()
	router.Get("/health", handler.HandleHealth)
	router.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			5,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(handler.RateLimited),
		))
		r.Post("/register", authHandler.HandleRegister)
	})
	router.Post("/login", authHandler.HandleLogin)
	router.Route("/courses", func(r chi.Router) {
		r.Get("/", courseHandler.HandleList)
		r.Get("/random", courseHandler.HandleRandom)
		r.Get("/{id}", courseHandler.HandleGetByID)
		r.Get("/{id}/recommendations", courseHandler.HandleRecommendations)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/me", authHandler.HandleMe)
		r.Post("/onboarding", onboardingHandler.HandleComplete)
		r.Delete("/onboarding", onboardingHandler.HandleReset)
		r.Post("/interactions", interactionHandler.HandleCreate)
		r.Delete("/interactions/{id}", interactionHandler.HandleDelete)
	})

	return &testAPI{
		router: router,
		db:     db,
		tokens: tokens,
		lookup: lookup,
		users:  userService,
	}
}

// do issues a request against the router. A non-empty token goes into the
// Authorization header.
func (api *testAPI) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	return rr
}

// envelope mirrors the wire shape with the data left raw for per-test
// decoding.
type testEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v (body %q)", err, rr.Body.String())
	}
	return env
}

// registerAndLogin creates an account over the API and returns its token
// and user id.
func (api *testAPI) registerAndLogin(t *testing.T, username string) (token, userID string) {
	t.Helper()

	rr := api.do(t, http.MethodPost, "/register",
		`{"username":"`+username+`","email":"`+username+`@example.com","password":"hunter2hunter2"}`, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = api.do(t, http.MethodPost, "/login",
		`{"username":"`+username+`","password":"hunter2hunter2"}`, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rr.Code, rr.Body.String())
	}

	env := decodeEnvelope(t, rr)
	var data struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode login data: %v", err)
	}
	return data.AccessToken, data.User.ID
}

// seedCourse inserts a catalog row directly.
func (api *testAPI) seedCourse(t *testing.T, courseID int64, subject, title string) {
	t.Helper()
	err := api.db.UpsertCourse(context.Background(), &model.Course{
		CourseID:    courseID,
		Title:       title,
		Subject:     subject,
		PublishedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed course %d: %v", courseID, err)
	}
}
