// Package server is the composition root: it wires the database, services,
// handlers, and middleware into a chi router and runs the HTTP server with
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/sakif/course-platform/internal/auth"
	"github.com/sakif/course-platform/internal/handler"
	"github.com/sakif/course-platform/internal/middleware"
	"github.com/sakif/course-platform/internal/recommender"
	sqliteRepo "github.com/sakif/course-platform/internal/repository/sqlite"
	"github.com/sakif/course-platform/internal/service"
)

// registration is rate limited per client IP
const (
	registerLimit  = 5
	registerWindow = time.Minute
)

// Config holds everything the server needs to start. Values come from the
// environment in cmd/server.
type Config struct {
	Port           int
	DBPath         string
	JWTSecret      string
	TokenTTL       time.Duration // zero selects the 3-day default
	RecommenderURL string

	// GitHub sign-in is optional; the OAuth routes are only registered
	// when a client id is configured.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURL  string
}

// Server owns the router and the database connection. The connection is
// closed during shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// repositories → services → handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubRedirectURL,
		)
	}

	lookup := recommender.NewClient(s.config.RecommenderURL)

	userService := service.NewUserService(s.db, s.db, passwords, s.logger)
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	courseService := service.NewCourseService(s.db, lookup, s.logger)

	authHandler := handler.NewAuthHandler(userService, authService, github, s.logger)
	onboardingHandler := handler.NewOnboardingHandler(userService, s.logger)
	interactionHandler := handler.NewInteractionHandler(userService, s.logger)
	courseHandler := handler.NewCourseHandler(courseService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Get("/health", handler.HandleHealth)

	// registration gets its own group for the rate limiter
	s.router.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			registerLimit,
			registerWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(handler.RateLimited),
		))
		r.Post("/register", authHandler.HandleRegister)
	})

	s.router.Post("/login", authHandler.HandleLogin)

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	s.router.Route("/courses", func(r chi.Router) {
		r.Get("/", courseHandler.HandleList)
		r.Get("/random", courseHandler.HandleRandom)
		r.Get("/{id}", courseHandler.HandleGetByID)
		r.Get("/{id}/recommendations", courseHandler.HandleRecommendations)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)
		r.Post("/onboarding", onboardingHandler.HandleComplete)
		r.Delete("/onboarding", onboardingHandler.HandleReset)
		r.Post("/interactions", interactionHandler.HandleCreate)
		r.Delete("/interactions/{id}", interactionHandler.HandleDelete)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("recommender", s.config.RecommenderURL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
