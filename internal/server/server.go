package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/recipebook/apiserver/config"
	"github.com/recipebook/apiserver/internal/db"
	"github.com/recipebook/apiserver/internal/events"
	"github.com/recipebook/apiserver/internal/handlers"
	"github.com/recipebook/apiserver/internal/mq"
	"github.com/recipebook/apiserver/internal/services"
	"github.com/recipebook/apiserver/internal/session"
	"github.com/recipebook/apiserver/internal/storage"
	"github.com/recipebook/apiserver/internal/store"
)

// Dependencies are the collaborators the HTTP routes are built from.
// Objects and Events are optional.
type Dependencies struct {
	Users          services.UserRepository
	Recipes        services.RecipeRepository
	Health         handlers.Pinger
	Sessions       *session.Manager
	Objects        storage.ObjectStorage
	Events         services.EventPublisher
	PublicBaseURL  string
	AllowedOrigins []string
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	db         *sql.DB
	broker     mq.Backend
	objects    storage.ObjectStorage
}

// New constructs a Server backed by PostgreSQL and the configured
// storage and broker backends.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	sessions, err := session.NewManager(session.Options{
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
	})
	if err != nil {
		return nil, errors.New("SESSION_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("open object storage: %w", err)
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		if objects != nil {
			_ = objects.Close()
		}
		_ = dbConn.Close()
		return nil, fmt.Errorf("open message broker: %w", err)
	}

	router := NewRouter(Dependencies{
		Users:          store.NewUserRepository(dbConn),
		Recipes:        store.NewRecipeRepository(dbConn),
		Health:         dbConn,
		Sessions:       sessions,
		Objects:        objects,
		Events:         events.NewPublisher(broker, cfg.MQ.EventsChannel, slog.Default()),
		PublicBaseURL:  cfg.Storage.PublicBaseURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		db:         dbConn,
		broker:     broker,
		objects:    objects,
	}, nil
}

// NewRouter builds the chi router with middleware and every route.
// The avatar routes are only mounted when Objects is set.
func NewRouter(deps Dependencies) *chi.Mux {
	userService := services.NewUserService(deps.Users, deps.Events)
	recipeService := services.NewRecipeService(deps.Recipes, deps.Events)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)
	router.Get("/healthz", handlers.Healthz(deps.Health))
	handlers.AuthRouter(router, userService, deps.Sessions)
	router.Route("/recipes", func(r chi.Router) {
		handlers.RecipeRouter(r, recipeService, deps.Sessions.Require)
	})
	if deps.Objects != nil {
		avatarService := services.NewAvatarService(deps.Users, deps.Objects, deps.PublicBaseURL)
		handlers.AvatarRouter(router, avatarService, deps.Sessions.Require)
	}

	return router
}

// Run serves until ctx is done, then shuts down. It returns only after
// in-flight requests have drained (or shutdownTimeout elapsed) and the
// backing clients are closed.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.release()
		return err
	}
	return s.serve(ctx, ln, shutdownTimeout)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	slog.Info("server listening", "addr", ln.Addr().String())

	served := make(chan error, 1)
	go func() {
		served <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-served:
		// Serve failed before any shutdown was requested.
		s.release()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.Shutdown(shutdownCtx)
	if serveErr := <-served; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	return err
}

// Shutdown drains in-flight requests, then releases the database, broker
// and object storage.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.release()
	return err
}

func (s *Server) release() {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.objects != nil {
		_ = s.objects.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
