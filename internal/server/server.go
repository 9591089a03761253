package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/minitodo/apiserver/config"
	"github.com/minitodo/apiserver/internal/handlers"
	"github.com/minitodo/apiserver/internal/logging"
	"github.com/minitodo/apiserver/internal/notify"
	"github.com/minitodo/apiserver/internal/security"
	"github.com/minitodo/apiserver/internal/services"
	"github.com/minitodo/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	notifier   *notify.Async
	logger     *zap.Logger
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ids, err := security.NewIDGenerator(cfg.IDScheme, cfg.IDNode)
	if err != nil {
		return nil, err
	}

	notifier, err := notify.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	users := store.NewUserRepository()
	deps := services.Deps{
		Hasher:   security.NewPasswordHasher(),
		Otp:      security.NewOtpGenerator(),
		IDs:      ids,
		Notifier: notifier,
		Logger:   logger,
	}
	accountService := services.NewAccountService(users, store.NewOtpRepository(), deps, cfg.Accounts.RejectDuplicateSignup)
	eventService := services.NewEventService(users, store.NewEventRepository(), deps, cfg.Events.StrictUpdateLookup)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		logging.RequestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/", handlers.Banner)
	router.Get("/healthz", handlers.Healthz)
	handlers.AccountRouter(router, accountService, logger)
	handlers.EventRouter(router, eventService, logger)

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

	logger.Info("server configured",
		zap.Int("port", port),
		zap.String("notifier", cfg.Notify.Driver),
		zap.String("id_scheme", cfg.IDScheme),
		zap.Bool("reject_duplicate_signup", cfg.Accounts.RejectDuplicateSignup),
		zap.Bool("strict_update_lookup", cfg.Events.StrictUpdateLookup),
	)

	return &Server{
		httpServer: httpServer,
		router:     router,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// drains pending notifications.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if closeErr := s.notifier.Close(); closeErr != nil {
		s.logger.Warn("closing notifier", zap.Error(closeErr))
	}
	return err
}
