// Package server wires the application together: it owns the router, the
// database handle, and the full route table, and it runs the HTTP server
// with graceful shutdown.
//
// This is the composition root. Every dependency chain is assembled here —
// repositories from the database, services from repositories, handlers from
// services — so the rest of the codebase never constructs its own
// collaborators.
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

	"github.com/hasan-mia/manufacturer-server/internal/auth"
	"github.com/hasan-mia/manufacturer-server/internal/config"
	"github.com/hasan-mia/manufacturer-server/internal/handler"
	"github.com/hasan-mia/manufacturer-server/internal/middleware"
	"github.com/hasan-mia/manufacturer-server/internal/model"
	"github.com/hasan-mia/manufacturer-server/internal/payment"
	sqliteRepo "github.com/hasan-mia/manufacturer-server/internal/repository/sqlite"
	"github.com/hasan-mia/manufacturer-server/internal/service"
)

// Server holds the router and the resources it owns. The database handle
// belongs to the server and is closed during shutdown.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the server: opens the database, constructs every service and
// handler, and mounts the route table. The payment provider is injected so
// tests can run the full stack without a Stripe key.
func New(cfg config.Config, intents payment.IntentCreator, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(intents); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests that drive the full stack
// through httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database handle. Start does this itself; Close exists
// for callers that never reach Start, like tests.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes mounts global middleware and the full route table.
//
// Middleware order matters: request ID and real IP first so the logger sees
// them, the logger before the recoverer so panics still produce a log line.
// CORS is wide open — the API serves a public storefront and authenticates
// with bearer tokens, not cookies.
func (s *Server) setupRoutes(intents payment.IntentCreator) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	tokens, err := auth.NewTokenService(s.cfg.TokenSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	users := s.db.Users()
	docs := s.db.Documents()

	requireAuth := auth.RequireAuth(tokens)
	requireAdmin := auth.RequireAdmin(users)

	// protect wraps a handler with the middleware chain its access level
	// demands. Admin implies auth: the role check reads the email the auth
	// gate put in the context.
	protect := func(level config.Protection, h http.HandlerFunc) http.Handler {
		switch level {
		case config.Admin:
			return requireAuth(requireAdmin(h))
		case config.Auth:
			return requireAuth(h)
		default:
			return h
		}
	}

	// Liveness probe for uptime checks and the hosting platform.
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Manufacturer server is running"))
	})

	// === Identity routes ===
	userService := service.NewUserService(users, tokens, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)

	s.router.Put("/signin/{email}", userHandler.HandleSignIn)
	s.router.Get("/admin/{email}", userHandler.HandleIsAdmin)
	s.router.Method(http.MethodPut, "/user/{email}",
		protect(s.cfg.ProtectionFor("user", "update"), userHandler.HandleUpdateProfile))
	s.router.Method(http.MethodGet, "/users",
		protect(s.cfg.ProtectionFor("user", "list"), userHandler.HandleList))
	s.router.Method(http.MethodGet, "/myprofile",
		requireAuth(http.HandlerFunc(userHandler.HandleMyProfile)))
	s.router.Method(http.MethodPut, "/user/admin/{email}",
		requireAuth(requireAdmin(http.HandlerFunc(userHandler.HandlePromoteAdmin))))
	s.router.Method(http.MethodDelete, "/delete-admin/{email}",
		requireAuth(requireAdmin(http.HandlerFunc(userHandler.HandleDelete))))

	// === Payment routes ===
	paymentService := service.NewPaymentService(intents, docs, s.logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, s.logger)

	s.router.Method(http.MethodPost, "/payment-intent",
		requireAuth(http.HandlerFunc(paymentHandler.HandleCreateIntent)))
	s.router.Patch("/order/{id}", paymentHandler.HandleRecordPayment)

	// === Document CRUD routes ===
	// One service/handler pair per resource; the catalogue decides which
	// routes exist, the config decides who may call the mutating ones.
	for _, res := range model.Resources {
		resourceService := service.NewResourceService(docs, res, s.logger)
		h := handler.NewResourceHandler(resourceService, s.logger)

		s.router.Method(http.MethodPost, "/"+res.Name,
			protect(s.cfg.ProtectionFor(res.Name, "create"), h.HandleCreate))
		s.router.Get("/"+res.Plural, h.HandleList)
		if res.HasGet {
			s.router.Get("/"+res.Name+"/{id}", h.HandleGet)
		}
		if len(res.UpdateFields) > 0 {
			s.router.Method(http.MethodPut, "/"+res.Name+"/{id}",
				protect(s.cfg.ProtectionFor(res.Name, "update"), h.HandleUpdate))
		}
		s.router.Method(http.MethodDelete, "/"+res.Name+"/{id}",
			protect(s.cfg.ProtectionFor(res.Name, "delete"), h.HandleDelete))

		if res.Name == "order" {
			s.router.Method(http.MethodGet, "/myorders",
				requireAuth(http.HandlerFunc(h.HandleListMine)))
		}
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests up to 30
// seconds, and close the database so the WAL is flushed.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
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
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
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
