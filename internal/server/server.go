// Package server wires the application together: database, image store,
// websocket hub, services, handlers, middleware, and routes. It is the
// composition root; nothing else constructs cross-layer dependencies.
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
	"github.com/rs/cors"

	"github.com/sakif/feedboard/internal/auth"
	"github.com/sakif/feedboard/internal/config"
	"github.com/sakif/feedboard/internal/handler"
	"github.com/sakif/feedboard/internal/middleware"
	"github.com/sakif/feedboard/internal/realtime"
	sqliteRepo "github.com/sakif/feedboard/internal/repository/sqlite"
	"github.com/sakif/feedboard/internal/service"
	s3store "github.com/sakif/feedboard/internal/storage/s3"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	hub    *realtime.Hub
}

// New assembles the full dependency graph and registers all routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	images, err := s3store.New(s3store.Config{
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating image store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		hub:    realtime.NewHub(logger),
	}

	s.setupRoutes(tokens, images)

	return s, nil
}

func (s *Server) setupRoutes(tokens *auth.TokenService, images *s3store.Store) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.New(s.config.Cors).Handler)

	// Identity resolution runs on every route and never rejects; protected
	// operations enforce authentication in the service layer.
	s.router.Use(auth.Identify(tokens))

	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(s.db.Users, tokens, passwords, s.logger)
	postService := service.NewPostService(s.db.Posts, s.db.Users, images, s.hub, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	imageHandler := handler.NewImageHandler(images, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Put("/register", authHandler.HandleRegister)
		r.Post("/authenticate", authHandler.HandleLogin)
		r.Get("/status", authHandler.HandleGetStatus)
		r.Patch("/status", authHandler.HandleUpdateStatus)
	})

	s.router.Route("/feed", func(r chi.Router) {
		r.Get("/posts", postHandler.HandleList)
		r.Post("/post", postHandler.HandleCreate)
		r.Get("/post/{id}", postHandler.HandleGet)
		r.Put("/post/{id}", postHandler.HandleUpdate)
		r.Delete("/post/{id}", postHandler.HandleDelete)
		r.Post("/image", imageHandler.HandleUpload)
	})

	s.router.Get("/ws", s.hub.HandleWS)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests,
// disconnect websocket clients, close the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.hub.Close()

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
