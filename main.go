package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"intervue-api/internal/config"
	"intervue-api/internal/container"
	"intervue-api/internal/domain"
	"intervue-api/internal/handler"
	"intervue-api/internal/middleware"
	"intervue-api/pkg/logger"
)

// Resources holds all resources that need cleanup
type Resources struct {
	container *container.Container
	server    *http.Server
	log       *logger.Logger
	mu        sync.Mutex
	closed    bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.log.Info("Starting graceful shutdown...")

	var shutdownErr error

	// Stop accepting new requests before tearing down connections
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			shutdownErr = fmt.Errorf("HTTP server shutdown: %w", err)
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	if r.container != nil {
		r.container.Close()
	}

	if shutdownErr != nil {
		return shutdownErr
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting intervue-api server")

	ctx := context.Background()
	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	resources := &Resources{
		container: c,
		server:    server,
		log:       log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	authService := c.GetAuthService()
	limiter := c.GetRateLimitService()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(c)
	authHandler := handler.NewAuthHandler(c)
	interviewHandler := handler.NewInterviewHandler(c)
	analyticsHandler := handler.NewAnalyticsHandler(c)
	walletHandler := handler.NewWalletHandler(c)
	paymentHandler := handler.NewPaymentHandler(c)
	uploadHandler := handler.NewUploadHandler(c)

	// Health check (no auth, no rate limit)
	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		// Sign-in: fingerprinted per anonymous client, only failed attempts
		// count against the budget
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, domain.ScopeAuth, log))
			r.Post("/auth/google", authHandler.GoogleSignIn)
		})

		// Gateway webhook: authenticated by its payload signature
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, domain.ScopeAPI, log))
			r.Post("/payments/webhook", paymentHandler.Webhook)
		})

		// Plan catalog is public. A session is optional; when present the
		// rate-limit fingerprint keys on the user instead of the address
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(authService, log))
			r.Use(middleware.RateLimit(limiter, domain.ScopeAPI, log))
			r.Get("/payments/plans", paymentHandler.Plans)
		})

		// Everything below requires a session
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService, log))
			r.Use(middleware.RateLimit(limiter, domain.ScopeAPI, log))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/interviews", func(r chi.Router) {
				r.Get("/", interviewHandler.History)
				r.Get("/{id}", interviewHandler.Get)

				// Creation and completion have their own tighter budget
				r.Group(func(r chi.Router) {
					r.Use(middleware.RateLimit(limiter, domain.ScopeInterview, log))
					r.Post("/", interviewHandler.Create)
					r.Post("/{id}/complete", interviewHandler.Complete)
					r.Post("/{id}/evaluate", interviewHandler.Evaluate)
				})
			})

			r.Get("/analytics", analyticsHandler.Summary)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(limiter, domain.ScopeUpload, log))
				r.Post("/uploads/resume", uploadHandler.Resume)
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/balance", walletHandler.Balance)
				r.Get("/ledger", walletHandler.History)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Use(middleware.RateLimit(limiter, domain.ScopePayment, log))
				r.Post("/orders", paymentHandler.CreateOrder)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(log))
				r.Use(middleware.RateLimit(limiter, domain.ScopeAdmin, log))

				r.Post("/wallet/adjust", walletHandler.Adjust)
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
