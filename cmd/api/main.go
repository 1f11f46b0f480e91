//	@title			Docgate API
//	@version		1.0
//	@description	Gateway that authorizes, validates, and relays PDF uploads to object storage.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Upload capability token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/docgate/service/internal/capability"
	"github.com/docgate/service/internal/config"
	"github.com/docgate/service/internal/db"
	"github.com/docgate/service/internal/document"
	appMiddleware "github.com/docgate/service/internal/middleware"
	"github.com/docgate/service/internal/ratelimit"
	"github.com/docgate/service/internal/storage"

	_ "github.com/docgate/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Capability manager: stateless signed tokens by default, server-side
	// sessions when AUTH_MODE=session.
	var mgr capability.Manager
	switch cfg.AuthMode {
	case config.AuthModeToken:
		if cfg.CapabilitySecret == "" {
			log.Fatal("CAPABILITY_SECRET must be set")
		}
		mgr = capability.NewTokenManager([]byte(cfg.CapabilitySecret), cfg.CapabilityTTL)
	case config.AuthModeSession:
		pool, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		mgr = capability.NewSessionManager(capability.NewRepository(pool), cfg.CapabilityTTL, cfg.IsProduction())
	default:
		log.Fatalf("unknown AUTH_MODE %q (want %q or %q)", cfg.AuthMode, config.AuthModeToken, config.AuthModeSession)
	}

	capHandler := capability.NewHandler(mgr)
	docHandler := document.NewHandler(document.NewService(store, cfg.MaxUploadBytes), cfg.MaxUploadBytes)
	limiter := ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMax)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Gated surface: admission first, then the capability check on the
	// upload/delete path. Each gate short-circuits the next.
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Admit(limiter))

		r.Post("/session", capHandler.Begin)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireCapability(mgr))
			r.Post("/upload", docHandler.Upload)
			r.Delete("/delete", docHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, auth=%s)", cfg.Port, cfg.AppEnv, cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
