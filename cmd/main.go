// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nycd79/borough-bash/internal/config"
	"github.com/nycd79/borough-bash/internal/database"
	"github.com/nycd79/borough-bash/internal/handler"
	"github.com/nycd79/borough-bash/internal/model"
	"github.com/nycd79/borough-bash/internal/notify"
	"github.com/nycd79/borough-bash/internal/repository"
	"github.com/nycd79/borough-bash/internal/schedule"
	"github.com/nycd79/borough-bash/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	ctx := context.Background()

	// ── 1. Connect to PostgreSQL and bootstrap the schema ────────────────
	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	log.Info().Msg("connected to postgres")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	capacityRepo := repository.NewCapacityRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)

	if err := capacityRepo.EnsureRegions(ctx, model.Regions(), cfg.DefaultRegionCapacity); err != nil {
		log.Fatal().Err(err).Msg("seed regions")
	}

	notifier := notify.NewNotifier(
		cfg.ConfirmationWebhookURL, cfg.WaitingListWebhookURL, cfg.WebhookSecret, log)
	svc := service.NewRegistrationService(
		capacityRepo, regRepo, notifier, cfg.AllowedEmailDomain, log)
	sched := schedule.New(cfg.RegistrationOpensAt, cfg.RegistrationPostponed)
	h := handler.NewRegistrationHandler(svc, sched)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger(log))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	r.Route("/register", func(r chi.Router) {
		r.Post("/", h.Submit)
		r.Get("/status", h.WindowStatus)
	})

	r.Route("/email", func(r chi.Router) {
		r.Use(handler.WebhookAuth(cfg.WebhookSecret))
		r.Post("/waiting-list", h.WaitingListEmail)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(handler.AdminAuth(cfg.AdminSecret))
		r.Get("/registrations", h.Roster)
		r.Get("/registrations/export", h.ExportCSV)
		r.Patch("/registrations/{id}", h.Update)
		r.Delete("/registrations/{id}", h.Delete)
		r.Get("/capacity", h.Counts)
		r.Patch("/capacity", h.SetCapacity)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
