// Command server starts the CNP decision service.
//
// Usage:
//
//	go run ./cmd/server [flags]
//
// Flags:
//
//	-port  HTTP port to listen on (default: 8080)
//
// Environment:
//
//	PORT                 overrides -port (PaaS convention)
//	DECISION_REVIEW_AT   overrides the review threshold
//	DECISION_REJECT_AT   overrides the reject threshold
//	WEBHOOK_URL          enables rejection alerts to the given endpoint
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pagora/decision-api/internal/api"
	"pagora/decision-api/internal/config"
	"pagora/decision-api/internal/scoring"
	"pagora/decision-api/internal/webhook"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port")
	flag.Parse()

	// Most PaaS platforms inject PORT; it takes precedence over the flag.
	if envPort := os.Getenv("PORT"); envPort != "" {
		if p, err := strconv.Atoi(envPort); err == nil {
			*port = p
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// ── Wire dependencies ─────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	engine := scoring.New(cfg)
	notifier := webhook.New(os.Getenv("WEBHOOK_URL"))
	handler := api.NewHandler(engine, notifier)
	router := api.NewRouter(handler)

	// ── Start HTTP server ─────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Int("port", *port).
			Int("review_at", cfg.ScoreToDecision.ReviewAt).
			Int("reject_at", cfg.ScoreToDecision.RejectAt).
			Bool("webhook", notifier != nil).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
