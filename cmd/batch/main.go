// Command batch scores a CSV of transactions and writes an annotated copy
// with decision, risk_score, and reasons columns appended.
//
// Usage:
//
//	go run ./cmd/batch -input transactions.csv -output decisions.csv [-workers N]
//
// The same DECISION_REVIEW_AT / DECISION_REJECT_AT environment overrides as
// cmd/server apply; both entrypoints share one configuration path.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pagora/decision-api/internal/batch"
	"pagora/decision-api/internal/config"
	"pagora/decision-api/internal/scoring"
)

func main() {
	input := flag.String("input", "transactions.csv", "path to the input CSV")
	output := flag.String("output", "decisions.csv", "path to the annotated output CSV")
	workers := flag.Int("workers", 0, "scoring workers (0 = one per CPU)")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	engine := scoring.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	log.Info().
		Str("run_id", runID).
		Str("input", *input).
		Str("output", *output).
		Int("reject_at", cfg.ScoreToDecision.RejectAt).
		Msg("batch run starting")

	sum, err := batch.Run(ctx, engine, *input, *output, *workers)
	if err != nil {
		log.Fatal().Err(err).Str("run_id", runID).Msg("batch run failed")
	}

	log.Info().
		Str("run_id", runID).
		Int("rows", sum.Rows).
		Int("accepted", sum.Accepted).
		Int("in_review", sum.InReview).
		Int("rejected", sum.Rejected).
		Dur("elapsed", sum.Elapsed).
		Msg("batch run finished")
}
