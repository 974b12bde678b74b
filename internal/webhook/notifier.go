// Package webhook delivers asynchronous alerts for rejected transactions.
//
// Notifications are sent in a goroutine so they never block the HTTP
// response. Failed deliveries are logged but not retried (a production system
// would use a persistent queue with exponential backoff).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pagora/decision-api/internal/domain"
)

const eventRejected = "transaction_rejected"

// Payload is the body sent to the configured webhook URL.
type Payload struct {
	Event       string             `json:"event"`
	EventID     string             `json:"event_id"`
	TriggeredAt time.Time          `json:"triggered_at"`
	Transaction domain.Transaction `json:"transaction"`
	Decision    string             `json:"decision"`
	RiskScore   int                `json:"risk_score"`
	Reasons     string             `json:"reasons"`
}

// Notifier posts rejection alerts to a single configured endpoint.
// A nil Notifier is valid and does nothing, so callers never need to branch
// on whether alerting is enabled.
type Notifier struct {
	url    string
	client *http.Client
}

// New creates a Notifier for the given URL, or nil when the URL is empty.
func New(url string) *Notifier {
	if url == "" {
		return nil
	}
	return &Notifier{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// NotifyAsync fires the alert in the background and returns immediately.
func (n *Notifier) NotifyAsync(tx domain.Transaction, res domain.Result) {
	if n == nil {
		return
	}
	go n.Notify(tx, res)
}

// Notify delivers a single alert and logs the outcome.
func (n *Notifier) Notify(tx domain.Transaction, res domain.Result) {
	if n == nil {
		return
	}

	payload := Payload{
		Event:       eventRejected,
		EventID:     uuid.NewString(),
		TriggeredAt: time.Now().UTC(),
		Transaction: tx,
		Decision:    res.Decision,
		RiskScore:   res.RiskScore,
		Reasons:     res.JoinedReasons(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_id", payload.EventID).Msg("webhook: marshal payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Str("event_id", payload.EventID).Msg("webhook: build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pagora-Event", eventRejected)

	resp, err := n.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", n.url).Str("event_id", payload.EventID).Msg("webhook: delivery failed")
		return
	}
	defer resp.Body.Close()

	log.Info().
		Str("url", n.url).
		Str("event_id", payload.EventID).
		Int("status", resp.StatusCode).
		Int("risk_score", res.RiskScore).
		Msg("webhook: delivered")
}
