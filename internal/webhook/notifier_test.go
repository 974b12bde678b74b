package webhook_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pagora/decision-api/internal/domain"
	"pagora/decision-api/internal/webhook"
)

func rejectedResult() (domain.Transaction, domain.Result) {
	tx := domain.NewTransaction()
	tx.ChargebackCount = 2
	tx.IPRisk = domain.RiskHigh
	return tx, domain.Result{
		Decision:  domain.DecisionRejected,
		RiskScore: 100,
		Reasons:   []string{"hard_block:chargebacks>=2+ip_high"},
	}
}

func TestNotify_DeliversPayload(t *testing.T) {
	received := make(chan webhook.Payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhook.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		received <- p
	}))
	defer srv.Close()

	n := webhook.New(srv.URL)
	tx, res := rejectedResult()
	n.Notify(tx, res)

	select {
	case p := <-received:
		if p.Event != "transaction_rejected" {
			t.Errorf("unexpected event: %q", p.Event)
		}
		if p.EventID == "" {
			t.Error("event_id must be set")
		}
		if p.Decision != domain.DecisionRejected || p.RiskScore != 100 {
			t.Errorf("unexpected decision payload: %s/%d", p.Decision, p.RiskScore)
		}
		if p.Reasons != "hard_block:chargebacks>=2+ip_high" {
			t.Errorf("unexpected reasons: %q", p.Reasons)
		}
	default:
		t.Fatal("webhook was not delivered")
	}
}

func TestNotifier_NilIsSafe(t *testing.T) {
	n := webhook.New("")
	if n != nil {
		t.Fatal("empty URL must disable the notifier")
	}
	tx, res := rejectedResult()
	// Must not panic.
	n.NotifyAsync(tx, res)
	n.Notify(tx, res)
}
