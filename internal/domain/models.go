// Package domain contains the core types shared across the application.
// Keeping them in one place makes the decision rules easy to reason about.
package domain

import "strings"

// ─── Decisions ────────────────────────────────────────────────────────────────

// Decision outcomes for a scored transaction.
const (
	DecisionAccepted = "ACCEPTED"
	DecisionInReview = "IN_REVIEW" // e.g. 3DS challenge or manual review queue
	DecisionRejected = "REJECTED"
)

// ─── Enumerations ─────────────────────────────────────────────────────────────

// Risk levels for the categorical signals (ip_risk, email_risk,
// device_fingerprint_risk). Email risk additionally knows "new_domain".
const (
	RiskLow       = "low"
	RiskMedium    = "medium"
	RiskHigh      = "high"
	RiskNewDomain = "new_domain"
)

// User reputation tiers as reported by the upstream customer profile.
const (
	ReputationTrusted   = "trusted"
	ReputationRecurrent = "recurrent"
	ReputationNew       = "new"
	ReputationHighRisk  = "high_risk"
)

// Product types with their own high-amount thresholds.
const (
	ProductDigital      = "digital"
	ProductPhysical     = "physical"
	ProductSubscription = "subscription"
)

// ─── Core types ───────────────────────────────────────────────────────────────

// Transaction is a single card-not-present authorization attempt.
//
// Every field carries a default (see NewTransaction); absent or empty inputs
// are defaulted by the boundary layer before scoring, never rejected by the
// engine itself.
type Transaction struct {
	TransactionID         *int64  `json:"transaction_id"`
	AmountMXN             float64 `json:"amount_mxn"`
	CustomerTxn30d        int     `json:"customer_txn_30d"` // purchases in the last 30 days
	GeoState              string  `json:"geo_state,omitempty"`
	DeviceType            string  `json:"device_type,omitempty"` // "mobile" / "desktop"
	ChargebackCount       int     `json:"chargeback_count"`
	Hour                  int     `json:"hour"` // 0..23
	ProductType           string  `json:"product_type"`
	LatencyMS             int     `json:"latency_ms"` // time to authenticate; extreme values hint at bots
	UserReputation        string  `json:"user_reputation"`
	DeviceFingerprintRisk string  `json:"device_fingerprint_risk"`
	IPRisk                string  `json:"ip_risk"`
	EmailRisk             string  `json:"email_risk"`
	BINCountry            string  `json:"bin_country"` // card issuing country
	IPCountry             string  `json:"ip_country"`  // country resolved from the IP
}

// NewTransaction returns a Transaction with every field at its documented
// default. Boundary layers start from this value and overlay what the caller
// actually provided.
func NewTransaction() Transaction {
	return Transaction{
		Hour:                  12,
		ProductType:           ProductDigital,
		UserReputation:        ReputationNew,
		DeviceFingerprintRisk: RiskLow,
		IPRisk:                RiskLow,
		EmailRisk:             RiskLow,
		BINCountry:            "MX",
		IPCountry:             "MX",
	}
}

// Result is the outcome of scoring one transaction.
type Result struct {
	Decision  string   `json:"decision"`
	RiskScore int      `json:"risk_score"` // 100 on hard block; may be negative otherwise
	Reasons   []string `json:"reasons"`    // rule-evaluation order, one entry per triggered rule
}

// JoinedReasons renders the reasons in the display format used on the wire
// and in batch output columns.
func (r Result) JoinedReasons() string {
	return strings.Join(r.Reasons, ";")
}
