// Package config defines the rule thresholds and weights used by the scoring
// engine. The configuration is built once at process start, validated, and
// treated as read-only for the lifetime of the process.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"pagora/decision-api/internal/domain"
)

// Environment variables that may override the decision thresholds at startup.
// There is no runtime reconfiguration path.
const (
	EnvReviewAt = "DECISION_REVIEW_AT"
	EnvRejectAt = "DECISION_REJECT_AT"
)

// ─── Types ────────────────────────────────────────────────────────────────────

// AmountThresholds holds the per-product high-amount cutoffs in MXN.
// Default is the fallback for unrecognized product types.
type AmountThresholds struct {
	Digital      float64 `json:"digital"`
	Physical     float64 `json:"physical"`
	Subscription float64 `json:"subscription"`
	Default      float64 `json:"_default"`
}

// ForProduct resolves the threshold for a product type (case-insensitive),
// falling back to Default for anything unrecognized.
func (t AmountThresholds) ForProduct(productType string) float64 {
	switch strings.ToLower(productType) {
	case domain.ProductDigital:
		return t.Digital
	case domain.ProductPhysical:
		return t.Physical
	case domain.ProductSubscription:
		return t.Subscription
	default:
		return t.Default
	}
}

// RiskWeights maps a three-level risk signal to score points.
type RiskWeights struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// For returns the weight for a risk level (case-insensitive).
// Unknown levels contribute 0.
func (w RiskWeights) For(level string) int {
	switch strings.ToLower(level) {
	case domain.RiskLow:
		return w.Low
	case domain.RiskMedium:
		return w.Medium
	case domain.RiskHigh:
		return w.High
	default:
		return 0
	}
}

// EmailRiskWeights is RiskWeights plus the "new_domain" level that only the
// email signal reports.
type EmailRiskWeights struct {
	Low       int `json:"low"`
	Medium    int `json:"medium"`
	High      int `json:"high"`
	NewDomain int `json:"new_domain"`
}

// For returns the weight for an email risk level (case-insensitive,
// unknown → 0).
func (w EmailRiskWeights) For(level string) int {
	switch strings.ToLower(level) {
	case domain.RiskLow:
		return w.Low
	case domain.RiskMedium:
		return w.Medium
	case domain.RiskHigh:
		return w.High
	case domain.RiskNewDomain:
		return w.NewDomain
	default:
		return 0
	}
}

// ReputationWeights maps user reputation tiers to score adjustments.
// Trusted and recurrent users carry negative weights.
type ReputationWeights struct {
	Trusted   int `json:"trusted"`
	Recurrent int `json:"recurrent"`
	New       int `json:"new"`
	HighRisk  int `json:"high_risk"`
}

// For returns the adjustment for a reputation tier (case-insensitive,
// unknown → 0).
func (w ReputationWeights) For(reputation string) int {
	switch strings.ToLower(reputation) {
	case domain.ReputationTrusted:
		return w.Trusted
	case domain.ReputationRecurrent:
		return w.Recurrent
	case domain.ReputationNew:
		return w.New
	case domain.ReputationHighRisk:
		return w.HighRisk
	default:
		return 0
	}
}

// ScoreWeights groups every rule weight in the engine.
type ScoreWeights struct {
	IPRisk                RiskWeights       `json:"ip_risk"`
	EmailRisk             EmailRiskWeights  `json:"email_risk"`
	DeviceFingerprintRisk RiskWeights       `json:"device_fingerprint_risk"`
	UserReputation        ReputationWeights `json:"user_reputation"`
	NightHour             int               `json:"night_hour"`
	GeoMismatch           int               `json:"geo_mismatch"`
	HighAmount            int               `json:"high_amount"`
	LatencyExtreme        int               `json:"latency_extreme"`
	NewUserHighAmount     int               `json:"new_user_high_amount"`
}

// ScoreToDecision maps a final score to a decision: score >= RejectAt rejects,
// score >= ReviewAt routes to review, anything below is accepted.
type ScoreToDecision struct {
	ReviewAt int `json:"review_at"`
	RejectAt int `json:"reject_at"`
}

// Config is the full, immutable rule configuration. The JSON tags define the
// canonical shape exposed on GET /config.
type Config struct {
	AmountThresholds    AmountThresholds `json:"amount_thresholds"`
	LatencyMSExtreme    int              `json:"latency_ms_extreme"`
	ChargebackHardBlock int              `json:"chargeback_hard_block"`
	ScoreWeights        ScoreWeights     `json:"score_weights"`
	ScoreToDecision     ScoreToDecision  `json:"score_to_decision"`
}

// ─── Construction ─────────────────────────────────────────────────────────────

// Default returns the stock rule configuration. Thresholds are intentionally
// conservative; tune them to the business before relying on them.
func Default() Config {
	return Config{
		AmountThresholds: AmountThresholds{
			Digital:      2500,
			Physical:     6000,
			Subscription: 1500,
			Default:      4000,
		},
		LatencyMSExtreme:    2500,
		ChargebackHardBlock: 2,
		ScoreWeights: ScoreWeights{
			IPRisk:                RiskWeights{Low: 0, Medium: 2, High: 4},
			EmailRisk:             EmailRiskWeights{Low: 0, Medium: 1, High: 3, NewDomain: 2},
			DeviceFingerprintRisk: RiskWeights{Low: 0, Medium: 2, High: 4},
			UserReputation:        ReputationWeights{Trusted: -2, Recurrent: -1, New: 0, HighRisk: 4},
			NightHour:             1,
			GeoMismatch:           2,
			HighAmount:            2,
			LatencyExtreme:        2,
			NewUserHighAmount:     2,
		},
		ScoreToDecision: ScoreToDecision{ReviewAt: 4, RejectAt: 10},
	}
}

// Load builds the process configuration: defaults, then the optional
// threshold overrides from the environment, then validation. A malformed
// override or an inconsistent configuration is a startup error; nothing is
// ever surfaced per-request.
func Load() (Config, error) {
	cfg := Default()

	if v, err := intFromEnv(EnvReviewAt); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.ScoreToDecision.ReviewAt = *v
	}

	if v, err := intFromEnv(EnvRejectAt); err != nil {
		return Config{}, err
	} else if v != nil {
		cfg.ScoreToDecision.RejectAt = *v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the engine relies on.
func (c Config) Validate() error {
	if c.ScoreToDecision.RejectAt <= c.ScoreToDecision.ReviewAt {
		return fmt.Errorf("config: reject_at (%d) must be greater than review_at (%d)",
			c.ScoreToDecision.RejectAt, c.ScoreToDecision.ReviewAt)
	}
	if c.ChargebackHardBlock < 1 {
		return fmt.Errorf("config: chargeback_hard_block must be at least 1, got %d", c.ChargebackHardBlock)
	}
	if c.LatencyMSExtreme <= 0 {
		return fmt.Errorf("config: latency_ms_extreme must be positive, got %d", c.LatencyMSExtreme)
	}
	for name, v := range map[string]float64{
		"digital":      c.AmountThresholds.Digital,
		"physical":     c.AmountThresholds.Physical,
		"subscription": c.AmountThresholds.Subscription,
		"_default":     c.AmountThresholds.Default,
	} {
		if v <= 0 {
			return fmt.Errorf("config: amount threshold %q must be positive, got %v", name, v)
		}
	}
	return nil
}

func intFromEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s must be an integer, got %q", key, raw)
	}
	return &v, nil
}
