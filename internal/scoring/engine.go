// Package scoring implements the deterministic rules engine for
// card-not-present authorization decisions.
//
// Architecture:
//   The engine is a pure function over (transaction, configuration). It keeps
//   no state between calls, performs no I/O, and never fails: absent or
//   unknown field values are defaulted or ignored, never rejected here.
//   Input validation belongs to the callers (HTTP handler, batch runner).
//
// Scoring philosophy:
//   Rules run in a fixed order. Each triggered rule adds its configured
//   weight to a running integer score and appends one human-readable reason
//   in the form "name:detail(+N)". A hard block short-circuits everything
//   and pins the score at 100. The final score maps to ACCEPTED, IN_REVIEW,
//   or REJECTED via the configured thresholds.
package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"pagora/decision-api/internal/config"
	"pagora/decision-api/internal/domain"
)

// Engine scores transactions against an immutable rule configuration.
// It is safe for concurrent use by any number of goroutines.
type Engine struct {
	cfg config.Config
}

// New creates an engine bound to the given configuration. The configuration
// must already be validated; see config.Load.
func New(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Score evaluates every rule against the transaction, in order:
//
//  1. hard block (chargebacks + high IP risk) — short-circuits
//  2. categorical risks (ip, email, device fingerprint)
//  3. user reputation adjustment
//  4. night hour
//  5. BIN/IP country mismatch
//  6. high amount for the product type (+ nested new-user surcharge)
//  7. extreme latency
//  8. frequency buffer for established frequent customers
//  9. score → decision mapping
func (e *Engine) Score(tx domain.Transaction) domain.Result {
	score := 0
	var reasons []string

	ipRisk := strings.ToLower(tx.IPRisk)

	// 1) Hard block: repeated chargebacks from a high-risk IP. No further
	// rules run and the score is pinned at 100.
	if tx.ChargebackCount >= e.cfg.ChargebackHardBlock && ipRisk == domain.RiskHigh {
		return domain.Result{
			Decision:  domain.DecisionRejected,
			RiskScore: 100,
			Reasons:   []string{"hard_block:chargebacks>=2+ip_high"},
		}
	}

	w := e.cfg.ScoreWeights

	// 2) Categorical risk signals. Unknown levels contribute 0 and leave no
	// reason; zero weights likewise stay silent.
	for _, c := range []struct {
		field  string
		value  string
		weight int
	}{
		{"ip_risk", ipRisk, w.IPRisk.For(ipRisk)},
		{"email_risk", strings.ToLower(tx.EmailRisk), w.EmailRisk.For(tx.EmailRisk)},
		{"device_fingerprint_risk", strings.ToLower(tx.DeviceFingerprintRisk), w.DeviceFingerprintRisk.For(tx.DeviceFingerprintRisk)},
	} {
		score += c.weight
		if c.weight != 0 {
			reasons = append(reasons, fmt.Sprintf("%s:%s(+%d)", c.field, c.value, c.weight))
		}
	}

	// 3) Reputation adjustment. May be negative (trusted users earn credit),
	// so the reason carries an explicit sign.
	rep := strings.ToLower(tx.UserReputation)
	if add := w.UserReputation.For(rep); add != 0 {
		score += add
		reasons = append(reasons, fmt.Sprintf("user_reputation:%s(%s)", rep, signed(add)))
	}

	// 4) Night hour. The reason is recorded whenever the hour falls in the
	// night window, regardless of the configured weight.
	if isNight(tx.Hour) {
		score += w.NightHour
		reasons = append(reasons, fmt.Sprintf("night_hour:%d(+%d)", tx.Hour, w.NightHour))
	}

	// 5) Card country vs IP country. Only fires when both are known.
	binCountry := strings.ToUpper(tx.BINCountry)
	ipCountry := strings.ToUpper(tx.IPCountry)
	if binCountry != "" && ipCountry != "" && binCountry != ipCountry {
		score += w.GeoMismatch
		reasons = append(reasons, fmt.Sprintf("geo_mismatch:%s!=%s(+%d)", binCountry, ipCountry, w.GeoMismatch))
	}

	// 6) High amount for the product type, with a surcharge when the buyer
	// is a brand-new user. The surcharge never fires on its own.
	productType := strings.ToLower(tx.ProductType)
	if tx.AmountMXN >= e.cfg.AmountThresholds.ForProduct(productType) {
		score += w.HighAmount
		reasons = append(reasons, fmt.Sprintf("high_amount:%s:%s(+%d)", productType, formatAmount(tx.AmountMXN), w.HighAmount))
		if rep == domain.ReputationNew {
			score += w.NewUserHighAmount
			reasons = append(reasons, fmt.Sprintf("new_user_high_amount(+%d)", w.NewUserHighAmount))
		}
	}

	// 7) Extreme authentication latency — bot and card-testing signal.
	if tx.LatencyMS >= e.cfg.LatencyMSExtreme {
		score += w.LatencyExtreme
		reasons = append(reasons, fmt.Sprintf("latency_extreme:%dms(+%d)", tx.LatencyMS, w.LatencyExtreme))
	}

	// 8) Frequency buffer: established customers who buy often get a single
	// point back, but only when there is a positive score to buffer.
	if (rep == domain.ReputationRecurrent || rep == domain.ReputationTrusted) &&
		tx.CustomerTxn30d >= 3 && score > 0 {
		score--
		reasons = append(reasons, "frequency_buffer(-1)")
	}

	// 9) Map the final score to a decision.
	return domain.Result{
		Decision:  decide(score, e.cfg.ScoreToDecision),
		RiskScore: score,
		Reasons:   reasons,
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// isNight reports whether the hour falls in the 22:00–05:59 window.
func isNight(hour int) bool {
	return hour >= 22 || hour <= 5
}

func decide(score int, d config.ScoreToDecision) string {
	switch {
	case score >= d.RejectAt:
		return domain.DecisionRejected
	case score >= d.ReviewAt:
		return domain.DecisionInReview
	default:
		return domain.DecisionAccepted
	}
}

// signed renders an adjustment with an explicit sign: "+4", "-2".
func signed(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// formatAmount renders an amount without trailing zeros: 5200 → "5200",
// 249.99 → "249.99".
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
