package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"pagora/decision-api/internal/domain"
	"pagora/decision-api/internal/scoring"
	"pagora/decision-api/internal/webhook"
)

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	engine   *scoring.Engine
	notifier *webhook.Notifier
	validate *validator.Validate
}

// NewHandler creates a Handler wired to the given dependencies.
// notifier may be nil when webhook alerting is disabled.
func NewHandler(e *scoring.Engine, n *webhook.Notifier) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the wire field names, not the Go ones.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{engine: e, notifier: n, validate: v}
}

// ─── Request binding ──────────────────────────────────────────────────────────

// transactionRequest mirrors the Transaction schema with pointer fields so
// absent keys can be told apart from zero values and defaulted per the data
// model. Enum fields are validated here; the engine never sees bad values.
// omitnil (not omitempty) skips absent fields only: an explicit "" is a
// provided value and must fail the enum check.
type transactionRequest struct {
	TransactionID         *int64   `json:"transaction_id"`
	AmountMXN             *float64 `json:"amount_mxn" validate:"omitnil,min=0"`
	CustomerTxn30d        *int     `json:"customer_txn_30d" validate:"omitnil,min=0"`
	GeoState              *string  `json:"geo_state"`
	DeviceType            *string  `json:"device_type"`
	ChargebackCount       *int     `json:"chargeback_count" validate:"omitnil,min=0"`
	Hour                  *int     `json:"hour" validate:"omitnil,min=0,max=23"`
	ProductType           *string  `json:"product_type" validate:"omitnil,oneof=digital physical subscription"`
	LatencyMS             *int     `json:"latency_ms" validate:"omitnil,min=0"`
	UserReputation        *string  `json:"user_reputation" validate:"omitnil,oneof=trusted recurrent new high_risk"`
	DeviceFingerprintRisk *string  `json:"device_fingerprint_risk" validate:"omitnil,oneof=low medium high"`
	IPRisk                *string  `json:"ip_risk" validate:"omitnil,oneof=low medium high"`
	EmailRisk             *string  `json:"email_risk" validate:"omitnil,oneof=low medium high new_domain"`
	BINCountry            *string  `json:"bin_country"`
	IPCountry             *string  `json:"ip_country"`
}

// toDomain overlays the provided fields onto a fully defaulted transaction.
func (r transactionRequest) toDomain() domain.Transaction {
	tx := domain.NewTransaction()
	tx.TransactionID = r.TransactionID
	if r.AmountMXN != nil {
		tx.AmountMXN = *r.AmountMXN
	}
	if r.CustomerTxn30d != nil {
		tx.CustomerTxn30d = *r.CustomerTxn30d
	}
	if r.GeoState != nil {
		tx.GeoState = *r.GeoState
	}
	if r.DeviceType != nil {
		tx.DeviceType = *r.DeviceType
	}
	if r.ChargebackCount != nil {
		tx.ChargebackCount = *r.ChargebackCount
	}
	if r.Hour != nil {
		tx.Hour = *r.Hour
	}
	if r.ProductType != nil {
		tx.ProductType = *r.ProductType
	}
	if r.LatencyMS != nil {
		tx.LatencyMS = *r.LatencyMS
	}
	if r.UserReputation != nil {
		tx.UserReputation = *r.UserReputation
	}
	if r.DeviceFingerprintRisk != nil {
		tx.DeviceFingerprintRisk = *r.DeviceFingerprintRisk
	}
	if r.IPRisk != nil {
		tx.IPRisk = *r.IPRisk
	}
	if r.EmailRisk != nil {
		tx.EmailRisk = *r.EmailRisk
	}
	if r.BINCountry != nil {
		tx.BINCountry = *r.BINCountry
	}
	if r.IPCountry != nil {
		tx.IPCountry = *r.IPCountry
	}
	return tx
}

// decisionResponse is the wire shape of a scoring result.
type decisionResponse struct {
	TransactionID *int64 `json:"transaction_id"`
	Decision      string `json:"decision"`
	RiskScore     int    `json:"risk_score"`
	Reasons       string `json:"reasons"`
}

// ─── POST /transaction ────────────────────────────────────────────────────────

// EvaluateTransaction scores a single transaction synchronously.
func (h *Handler) EvaluateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON matching the transaction schema")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		validationError(w, fieldErrors(err))
		return
	}

	tx := req.toDomain()
	res := h.engine.Score(tx)

	if res.Decision == domain.DecisionRejected {
		h.notifier.NotifyAsync(tx, res)
	}

	ok(w, decisionResponse{
		TransactionID: tx.TransactionID,
		Decision:      res.Decision,
		RiskScore:     res.RiskScore,
		Reasons:       res.JoinedReasons(),
	})
}

// ─── GET /config ──────────────────────────────────────────────────────────────

// GetConfig exposes the active rule thresholds for transparency.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	ok(w, h.engine.Config())
}

// ─── Validation detail ────────────────────────────────────────────────────────

func fieldErrors(err error) []fieldError {
	verrs, isValidation := err.(validator.ValidationErrors)
	if !isValidation {
		return []fieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
