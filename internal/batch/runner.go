// Package batch scores a CSV of transactions and writes an annotated copy.
//
// The input columns map to transaction fields by header name; unknown columns
// pass through untouched and missing columns (or empty cells) take the
// documented field defaults. Rows are scored in parallel — the engine is
// pure, so only the result slot indexing matters — and the output always
// preserves the input row order.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pagora/decision-api/internal/domain"
	"pagora/decision-api/internal/scoring"
)

// Summary reports what a batch run did.
type Summary struct {
	Rows     int
	Accepted int
	InReview int
	Rejected int
	Elapsed  time.Duration
}

// Run reads inputPath, scores every row with the engine, and writes
// outputPath with decision, risk_score, and reasons columns appended.
//
// Any I/O failure or unparsable cell aborts the run; no partial output is
// guaranteed once an error occurs. workers <= 0 means one worker per CPU.
func Run(ctx context.Context, engine *scoring.Engine, inputPath, outputPath string, workers int) (Summary, error) {
	start := time.Now()

	header, records, err := readInput(inputPath)
	if err != nil {
		return Summary{}, err
	}

	cols := columnIndex(header)
	results := make([]domain.Result, len(records))

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			tx, err := rowToTransaction(cols, records[i])
			if err != nil {
				return fmt.Errorf("row %d: %w", i+2, err) // +2: header row, 1-based
			}
			results[i] = engine.Score(tx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	// A canceled run leaves unscored slots; never write a partial table.
	// The parent context is the one to ask: errgroup cancels its derived
	// context as soon as Wait returns.
	if err := ctx.Err(); err != nil {
		return Summary{}, fmt.Errorf("batch canceled: %w", err)
	}

	if err := writeOutput(outputPath, header, records, results); err != nil {
		return Summary{}, err
	}

	sum := Summary{Rows: len(records), Elapsed: time.Since(start)}
	for _, res := range results {
		switch res.Decision {
		case domain.DecisionAccepted:
			sum.Accepted++
		case domain.DecisionInReview:
			sum.InReview++
		case domain.DecisionRejected:
			sum.Rejected++
		}
	}
	return sum, nil
}

// ─── Input ────────────────────────────────────────────────────────────────────

func readInput(path string) (header []string, records [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("read %s: missing header row", path)
	}
	return rows[0], rows[1:], nil
}

// columnIndex maps normalized header names to positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// rowToTransaction overlays the row's non-empty cells onto a fully defaulted
// transaction. Empty cells and absent columns keep the field default; a cell
// that fails to parse is an error.
func rowToTransaction(cols map[string]int, record []string) (domain.Transaction, error) {
	tx := domain.NewTransaction()

	if cell, present := cellValue(cols, record, "transaction_id"); present {
		id, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return tx, fmt.Errorf("column transaction_id: %q is not an integer", cell)
		}
		tx.TransactionID = &id
	}
	if err := setFloat(cols, record, "amount_mxn", &tx.AmountMXN); err != nil {
		return tx, err
	}
	if err := setInt(cols, record, "customer_txn_30d", &tx.CustomerTxn30d); err != nil {
		return tx, err
	}
	setString(cols, record, "geo_state", &tx.GeoState)
	setString(cols, record, "device_type", &tx.DeviceType)
	if err := setInt(cols, record, "chargeback_count", &tx.ChargebackCount); err != nil {
		return tx, err
	}
	if err := setInt(cols, record, "hour", &tx.Hour); err != nil {
		return tx, err
	}
	setString(cols, record, "product_type", &tx.ProductType)
	if err := setInt(cols, record, "latency_ms", &tx.LatencyMS); err != nil {
		return tx, err
	}
	setString(cols, record, "user_reputation", &tx.UserReputation)
	setString(cols, record, "device_fingerprint_risk", &tx.DeviceFingerprintRisk)
	setString(cols, record, "ip_risk", &tx.IPRisk)
	setString(cols, record, "email_risk", &tx.EmailRisk)
	setString(cols, record, "bin_country", &tx.BINCountry)
	setString(cols, record, "ip_country", &tx.IPCountry)

	return tx, nil
}

func cellValue(cols map[string]int, record []string, name string) (string, bool) {
	i, known := cols[name]
	if !known || i >= len(record) {
		return "", false
	}
	cell := strings.TrimSpace(record[i])
	return cell, cell != ""
}

func setString(cols map[string]int, record []string, name string, dst *string) {
	if cell, present := cellValue(cols, record, name); present {
		*dst = cell
	}
}

func setInt(cols map[string]int, record []string, name string, dst *int) error {
	cell, present := cellValue(cols, record, name)
	if !present {
		return nil
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		return fmt.Errorf("column %s: %q is not an integer", name, cell)
	}
	*dst = v
	return nil
}

func setFloat(cols map[string]int, record []string, name string, dst *float64) error {
	cell, present := cellValue(cols, record, name)
	if !present {
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return fmt.Errorf("column %s: %q is not a number", name, cell)
	}
	*dst = v
	return nil
}

// ─── Output ───────────────────────────────────────────────────────────────────

func writeOutput(path string, header []string, records [][]string, results []domain.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string{}, header...), "decision", "risk_score", "reasons")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, record := range records {
		res := results[i]
		row := append(append([]string{}, record...),
			res.Decision, strconv.Itoa(res.RiskScore), res.JoinedReasons())
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
