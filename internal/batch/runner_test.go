package batch_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagora/decision-api/internal/batch"
	"pagora/decision-api/internal/config"
	"pagora/decision-api/internal/scoring"
)

func newEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	return scoring.New(config.Default())
}

func writeCSV(t *testing.T, dir string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(dir, "input.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRun_AnnotatesEveryRowInOrder(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, [][]string{
		{"transaction_id", "amount_mxn", "hour", "user_reputation", "ip_risk", "email_risk", "chargeback_count", "customer_txn_30d"},
		{"1", "250", "10", "trusted", "low", "low", "0", "10"},
		{"2", "5200", "23", "new", "medium", "new_domain", "0", "1"},
		{"3", "100", "12", "new", "high", "low", "2", "0"},
		{"4", "80", "14", "recurrent", "low", "low", "0", "5"},
	})
	out := filepath.Join(dir, "output.csv")

	sum, err := batch.Run(context.Background(), newEngine(t), in, out, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Rows)
	assert.Equal(t, 2, sum.Accepted)
	assert.Equal(t, 1, sum.InReview)
	assert.Equal(t, 1, sum.Rejected)

	rows := readCSV(t, out)
	require.Len(t, rows, 5) // header + 4 rows

	header := rows[0]
	require.Len(t, header, 11)
	assert.Equal(t, []string{"decision", "risk_score", "reasons"}, header[8:])

	// Row order mirrors the input regardless of worker scheduling.
	for i, wantID := range []string{"1", "2", "3", "4"} {
		assert.Equal(t, wantID, rows[i+1][0], "row %d out of order", i+1)
	}

	// Spot-check the annotations.
	assert.Equal(t, []string{"ACCEPTED", "-2", "user_reputation:trusted(-2)"}, rows[1][8:])
	assert.Equal(t, "IN_REVIEW", rows[2][8])
	assert.Equal(t, "9", rows[2][9])
	assert.Contains(t, rows[2][10], "high_amount")
	assert.Equal(t, []string{"REJECTED", "100", "hard_block:chargebacks>=2+ip_high"}, rows[3][8:])
	assert.Equal(t, "ACCEPTED", rows[4][8])
}

func TestRun_MissingColumnsAndEmptyCellsDefault(t *testing.T) {
	dir := t.TempDir()
	// Only two columns; everything else must take its documented default,
	// including the empty amount cell in the second row.
	in := writeCSV(t, dir, [][]string{
		{"amount_mxn", "ip_risk"},
		{"100", "low"},
		{"", "high"},
	})
	out := filepath.Join(dir, "output.csv")

	_, err := batch.Run(context.Background(), newEngine(t), in, out, 1)
	require.NoError(t, err)

	rows := readCSV(t, out)
	assert.Equal(t, []string{"ACCEPTED", "0", ""}, rows[1][2:])
	assert.Equal(t, []string{"IN_REVIEW", "4", "ip_risk:high(+4)"}, rows[2][2:])
}

func TestRun_UnknownColumnsPassThrough(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, [][]string{
		{"order_ref", "amount_mxn"},
		{"ABC-1", "50"},
	})
	out := filepath.Join(dir, "output.csv")

	_, err := batch.Run(context.Background(), newEngine(t), in, out, 1)
	require.NoError(t, err)

	rows := readCSV(t, out)
	assert.Equal(t, "ABC-1", rows[1][0])
}

func TestRun_UnparsableCellFails(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, [][]string{
		{"amount_mxn", "hour"},
		{"100", "12"},
		{"100", "noon"},
	})
	out := filepath.Join(dir, "output.csv")

	_, err := batch.Run(context.Background(), newEngine(t), in, out, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "hour")
}

func TestRun_MalformedCSVFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n\"unterminated\n"), 0o644))

	_, err := batch.Run(context.Background(), newEngine(t), path, filepath.Join(dir, "out.csv"), 1)
	require.Error(t, err)
}

func TestRun_MissingInputFileFails(t *testing.T) {
	dir := t.TempDir()
	_, err := batch.Run(context.Background(), newEngine(t), filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.csv"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")
}

func TestRun_EmptyFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := batch.Run(context.Background(), newEngine(t), path, filepath.Join(dir, "out.csv"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestRun_CanceledContextFailsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{{"transaction_id", "amount_mxn"}}
	for i := 1; i <= 50; i++ {
		rows = append(rows, []string{strconv.Itoa(i), "100"})
	}
	in := writeCSV(t, dir, rows)
	out := filepath.Join(dir, "output.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := batch.Run(ctx, newEngine(t), in, out, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// An interrupted run must not leave a half-annotated table behind.
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file may be written on cancellation")
}

func TestRun_LargeInputKeepsOrderUnderParallelism(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{{"transaction_id", "amount_mxn", "ip_risk"}}
	for i := 1; i <= 200; i++ {
		risk := "low"
		if i%3 == 0 {
			risk = "high"
		}
		rows = append(rows, []string{strconv.Itoa(i), "100", risk})
	}
	in := writeCSV(t, dir, rows)
	out := filepath.Join(dir, "output.csv")

	sum, err := batch.Run(context.Background(), newEngine(t), in, out, 8)
	require.NoError(t, err)
	assert.Equal(t, 200, sum.Rows)

	got := readCSV(t, out)
	require.Len(t, got, 201)
	for i := 1; i <= 200; i++ {
		require.Equal(t, strconv.Itoa(i), got[i][0])
		wantDecision := "ACCEPTED"
		if i%3 == 0 {
			wantDecision = "IN_REVIEW"
		}
		require.Equal(t, wantDecision, got[i][3], "row %d", i)
	}
}
