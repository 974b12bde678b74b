// Command sample generates a deterministic demo dataset for the batch runner
// and writes it to transactions.csv.
//
// Usage:
//
//	go run ./cmd/sample [-out transactions.csv] [-rows 300]
//
// The mix is weighted towards legitimate traffic with a handful of risky
// segments so a batch run produces all three decisions:
//   - ~70% everyday purchases from trusted and recurrent customers
//   - ~15% new users buying at night, some above the amount thresholds
//   - ~10% geo mismatches and risky email/device signals
//   - ~5%  hard-block candidates (chargebacks + high IP risk) and bot-like
//     latency outliers
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
)

var header = []string{
	"transaction_id", "amount_mxn", "customer_txn_30d", "geo_state",
	"device_type", "chargeback_count", "hour", "product_type", "latency_ms",
	"user_reputation", "device_fingerprint_risk", "ip_risk", "email_risk",
	"bin_country", "ip_country",
}

var (
	states       = []string{"Nuevo León", "CDMX", "Jalisco", "Yucatán", "Sonora"}
	devices      = []string{"mobile", "desktop"}
	products     = []string{"digital", "physical", "subscription"}
	foreignBINs  = []string{"US", "BR", "CO", "ES"}
	riskyEmails  = []string{"new_domain", "medium", "high"}
	riskyDevices = []string{"medium", "high"}
)

func main() {
	out := flag.String("out", "transactions.csv", "output CSV path")
	rows := flag.Int("rows", 300, "number of transactions to generate")
	flag.Parse()

	rng := rand.New(rand.NewSource(42)) // fixed seed for reproducibility

	records := make([][]string, 0, *rows)
	for id := 1; id <= *rows; id++ {
		var rec []string
		switch roll := rng.Float64(); {
		case roll < 0.70:
			rec = everydayPurchase(rng, id)
		case roll < 0.85:
			rec = newUserAtNight(rng, id)
		case roll < 0.95:
			rec = geoAndSignalRisk(rng, id)
		default:
			rec = hardBlockCandidate(rng, id)
		}
		records = append(records, rec)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		fmt.Fprintf(os.Stderr, "write header: %v\n", err)
		os.Exit(1)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			fmt.Fprintf(os.Stderr, "write row: %v\n", err)
			os.Exit(1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "flush: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d transactions → %s\n", len(records), *out)
}

// ─── Segments ─────────────────────────────────────────────────────────────────

// everydayPurchase is a daytime purchase from an established customer.
func everydayPurchase(rng *rand.Rand, id int) []string {
	reputation := "recurrent"
	if rng.Float64() < 0.5 {
		reputation = "trusted"
	}
	return row(id,
		50+rng.Float64()*1200, // amount_mxn
		3+rng.Intn(15),        // customer_txn_30d
		pick(rng, states), pick(rng, devices),
		0,              // chargeback_count
		8+rng.Intn(13), // hour 8..20
		pick(rng, products),
		60+rng.Intn(400), // latency_ms
		reputation, "low", "low", "low",
		"MX", "MX",
	)
}

// newUserAtNight is a first-time buyer in the night window; roughly half of
// them exceed the digital amount threshold.
func newUserAtNight(rng *rand.Rand, id int) []string {
	amount := 300 + rng.Float64()*1500
	if rng.Float64() < 0.5 {
		amount = 2600 + rng.Float64()*4000
	}
	hour := 22 + rng.Intn(4) // 22..25
	if hour > 23 {
		hour -= 24 // 0..1
	}
	return row(id,
		amount, rng.Intn(2),
		pick(rng, states), "mobile",
		0, hour, "digital",
		120+rng.Intn(600),
		"new", "low", pick(rng, []string{"low", "medium"}), pick(rng, riskyEmails),
		"MX", "MX",
	)
}

// geoAndSignalRisk mixes BIN/IP country mismatches with risky device and
// email signals.
func geoAndSignalRisk(rng *rand.Rand, id int) []string {
	return row(id,
		400+rng.Float64()*3000, rng.Intn(4),
		pick(rng, states), pick(rng, devices),
		rng.Intn(2), 10+rng.Intn(10),
		pick(rng, products),
		150+rng.Intn(900),
		pick(rng, []string{"new", "recurrent", "high_risk"}),
		pick(rng, riskyDevices), "medium", pick(rng, riskyEmails),
		pick(rng, foreignBINs), "MX",
	)
}

// hardBlockCandidate has the chargeback history and IP risk that trip the
// hard block, or an extreme-latency bot signature.
func hardBlockCandidate(rng *rand.Rand, id int) []string {
	if rng.Float64() < 0.6 {
		return row(id,
			800+rng.Float64()*5000, rng.Intn(3),
			pick(rng, states), "desktop",
			2+rng.Intn(3), rng.Intn(24),
			pick(rng, products),
			200+rng.Intn(500),
			"high_risk", "high", "high", "high",
			"MX", pick(rng, foreignBINs),
		)
	}
	return row(id,
		1000+rng.Float64()*3000, 0,
		pick(rng, states), "desktop",
		0, 2+rng.Intn(3), "digital",
		2500+rng.Intn(4000), // extreme latency
		"new", "medium", "medium", "new_domain",
		"MX", "MX",
	)
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func row(id int, amount float64, txn30d int, state, device string, chargebacks, hour int,
	product string, latencyMS int, reputation, deviceRisk, ipRisk, emailRisk, binCountry, ipCountry string) []string {
	return []string{
		strconv.Itoa(id),
		strconv.FormatFloat(amount, 'f', 2, 64),
		strconv.Itoa(txn30d),
		state,
		device,
		strconv.Itoa(chargebacks),
		strconv.Itoa(hour),
		product,
		strconv.Itoa(latencyMS),
		reputation,
		deviceRisk,
		ipRisk,
		emailRisk,
		binCountry,
		ipCountry,
	}
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}
