// bookctl is a small client for the TradeBook request/reply API. It books a
// trade from command-line flags and prints the JSON response, or looks up
// existing trades.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"TradeBook/internal/api"
)

func main() {
	var (
		natsURL      = flag.String("nats", envOrDefault("TRADEBOOK_NATS_URL", "nats://localhost:4222"), "NATS server URL")
		op           = flag.String("op", "book", "operation: book | get | by-counterparty | all")
		assetClass   = flag.String("asset-class", "Equity", "asset class: Equity | Bond | Derivative | Commodity | Currency")
		instrument   = flag.String("instrument", "", "instrument ID")
		counterparty = flag.String("counterparty", "", "counterparty name")
		notional     = flag.Float64("notional", 0, "notional amount")
		currency     = flag.String("currency", "USD", "currency code")
		side         = flag.String("side", "Buy", "side: Buy | Sell")
		additional   = flag.String("additional", "", "comma-separated key=value pairs, e.g. Exchange=NASDAQ")
		idemKey      = flag.String("idempotency-key", "", "idempotency key")
		tradeID      = flag.String("trade-id", "", "trade ID (for -op get)")
		timeout      = flag.Duration("timeout", 5*time.Second, "request timeout")
	)
	flag.Parse()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		fatalf("connect %s: %v", *natsURL, err)
	}
	defer nc.Close()

	var subject string
	var payload interface{}

	switch *op {
	case "book":
		payload = api.BookRequest{
			AssetClass:     *assetClass,
			InstrumentID:   *instrument,
			Counterparty:   *counterparty,
			Notional:       *notional,
			Currency:       *currency,
			Side:           *side,
			Additional:     parsePairs(*additional),
			IdempotencyKey: *idemKey,
			CreatedBy:      "bookctl",
		}
		subject = api.SubjectBook
	case "get":
		payload = api.GetRequest{TradeID: *tradeID}
		subject = api.SubjectGet
	case "by-counterparty":
		payload = api.CounterpartyRequest{Counterparty: *counterparty}
		subject = api.SubjectByCounterparty
	case "all":
		payload = struct{}{}
		subject = api.SubjectAll
	default:
		fatalf("unknown op %q", *op)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		fatalf("marshal request: %v", err)
	}

	msg, err := nc.Request(subject, data, *timeout)
	if err != nil {
		fatalf("request %s: %v", subject, err)
	}

	fmt.Println(string(msg.Data))
}

func parsePairs(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "bookctl: "+format+"\n", args...)
	os.Exit(1)
}
