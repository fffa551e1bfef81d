package trade_test

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"TradeBook/internal/trade"
)

// ============================================================================
// Test: Enum parsing
// ============================================================================

func TestParseAssetClass_RoundTrip(t *testing.T) {
	classes := []trade.AssetClass{
		trade.AssetClassEquity,
		trade.AssetClassBond,
		trade.AssetClassDerivative,
		trade.AssetClassCommodity,
		trade.AssetClassCurrency,
	}
	for _, ac := range classes {
		got, err := trade.ParseAssetClass(ac.String())
		if err != nil {
			t.Errorf("ParseAssetClass(%q) failed: %v", ac.String(), err)
		}
		if got != ac {
			t.Errorf("round trip %v -> %q -> %v", ac, ac.String(), got)
		}
	}

	if _, err := trade.ParseAssetClass("Crypto"); err == nil {
		t.Error("unknown asset class should be rejected")
	}
	if _, err := trade.ParseAssetClass("equity"); err == nil {
		t.Error("asset class parsing is case sensitive")
	}
}

func TestParseSide_RoundTrip(t *testing.T) {
	for _, side := range []trade.Side{trade.SideBuy, trade.SideSell} {
		got, err := trade.ParseSide(side.String())
		if err != nil {
			t.Errorf("ParseSide(%q) failed: %v", side.String(), err)
		}
		if got != side {
			t.Errorf("round trip %v -> %q -> %v", side, side.String(), got)
		}
	}
	if _, err := trade.ParseSide("Short"); err == nil {
		t.Error("unknown side should be rejected")
	}
}

// ============================================================================
// Test: Record cloning
// ============================================================================

func TestRecordClone_Independent(t *testing.T) {
	orig := &trade.Record{
		TradeID:    "TRD-1",
		Notional:   100,
		Additional: map[string]string{"Exchange": "NASDAQ"},
	}

	clone := orig.Clone()
	clone.Notional = 200
	clone.Additional["Exchange"] = "LSE"
	clone.Additional["extra"] = "x"

	if orig.Notional != 100 {
		t.Error("clone shares scalar state with the original")
	}
	if orig.Additional["Exchange"] != "NASDAQ" || len(orig.Additional) != 1 {
		t.Error("clone shares the Additional map with the original")
	}
}

func TestRecordClone_Nil(t *testing.T) {
	var r *trade.Record
	if r.Clone() != nil {
		t.Error("cloning a nil record should yield nil")
	}
}

// ============================================================================
// Test: Business day arithmetic
// ============================================================================

func TestAddBusinessDays(t *testing.T) {
	// 2026-08-27 is a Thursday.
	thursday := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"thu_plus_1", thursday, 1, thursday.AddDate(0, 0, 1)},                // Friday
		{"thu_plus_2_skips_weekend", thursday, 2, thursday.AddDate(0, 0, 4)}, // Monday
		{"fri_plus_2", thursday.AddDate(0, 0, 1), 2, thursday.AddDate(0, 0, 5)},
		{"sat_plus_1", thursday.AddDate(0, 0, 2), 1, thursday.AddDate(0, 0, 4)},
		{"zero_days", thursday, 0, thursday},
	}
	for _, tc := range cases {
		if got := trade.AddBusinessDays(tc.start, tc.n); !got.Equal(tc.want) {
			t.Errorf("%s: AddBusinessDays(%s, %d) = %s, want %s",
				tc.name, tc.start.Format("2006-01-02"), tc.n,
				got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

// ============================================================================
// Test: ID generation
// ============================================================================

func TestIDGenerator_TradeIDFormat(t *testing.T) {
	gen := trade.NewIDGeneratorWithSeed(1)
	pattern := regexp.MustCompile(`^TRD-\d+-\d{6}$`)

	for i := 0; i < 10; i++ {
		id := gen.TradeID()
		if !pattern.MatchString(id) {
			t.Errorf("trade ID %q does not match TRD-<seconds>-<6 digits>", id)
		}
	}
}

func TestIDGenerator_UniqueTradeID(t *testing.T) {
	gen := trade.NewIDGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.UniqueTradeID()
		if !strings.HasPrefix(id, "TRD-") {
			t.Fatalf("unique trade ID %q should be TRD-prefixed", id)
		}
		if seen[id] {
			t.Fatalf("duplicate unique trade ID %q", id)
		}
		seen[id] = true
	}
}

func TestIDGenerator_EventAndCorrelationIDs(t *testing.T) {
	gen := trade.NewIDGenerator()
	if id := gen.EventID(); !strings.HasPrefix(id, "EVT-") {
		t.Errorf("event ID %q should be EVT-prefixed", id)
	}
	if id := gen.CorrelationID(); !strings.HasPrefix(id, "CORR-") {
		t.Errorf("correlation ID %q should be CORR-prefixed", id)
	}
	if gen.EventID() == gen.EventID() {
		t.Error("event IDs should be unique")
	}
}
