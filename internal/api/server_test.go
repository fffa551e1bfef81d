package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"TradeBook/internal/booking"
	"TradeBook/internal/event"
	"TradeBook/internal/store"
	"TradeBook/internal/trade"
	"TradeBook/internal/validation"
)

// The handler functions take raw payloads and return raw replies, so they are
// exercised here without a broker. Transport wiring is covered by the
// integration path in cmd/tradebook.

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *event.TradeBooked) error { return nil }

func newTestServer() *Server {
	st := store.NewMemoryStore()
	svc := booking.NewService(st, nopPublisher{}, trade.NewIDGeneratorWithSeed(7), zerolog.Nop(), nil)
	svc.AddValidator(validation.NewEquityValidator())
	svc.AddValidator(validation.NewBondValidator())
	return NewServer(nil, svc, zerolog.Nop(), nil)
}

func validBookPayload() []byte {
	data, _ := json.Marshal(BookRequest{
		AssetClass:     "Equity",
		InstrumentID:   "MSFT",
		Counterparty:   "Goldman Sachs",
		Notional:       1_000_000,
		Currency:       "USD",
		Side:           "Buy",
		Additional:     map[string]string{"Exchange": "NASDAQ"},
		IdempotencyKey: "EQ-ORD-1001",
	})
	return data
}

// ============================================================================
// Test: handleBook
// ============================================================================

func TestHandleBook_Success(t *testing.T) {
	s := newTestServer()

	var resp TradeResponse
	if err := json.Unmarshal(s.handleBook(context.Background(), validBookPayload()), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Trade == nil || resp.Trade.Status != trade.StatusBooked {
		t.Fatalf("expected a booked trade, got %+v", resp.Trade)
	}
	if resp.Trade.IdempotencyKey != "EQ-ORD-1001" {
		t.Errorf("idempotency key = %q", resp.Trade.IdempotencyKey)
	}
}

func TestHandleBook_MalformedJSON(t *testing.T) {
	s := newTestServer()

	var resp TradeResponse
	json.Unmarshal(s.handleBook(context.Background(), []byte("{not json")), &resp)
	if resp.Error == nil || resp.Error.Code != codeBadRequest {
		t.Fatalf("expected bad_request, got %+v", resp.Error)
	}
}

func TestHandleBook_UnknownAssetClass(t *testing.T) {
	s := newTestServer()
	data, _ := json.Marshal(BookRequest{AssetClass: "Crypto", InstrumentID: "BTC"})

	var resp TradeResponse
	json.Unmarshal(s.handleBook(context.Background(), data), &resp)
	if resp.Error == nil || resp.Error.Code != codeBadRequest {
		t.Fatalf("expected bad_request, got %+v", resp.Error)
	}
}

func TestHandleBook_ValidationFailure(t *testing.T) {
	s := newTestServer()
	data, _ := json.Marshal(BookRequest{
		AssetClass:   "Equity",
		InstrumentID: "MSFT",
		Counterparty: "",
		Notional:     -1000,
		Currency:     "USD",
	})

	var resp TradeResponse
	json.Unmarshal(s.handleBook(context.Background(), data), &resp)
	if resp.Error == nil || resp.Error.Code != codeValidationFailed {
		t.Fatalf("expected validation_failed, got %+v", resp.Error)
	}
	if len(resp.Error.Violations) == 0 {
		t.Error("violations should be carried on the wire")
	}
}

func TestHandleBook_IdempotentReplay(t *testing.T) {
	s := newTestServer()

	var first, second TradeResponse
	json.Unmarshal(s.handleBook(context.Background(), validBookPayload()), &first)
	json.Unmarshal(s.handleBook(context.Background(), validBookPayload()), &second)

	if first.Trade == nil || second.Trade == nil {
		t.Fatal("both submissions should return a trade")
	}
	if first.Trade.TradeID != second.Trade.TradeID {
		t.Errorf("replay returned a different trade: %q vs %q",
			first.Trade.TradeID, second.Trade.TradeID)
	}
}

// ============================================================================
// Test: handleGet / listings
// ============================================================================

func TestHandleGet(t *testing.T) {
	s := newTestServer()

	var booked TradeResponse
	json.Unmarshal(s.handleBook(context.Background(), validBookPayload()), &booked)

	data, _ := json.Marshal(GetRequest{TradeID: booked.Trade.TradeID})
	var resp TradeResponse
	json.Unmarshal(s.handleGet(context.Background(), data), &resp)
	if resp.Trade == nil || resp.Trade.TradeID != booked.Trade.TradeID {
		t.Fatalf("expected the booked trade, got %+v", resp)
	}

	data, _ = json.Marshal(GetRequest{TradeID: "TRD-MISSING"})
	json.Unmarshal(s.handleGet(context.Background(), data), &resp)
	if resp.Error == nil || resp.Error.Code != codeNotFound {
		t.Fatalf("expected not_found, got %+v", resp.Error)
	}
}

func TestHandleByCounterpartyAndAll(t *testing.T) {
	s := newTestServer()
	json.Unmarshal(s.handleBook(context.Background(), validBookPayload()), new(TradeResponse))

	data, _ := json.Marshal(CounterpartyRequest{Counterparty: "Goldman Sachs"})
	var list TradesResponse
	json.Unmarshal(s.handleByCounterparty(context.Background(), data), &list)
	if len(list.Trades) != 1 {
		t.Errorf("by_counterparty returned %d trades, want 1", len(list.Trades))
	}

	json.Unmarshal(s.handleAll(context.Background(), nil), &list)
	if len(list.Trades) != 1 {
		t.Errorf("all returned %d trades, want 1", len(list.Trades))
	}
}

// ============================================================================
// Test: wire conversion defaults
// ============================================================================

func TestToDomain_Defaults(t *testing.T) {
	// 2026-08-27 is a Thursday; T+2 crosses the weekend to Monday.
	now := time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC)
	wire := &BookRequest{AssetClass: "Equity", InstrumentID: "MSFT"}

	req, err := wire.toDomain(func() time.Time { return now })
	if err != nil {
		t.Fatalf("toDomain failed: %v", err)
	}
	if !req.TradeDate.Equal(now) {
		t.Errorf("trade date = %s, want now", req.TradeDate)
	}
	wantSettle := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	if !req.SettlementDate.Equal(wantSettle) {
		t.Errorf("settlement date = %s, want %s (T+2 over the weekend)",
			req.SettlementDate.Format("2006-01-02"), wantSettle.Format("2006-01-02"))
	}
	if req.Side != trade.SideBuy {
		t.Errorf("empty side should default to Buy, got %v", req.Side)
	}
}

func TestToDomain_ExplicitDates(t *testing.T) {
	wire := &BookRequest{
		AssetClass:     "Bond",
		Side:           "Sell",
		TradeDate:      "2026-03-02T00:00:00Z",
		SettlementDate: "2026-03-05T00:00:00Z",
	}

	req, err := wire.toDomain(time.Now)
	if err != nil {
		t.Fatalf("toDomain failed: %v", err)
	}
	if req.TradeDate.Format("2006-01-02") != "2026-03-02" {
		t.Errorf("trade date not honored: %s", req.TradeDate)
	}
	if req.SettlementDate.Format("2006-01-02") != "2026-03-05" {
		t.Errorf("explicit settlement date not honored: %s", req.SettlementDate)
	}

	wire.TradeDate = "03/02/2026"
	if _, err := wire.toDomain(time.Now); err == nil {
		t.Error("non-RFC3339 trade date should be rejected")
	}
}
