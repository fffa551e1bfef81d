package api

import (
	"fmt"
	"time"

	"TradeBook/internal/trade"
)

// Wire DTOs for the JSON request/reply API.

// BookRequest is the inbound booking submission.
type BookRequest struct {
	TradeID        string            `json:"trade_id,omitempty"`
	AssetClass     string            `json:"asset_class"`
	InstrumentID   string            `json:"instrument_id"`
	Counterparty   string            `json:"counterparty"`
	Notional       float64           `json:"notional"`
	Currency       string            `json:"currency"`
	Side           string            `json:"side"`
	TradeDate      string            `json:"trade_date,omitempty"`      // RFC3339
	SettlementDate string            `json:"settlement_date,omitempty"` // RFC3339, defaults to T+2
	Additional     map[string]string `json:"additional,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	CorrelationID  string            `json:"correlation_id,omitempty"`
	CreatedBy      string            `json:"created_by,omitempty"`
}

// GetRequest looks a trade up by ID.
type GetRequest struct {
	TradeID string `json:"trade_id"`
}

// CounterpartyRequest lists trades for one counterparty.
type CounterpartyRequest struct {
	Counterparty string `json:"counterparty"`
}

// ErrorBody is the structured error carried in responses.
type ErrorBody struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// TradeResponse answers book and get requests.
type TradeResponse struct {
	Trade *trade.Record `json:"trade,omitempty"`
	Error *ErrorBody    `json:"error,omitempty"`
}

// TradesResponse answers list requests.
type TradesResponse struct {
	Trades []*trade.Record `json:"trades"`
	Error  *ErrorBody      `json:"error,omitempty"`
}

// Error codes on the wire.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeInternal         = "internal"
)

// settlementLagDays is the default settlement convention (T+2) applied when
// the caller omits a settlement date.
const settlementLagDays = 2

// toDomain converts the wire DTO into a trade.Request, applying defaults:
// trade date = now when omitted, settlement = trade date + 2 business days.
func (r *BookRequest) toDomain(now func() time.Time) (*trade.Request, error) {
	assetClass, err := trade.ParseAssetClass(r.AssetClass)
	if err != nil {
		return nil, err
	}

	side := trade.SideBuy
	if r.Side != "" {
		side, err = trade.ParseSide(r.Side)
		if err != nil {
			return nil, err
		}
	}

	tradeDate := now().UTC()
	if r.TradeDate != "" {
		tradeDate, err = time.Parse(time.RFC3339, r.TradeDate)
		if err != nil {
			return nil, fmt.Errorf("invalid trade_date: %w", err)
		}
	}

	settlementDate := trade.AddBusinessDays(tradeDate, settlementLagDays)
	if r.SettlementDate != "" {
		settlementDate, err = time.Parse(time.RFC3339, r.SettlementDate)
		if err != nil {
			return nil, fmt.Errorf("invalid settlement_date: %w", err)
		}
	}

	return &trade.Request{
		TradeID:        r.TradeID,
		AssetClass:     assetClass,
		InstrumentID:   r.InstrumentID,
		Counterparty:   r.Counterparty,
		Notional:       r.Notional,
		Currency:       r.Currency,
		Side:           side,
		TradeDate:      tradeDate,
		SettlementDate: settlementDate,
		Additional:     r.Additional,
		IdempotencyKey: r.IdempotencyKey,
		CorrelationID:  r.CorrelationID,
		CreatedBy:      r.CreatedBy,
	}, nil
}
