package trade

import (
	"fmt"
	"time"
)

// AssetClass categorizes the instrument being traded and selects which
// asset-specific validation rules apply.
type AssetClass int32

const (
	AssetClassUnknown AssetClass = iota
	AssetClassEquity
	AssetClassBond
	AssetClassDerivative
	AssetClassCommodity
	AssetClassCurrency
)

// Side is the direction of the trade.
type Side int32

const (
	SideBuy Side = iota
	SideSell
)

// TradeStatus is the lifecycle state of a booked trade. Only the transition
// to Booked is performed by the booking pipeline; the remaining states exist
// for downstream consumers.
type TradeStatus int32

const (
	StatusPending TradeStatus = iota
	StatusBooked
	StatusSettled
	StatusCancelled
	StatusFailed
)

func (ac AssetClass) String() string {
	switch ac {
	case AssetClassEquity:
		return "Equity"
	case AssetClassBond:
		return "Bond"
	case AssetClassDerivative:
		return "Derivative"
	case AssetClassCommodity:
		return "Commodity"
	case AssetClassCurrency:
		return "Currency"
	default:
		return "Unknown"
	}
}

// ParseAssetClass maps a wire string to an AssetClass.
func ParseAssetClass(s string) (AssetClass, error) {
	switch s {
	case "Equity":
		return AssetClassEquity, nil
	case "Bond":
		return AssetClassBond, nil
	case "Derivative":
		return AssetClassDerivative, nil
	case "Commodity":
		return AssetClassCommodity, nil
	case "Currency":
		return AssetClassCurrency, nil
	default:
		return AssetClassUnknown, fmt.Errorf("unknown asset class %q", s)
	}
}

func (s Side) String() string {
	if s == SideSell {
		return "Sell"
	}
	return "Buy"
}

// ParseSide maps a wire string to a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "Buy":
		return SideBuy, nil
	case "Sell":
		return SideSell, nil
	default:
		return SideBuy, fmt.Errorf("unknown side %q", s)
	}
}

func (ts TradeStatus) String() string {
	switch ts {
	case StatusPending:
		return "Pending"
	case StatusBooked:
		return "Booked"
	case StatusSettled:
		return "Settled"
	case StatusCancelled:
		return "Cancelled"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Request is a caller-constructed booking submission. It is treated as
// immutable once handed to the booking service.
type Request struct {
	// TradeID is optional; the service generates one when empty.
	TradeID string

	AssetClass   AssetClass
	InstrumentID string
	Counterparty string
	Notional     float64
	Currency     string
	Side         Side

	TradeDate      time.Time
	SettlementDate time.Time

	// Additional carries asset-specific attributes, e.g. "Exchange" for
	// equities or "MaturityDate"/"CreditRating" for bonds.
	Additional map[string]string

	// IdempotencyKey identifies a logical submission. Repeated submissions
	// under the same key yield at most one stored record.
	IdempotencyKey string

	CorrelationID string
	CreatedBy     string
}

// Record is the stored result of a successful booking. Identity fields
// (TradeID, IdempotencyKey) never change once saved.
type Record struct {
	TradeID        string            `json:"trade_id"`
	AssetClass     AssetClass        `json:"asset_class"`
	InstrumentID   string            `json:"instrument_id"`
	Counterparty   string            `json:"counterparty"`
	Notional       float64           `json:"notional"`
	Currency       string            `json:"currency"`
	Side           Side              `json:"side"`
	TradeDate      time.Time         `json:"trade_date"`
	SettlementDate time.Time         `json:"settlement_date"`
	Additional     map[string]string `json:"additional,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	CorrelationID  string            `json:"correlation_id,omitempty"`
	CreatedBy      string            `json:"created_by,omitempty"`
	Status         TradeStatus       `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Clone returns an independent deep copy. The store hands out clones so
// callers never hold a mutable alias into stored state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.Additional != nil {
		out.Additional = make(map[string]string, len(r.Additional))
		for k, v := range r.Additional {
			out.Additional[k] = v
		}
	}
	return &out
}

// AddBusinessDays advances t by n business days, skipping Saturdays and
// Sundays. Used for default T+2 settlement dates.
func AddBusinessDays(t time.Time, n int) time.Time {
	added := 0
	for added < n {
		t = t.AddDate(0, 0, 1)
		wd := t.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return t
}
