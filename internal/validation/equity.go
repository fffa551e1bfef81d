package validation

import (
	"TradeBook/internal/trade"
)

// EquityValidator enforces equity booking rules: shared structural checks
// plus a mandatory Exchange attribute.
type EquityValidator struct{}

func NewEquityValidator() *EquityValidator {
	return &EquityValidator{}
}

func (v *EquityValidator) SupportedAssetClass() trade.AssetClass {
	return trade.AssetClassEquity
}

func (v *EquityValidator) IsValid(req *trade.Request) bool {
	return len(v.Validate(req)) == 0
}

func (v *EquityValidator) Validate(req *trade.Request) []string {
	var violations []string

	// Mismatched routing is itself a violation.
	if req.AssetClass != trade.AssetClassEquity {
		violations = append(violations, "invalid asset class for equity validator")
	}

	if !ValidInstrumentID(req.InstrumentID) {
		violations = append(violations, "invalid instrument ID for equity")
	}

	if !ValidNotional(req.Notional) {
		violations = append(violations, "invalid notional amount")
	}

	if req.Additional["Exchange"] == "" {
		violations = append(violations, "Exchange is required for equity trades")
	}

	return violations
}
