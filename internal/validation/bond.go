package validation

import (
	"TradeBook/internal/trade"
)

// BondValidator enforces bond booking rules: shared structural checks plus
// mandatory MaturityDate and CreditRating attributes.
type BondValidator struct{}

func NewBondValidator() *BondValidator {
	return &BondValidator{}
}

func (v *BondValidator) SupportedAssetClass() trade.AssetClass {
	return trade.AssetClassBond
}

func (v *BondValidator) IsValid(req *trade.Request) bool {
	return len(v.Validate(req)) == 0
}

func (v *BondValidator) Validate(req *trade.Request) []string {
	var violations []string

	if req.AssetClass != trade.AssetClassBond {
		violations = append(violations, "invalid asset class for bond validator")
	}

	if !ValidInstrumentID(req.InstrumentID) {
		violations = append(violations, "invalid instrument ID for bond")
	}

	if !ValidNotional(req.Notional) {
		violations = append(violations, "invalid notional amount")
	}

	if req.Additional["MaturityDate"] == "" {
		violations = append(violations, "MaturityDate is required for bond trades")
	}

	if req.Additional["CreditRating"] == "" {
		violations = append(violations, "CreditRating is required for bond trades")
	}

	return violations
}
