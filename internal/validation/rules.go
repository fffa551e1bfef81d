package validation

import "math"

// Shared structural rules applied by every asset validator.

const (
	maxInstrumentIDLen = 50
	maxCounterpartyLen = 100

	// maxNotional is a sanity ceiling, not a business limit.
	maxNotional = 1e15
)

var validCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "JPY": {}, "CHF": {},
	"CAD": {}, "AUD": {}, "NZD": {}, "SEK": {}, "NOK": {}, "DKK": {},
}

// ValidInstrumentID reports whether id is non-empty and within length bounds.
func ValidInstrumentID(id string) bool {
	return id != "" && len(id) <= maxInstrumentIDLen
}

// ValidNotional reports whether n is finite, positive and below the sanity
// ceiling.
func ValidNotional(n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	return n > 0 && n < maxNotional
}

// ValidCounterparty reports whether name is non-empty and within length
// bounds.
func ValidCounterparty(name string) bool {
	return name != "" && len(name) <= maxCounterpartyLen
}

// ValidCurrency reports whether ccy is one of the supported ISO codes.
func ValidCurrency(ccy string) bool {
	_, ok := validCurrencies[ccy]
	return ok
}
