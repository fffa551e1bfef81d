package validation

import (
	"TradeBook/internal/trade"
)

// AssetValidator checks asset-class-specific booking rules.
// Implementations must keep IsValid consistent with Validate: IsValid is
// true exactly when Validate returns no violations.
type AssetValidator interface {
	// SupportedAssetClass is the class this validator is registered for.
	SupportedAssetClass() trade.AssetClass

	// Validate returns the ordered list of rule violations; empty = valid.
	Validate(req *trade.Request) []string

	// IsValid reports whether Validate would return no violations.
	IsValid(req *trade.Request) bool
}

// Registry dispatches validators by exact asset-class match. The first
// validator registered for a class wins; later registrations for the same
// class are ignored, matching the insertion-order scan of the original
// engine. Classes with no registered validator are accepted without
// asset-specific checks.
type Registry struct {
	byClass map[trade.AssetClass]AssetValidator
}

func NewRegistry() *Registry {
	return &Registry{byClass: make(map[trade.AssetClass]AssetValidator)}
}

// Register adds a validator. Duplicate registrations for an asset class are
// dropped silently.
func (r *Registry) Register(v AssetValidator) {
	class := v.SupportedAssetClass()
	if _, exists := r.byClass[class]; exists {
		return
	}
	r.byClass[class] = v
}

// Lookup returns the validator for class, or false when none is registered.
func (r *Registry) Lookup(class trade.AssetClass) (AssetValidator, bool) {
	v, ok := r.byClass[class]
	return v, ok
}
