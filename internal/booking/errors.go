package booking

import (
	"strings"
)

// ValidationStage distinguishes the generic structural checks from the
// asset-class-specific validator pass.
type ValidationStage string

const (
	StageGeneric ValidationStage = "generic"
	StageAsset   ValidationStage = "asset"
)

// ValidationError reports why a booking was rejected. It is always raised
// before any persistence or notification, so a failed booking leaves no
// partial state. Callers can fix the request and resubmit.
type ValidationError struct {
	Stage      ValidationStage
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func newGenericValidationError(rule string) *ValidationError {
	return &ValidationError{Stage: StageGeneric, Violations: []string{rule}}
}

func newAssetValidationError(violations []string) *ValidationError {
	return &ValidationError{Stage: StageAsset, Violations: violations}
}
