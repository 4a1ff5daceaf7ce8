package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = holdings normalization, W2xxx = cache tiers.
type WarningCode string

const (
	WarnHoldingsRescaled WarningCode = "W1001" // holdings divided by 100 because the maximum exceeded 100%
	WarnServedStale      WarningCode = "W2001" // upstream refresh failed, stale durable data served instead
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
