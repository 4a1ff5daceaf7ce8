package services

import "errors"

var (
	// ErrFundNotFound is returned when no tier has data for a ticker
	ErrFundNotFound = errors.New("fund not found")
	// ErrNotMapped is returned when a feeder fund has no known master fund ticker
	ErrNotMapped = errors.New("feeder fund is not mapped to a master fund")
	// ErrInvalidUUID is returned for malformed anonymous or session ids
	ErrInvalidUUID = errors.New("invalid UUID")
	// ErrInvalidEventType is returned for event types outside the allowlist
	ErrInvalidEventType = errors.New("invalid event type")
)
