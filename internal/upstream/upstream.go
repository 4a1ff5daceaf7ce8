// Package upstream defines the contract every fund composition provider satisfies.
package upstream

import (
	"context"
	"errors"
	"math/rand/v2"
)

var (
	// ErrUnavailable wraps network, status, timeout and parse failures talking to a provider
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrEmpty means the provider answered but had no holdings for the ticker
	ErrEmpty = errors.New("upstream returned no holdings")
)

// WeightScale declares the unit of the raw weights in a Payload
type WeightScale int

const (
	// ScaleFraction weights are in [0,1] and must be multiplied by 100
	ScaleFraction WeightScale = iota
	// ScalePercent weights are already percentages
	ScalePercent
)

// RawHolding is a holding as reported by the provider
type RawHolding struct {
	Symbol string
	Name   string
	Weight float64
}

// RawSectorWeight is a sector weight as reported by the provider
type RawSectorWeight struct {
	Sector string
	Weight float64
}

// Payload is the raw composition of a fund before normalization.
// ChangePct is the last daily move in percent, when the provider reports one.
type Payload struct {
	Ticker    string
	Name      string
	Price     *float64
	ChangePct *float64
	Currency  string
	Holdings  []RawHolding
	Sectors   []RawSectorWeight
	Scale     WeightScale
}

// Provider fetches raw fund composition for a ticker
type Provider interface {
	FetchRaw(ctx context.Context, ticker string) (*Payload, error)
}

// userAgents is the pool of client signatures presented to providers
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Mobile/15E148 Safari/604.1",
}

// RandomUserAgent picks one signature from the pool
func RandomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// UserAgents returns a copy of the signature pool
func UserAgents() []string {
	out := make([]string, len(userAgents))
	copy(out, userAgents)
	return out
}
