package models

import (
	"time"
)

// DefaultCurrency is used when the provider reports no currency for a fund
const DefaultCurrency = "USD"

// FundInfo describes the fund itself.
// ChangePct is persisted for the trending list but is not part of the fund payload.
type FundInfo struct {
	Ticker    string   `json:"ticker"`
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	Currency  string   `json:"currency"`
	ChangePct *float64 `json:"-"`
}

// Holding is a single constituent of a fund, Pct is a percentage in [0,100]
type Holding struct {
	Ticker string  `json:"ticker"`
	Name   string  `json:"name"`
	Pct    float64 `json:"pct"`
}

// CountryWeight is the summed holding percentage for one ISO 3166-1 numeric country code
type CountryWeight struct {
	CountryCode string  `json:"country_code"`
	WeightPct   float64 `json:"weight_pct"`
}

// SectorWeight is the provider-reported weight of a sector within a fund
type SectorWeight struct {
	Sector    string  `json:"sector"`
	WeightPct float64 `json:"weight_pct"`
}

// FundResponse is the full composition of a fund as served by /api/fund/:ticker.
// LastUpdated is nil only for results that have not been persisted yet.
type FundResponse struct {
	Fund           FundInfo        `json:"fund"`
	Holdings       []Holding       `json:"holdings"`
	CountryWeights []CountryWeight `json:"country_weights"`
	SectorWeights  []SectorWeight  `json:"sector_weights"`
	LastUpdated    *time.Time      `json:"last_updated"`
}

// ScreenResult is one fund that holds the screened ticker at or above the requested weight
type ScreenResult struct {
	FundTicker    string  `json:"fund_ticker"`
	FundName      string  `json:"fund_name"`
	HoldingTicker string  `json:"holding_ticker"`
	WeightPct     float64 `json:"weight_pct"`
}

// TrendingFund is a recently refreshed fund
type TrendingFund struct {
	Ticker    string   `json:"ticker"`
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	ChangePct *float64 `json:"change_pct"`
}

// FundSearchResult is a ticker match returned by /api/search
type FundSearchResult struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}
