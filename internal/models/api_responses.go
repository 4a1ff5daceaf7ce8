package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the body of the root endpoint
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is returned by /health and by write endpoints that have nothing else to say
type StatusResponse struct {
	Status string `json:"status"`
}

// ScreenResponse wraps screening results
type ScreenResponse struct {
	Results []ScreenResult `json:"results"`
}

// TrendingResponse wraps trending funds
type TrendingResponse struct {
	Results []TrendingFund `json:"results"`
}

// SearchResponse wraps ticker search results
type SearchResponse struct {
	Results []FundSearchResult `json:"results"`
}

// ThaiFundSearchResponse wraps Thai fund search and feeder listings
type ThaiFundSearchResponse struct {
	Results []ThaiFund `json:"results"`
}

// AMCListResponse lists distinct asset management companies
type AMCListResponse struct {
	Results []string `json:"results"`
}

// ThaiFundInfoResponse is the body of /api/thai-fund-info/:ticker
type ThaiFundInfoResponse struct {
	FundInfo     ThaiFund         `json:"fund_info"`
	Top5Holdings []ThaiTopHolding `json:"top5_holdings"`
}

// MasterHoldingsResponse pairs a feeder fund with the composition of its master fund
type MasterHoldingsResponse struct {
	Feeder  ThaiFund            `json:"feeder"`
	Mapping FeederMasterMapping `json:"mapping"`
	Master  *FundResponse       `json:"master"`
}
