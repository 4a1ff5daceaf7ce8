package alphavantage

// ETFProfileResponse represents the AlphaVantage ETF_PROFILE response
type ETFProfileResponse struct {
	NetAssets string       `json:"net_assets"`
	Holdings  []ETFHolding `json:"holdings"`
	Sectors   []ETFSector  `json:"sectors"`

	// AlphaVantage answers 200 with one of these set when it refuses a request
	Information  string `json:"Information"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

// ETFHolding represents a single ETF holding
type ETFHolding struct {
	Symbol string `json:"symbol"`
	Name   string `json:"description"`
	Weight string `json:"weight"`
}

// ETFSector represents a sector allocation of an ETF
type ETFSector struct {
	Sector string `json:"sector"`
	Weight string `json:"weight"`
}

// GlobalQuoteResponse represents the AlphaVantage GLOBAL_QUOTE response
type GlobalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
}

// refusal returns the message AlphaVantage sent instead of data, if any
func (r *ETFProfileResponse) refusal() string {
	switch {
	case r.ErrorMessage != "":
		return r.ErrorMessage
	case r.Information != "":
		return r.Information
	case r.Note != "":
		return r.Note
	}
	return ""
}
