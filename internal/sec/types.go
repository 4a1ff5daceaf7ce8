package sec

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/shopspring/decimal"
)

// page is the standard SEC Open Data envelope
type page[T any] struct {
	Message     string `json:"message"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	PageSize    int    `json:"page_size"`
	TotalItems  int    `json:"total_items"`
	Items       []T    `json:"items"`
}

// Text is a string field the API sometimes sends as a bare number
type Text string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
		return nil
	}
	*t = Text(b)
	return nil
}

// FundProfile is one item of /v1/fund/general-info/profiles
type FundProfile struct {
	ProjID               string `json:"proj_id"`
	UniqueID             string `json:"unique_id"`
	ProjNameTH           string `json:"proj_name_th"`
	ProjNameEN           string `json:"proj_name_en"`
	ProjAbbrName         string `json:"proj_abbr_name"`
	CompNameTH           string `json:"comp_name_th"`
	CompNameEN           string `json:"comp_name_en"`
	PolicyDesc           string `json:"policy_desc"`
	InvestmentPolicyDesc string `json:"investment_policy_desc"`
	FeederfundMasterFund string `json:"feederfund_master_fund"`
	FeederfundCountry    string `json:"feederfund_country"`
	FeederfundISIN       string `json:"feederfund_isin"`
	RiskSpectrum         Text   `json:"risk_spectrum"`
}

// AMC is an asset management company
type AMC struct {
	UniqueID string `json:"unique_id"`
	NameTH   string `json:"name_th"`
	NameEN   string `json:"name_en"`
}

// TopHolding is one factsheet top-5 entry
type TopHolding struct {
	ProjID     string              `json:"proj_id"`
	AssetName  string              `json:"asset_name"`
	AssetRatio decimal.NullDecimal `json:"asset_ratio"`
	AsOfDate   models.Timestamp    `json:"as_of_date"`
}

// PortfolioItem is one line of the quarterly outstanding portfolio
type PortfolioItem struct {
	ProjID         string           `json:"proj_id"`
	Period         Text             `json:"period"`
	Issuer         string           `json:"issuer"`
	IssueCode      string           `json:"issue_code"`
	ISINCode       string           `json:"isin_code"`
	AssetType      string           `json:"asset_type"`
	AssetliabValue decimal.Decimal  `json:"assetliab_value"`
	PercentNAV     decimal.Decimal  `json:"percent_nav"`
	AsOfDate       models.Timestamp `json:"as_of_date"`
}
