package models

import (
	"time"
)

// Feeder mapping confidence levels
const (
	MappingConfidenceAuto     = "auto"
	MappingConfidenceUnmapped = "unmapped"
)

// ThaiFund is a mutual fund registered with the SEC of Thailand
type ThaiFund struct {
	ProjID               string     `json:"proj_id"`
	ProjNameTH           string     `json:"proj_name_th"`
	ProjNameEN           string     `json:"proj_name_en"`
	ProjAbbrName         string     `json:"proj_abbr_name,omitempty"`
	AMCNameTH            string     `json:"amc_name_th,omitempty"`
	AMCNameEN            string     `json:"amc_name_en,omitempty"`
	FundType             string     `json:"fund_type,omitempty"`
	PolicyDesc           string     `json:"policy_desc,omitempty"`
	IsFeederFund         bool       `json:"is_feeder_fund"`
	FeederfundMasterFund string     `json:"feederfund_master_fund,omitempty"`
	FeederfundCountry    string     `json:"feederfund_country,omitempty"`
	MasterFundTicker     *string    `json:"master_fund_ticker"`
	RiskLevel            string     `json:"risk_level,omitempty"`
	ViewCount            int        `json:"view_count"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

// FeederMasterMapping links a Thai feeder fund to the foreign master fund it invests in
type FeederMasterMapping struct {
	ThaiFundProjID   string  `json:"thai_fund_proj_id"`
	MasterFundName   string  `json:"master_fund_name"`
	MasterFundTicker *string `json:"master_fund_ticker"`
	MasterFundISIN   string  `json:"master_fund_isin,omitempty"`
	Confidence       string  `json:"confidence"`
}

// ThaiFundHolding is one line of a Thai fund's quarterly outstanding portfolio
type ThaiFundHolding struct {
	ThaiFundProjID string  `json:"thai_fund_proj_id"`
	Period         string  `json:"period"`
	Issuer         string  `json:"issuer"`
	IssueCode      string  `json:"issue_code"`
	ISINCode       string  `json:"isin_code"`
	AssetType      string  `json:"asset_type"`
	Value          float64 `json:"value"`
	PercentNAV     float64 `json:"percent_nav"`
}

// ThaiTopHolding is a factsheet top-5 holding entry
type ThaiTopHolding struct {
	AssetName  string     `json:"asset_name"`
	AssetRatio *float64   `json:"asset_ratio"`
	AsOf       *Timestamp `json:"as_of,omitempty"`
}
