package sec

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/epeers/whattheyhold/internal/httputil"
	"github.com/epeers/whattheyhold/internal/upstream"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient("test-key", srv.URL+"/", 2*time.Second).
		WithRetry(httputil.NoRetry).
		WithThrottle(0)
}

func TestFundProfiles_SendsKeyAndParsesPage(t *testing.T) {
	var gotKey, gotPath, gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("current_page")
		w.Write([]byte(`{
			"message": "success",
			"current_page": 1,
			"total_pages": 3,
			"total_items": 2,
			"items": [
				{"proj_id": "M0001_2560", "proj_name_en": "K US Equity", "proj_abbr_name": "K-USA",
				 "comp_name_en": "KASIKORN ASSET MANAGEMENT", "feederfund_master_fund": "iShares Core S&P 500 ETF",
				 "risk_spectrum": 6},
				{"proj_id": "M0002_2561", "proj_name_en": "Thai Bond", "risk_spectrum": "RS4"}
			]
		}`))
	}))
	defer srv.Close()

	items, totalPages, err := newTestClient(srv).FundProfiles(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("expected subscription key header, got %q", gotKey)
	}
	if gotPath != "/v1/fund/general-info/profiles" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotPage != "1" {
		t.Errorf("expected current_page=1, got %q", gotPage)
	}
	if totalPages != 3 {
		t.Errorf("expected 3 pages, got %d", totalPages)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].RiskSpectrum != "6" || items[1].RiskSpectrum != "RS4" {
		t.Errorf("unexpected risk spectrum values %q, %q", items[0].RiskSpectrum, items[1].RiskSpectrum)
	}
	if items[0].ProjAbbrName != "K-USA" {
		t.Errorf("expected K-USA, got %q", items[0].ProjAbbrName)
	}
}

func TestAllFundProfiles_StopsAtLastPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		pageNum, _ := strconv.Atoi(r.URL.Query().Get("current_page"))
		fmt.Fprintf(w, `{"total_pages": 2, "items": [{"proj_id": "P%d"}]}`, pageNum)
	}))
	defer srv.Close()

	all, err := newTestClient(srv).AllFundProfiles(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].ProjID != "P1" || all[1].ProjID != "P2" {
		t.Errorf("unexpected profiles %+v", all)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", calls.Load())
	}
}

func TestAllFundProfiles_RespectsMaxPages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"total_pages": 10, "items": [{"proj_id": "P"}]}`))
	}))
	defer srv.Close()

	all, err := newTestClient(srv).AllFundProfiles(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || calls.Load() != 3 {
		t.Errorf("expected 3 profiles from 3 requests, got %d from %d", len(all), calls.Load())
	}
}

func TestAllFundProfiles_StopsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("current_page") == "1" {
			w.Write([]byte(`{"total_pages": 5, "items": [{"proj_id": "P1"}]}`))
			return
		}
		w.Write([]byte(`{"total_pages": 5, "items": []}`))
	}))
	defer srv.Close()

	all, err := newTestClient(srv).AllFundProfiles(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 profile, got %d", len(all))
	}
}

func TestQuarterlyPortfolio_ParsesNumbers(t *testing.T) {
	var gotPeriod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPeriod = r.URL.Query().Get("period_start")
		w.Write([]byte(`{"items": [
			{"proj_id": "M0001_2560", "period": 202406, "issuer": "ISHARES CORE S&P 500",
			 "isin_code": "US4642872000", "asset_type": "Unit Trust",
			 "assetliab_value": "1250000.50", "percent_nav": 97.8}
		]}`))
	}))
	defer srv.Close()

	items, err := newTestClient(srv).QuarterlyPortfolio(context.Background(), "M0001_2560", "202406")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPeriod != "202406" {
		t.Errorf("expected period_start=202406, got %q", gotPeriod)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Period != "202406" {
		t.Errorf("expected period 202406, got %q", items[0].Period)
	}
	if items[0].AssetliabValue.String() != "1250000.5" {
		t.Errorf("expected value 1250000.5, got %s", items[0].AssetliabValue)
	}
	if items[0].PercentNAV.InexactFloat64() != 97.8 {
		t.Errorf("expected 97.8, got %s", items[0].PercentNAV)
	}
}

func TestTop5Holdings_ParsesNaiveDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"proj_id": "M0001_2560", "asset_name": "APPLE INC", "asset_ratio": "6.95", "as_of_date": "2024-06-30"},
			{"proj_id": "M0001_2560", "asset_name": "CASH", "asset_ratio": null, "as_of_date": ""}
		]}`))
	}))
	defer srv.Close()

	items, err := newTestClient(srv).Top5Holdings(context.Background(), "M0001_2560")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	want := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	if !items[0].AsOfDate.Equal(want) {
		t.Errorf("expected %v, got %v", want, items[0].AsOfDate.Time)
	}
	if !items[0].AssetRatio.Valid || items[0].AssetRatio.Decimal.String() != "6.95" {
		t.Errorf("expected ratio 6.95, got %+v", items[0].AssetRatio)
	}
	if items[1].AssetRatio.Valid {
		t.Error("expected null ratio to be invalid")
	}
	if !items[1].AsOfDate.IsZero() {
		t.Error("expected empty date to be zero")
	}
}

func TestGet_StatusErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).AMCs(context.Background(), 1)
	if !errors.Is(err, upstream.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestGet_NoKey(t *testing.T) {
	c := NewClient("", "", time.Second)
	if c.Enabled() {
		t.Error("expected client without key to be disabled")
	}
	if _, err := c.AMCs(context.Background(), 1); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestThrottle_SpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv).WithThrottle(100 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.AMCs(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("expected at least 200ms for 3 throttled requests, took %v", elapsed)
	}
}

func TestIsFeederFund(t *testing.T) {
	cases := []struct {
		name    string
		profile FundProfile
		want    bool
	}{
		{"master fund named", FundProfile{FeederfundMasterFund: "Invesco QQQ Trust"}, true},
		{"whitespace master", FundProfile{FeederfundMasterFund: "   "}, false},
		{"english keyword", FundProfile{PolicyDesc: "Feeder Fund investing abroad"}, true},
		{"thai keyword", FundProfile{InvestmentPolicyDesc: "ลงทุนในกองทุนหลัก"}, true},
		{"plain fund", FundProfile{PolicyDesc: "Thai equity", InvestmentPolicyDesc: "SET50 stocks"}, false},
	}
	for _, tc := range cases {
		if got := IsFeederFund(tc.profile); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestExtractMasterFundName(t *testing.T) {
	if got := ExtractMasterFundName(FundProfile{FeederfundMasterFund: "  Invesco QQQ Trust "}); got != "Invesco QQQ Trust" {
		t.Errorf("expected trimmed name, got %q", got)
	}
	if got := ExtractMasterFundName(FundProfile{}); got != "" {
		t.Errorf("expected empty name, got %q", got)
	}
}

func TestMapMasterFundToTicker(t *testing.T) {
	cases := map[string]string{
		"iShares Core S&P 500 ETF":          "IVV",
		"Invesco QQQ Trust™":                "QQQ",
		"iShares® MSCI China ETF":           "MCHI",
		"NEXT FUNDS Nikkei 225 ETF":         "1321.T",
		"PIMCO GIS Income Fund":             "PONAX",
		"Some Unknown Master Fund":          "",
		"":                                  "",
		"Vanguard S&P 500 UCITS ETF":        "VOO",
		"SPDR Gold Shares":                  "GLD",
		"Fidelity Global Technology Fund A": "FTEKX",
	}
	for in, want := range cases {
		if got := MapMasterFundToTicker(in); got != want {
			t.Errorf("MapMasterFundToTicker(%q): expected %q, got %q", in, want, got)
		}
	}
}
