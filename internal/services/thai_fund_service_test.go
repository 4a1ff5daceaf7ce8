package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/epeers/whattheyhold/internal/repository"
	"github.com/epeers/whattheyhold/internal/sec"
	"github.com/epeers/whattheyhold/internal/services"
	"github.com/shopspring/decimal"
)

type fakeThaiStore struct {
	mu       sync.Mutex
	funds    map[string]*models.ThaiFund
	mappings map[string]*models.FeederMasterMapping
	holdings map[string][]models.ThaiFundHolding
	views    map[string]int
}

func newFakeThaiStore() *fakeThaiStore {
	return &fakeThaiStore{
		funds:    map[string]*models.ThaiFund{},
		mappings: map[string]*models.FeederMasterMapping{},
		holdings: map[string][]models.ThaiFundHolding{},
		views:    map[string]int{},
	}
}

func (s *fakeThaiStore) UpsertThaiFund(_ context.Context, f *models.ThaiFund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funds[f.ProjID] = f
	return nil
}

func (s *fakeThaiStore) GetThaiFund(_ context.Context, key string) (*models.ThaiFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.funds[key]; ok {
		return f, nil
	}
	for _, f := range s.funds {
		if strings.EqualFold(f.ProjAbbrName, key) {
			return f, nil
		}
	}
	return nil, repository.ErrThaiFundNotFound
}

func (s *fakeThaiStore) IncrementThaiFundView(_ context.Context, projID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[projID]++
	return nil
}

func (s *fakeThaiStore) SearchThaiFunds(_ context.Context, q string, limit int) ([]models.ThaiFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ThaiFund{}
	for _, f := range s.funds {
		if strings.Contains(strings.ToLower(f.ProjNameEN), strings.ToLower(q)) && len(out) < limit {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *fakeThaiStore) GetFeederFunds(_ context.Context, limit int) ([]models.ThaiFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ThaiFund{}
	for _, f := range s.funds {
		if f.IsFeederFund && len(out) < limit {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *fakeThaiStore) GetDistinctAMCs(_ context.Context) ([]string, error) {
	return []string{"KASIKORN ASSET MANAGEMENT"}, nil
}

func (s *fakeThaiStore) UpsertFeederMapping(_ context.Context, m *models.FeederMasterMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[m.ThaiFundProjID] = m
	return nil
}

func (s *fakeThaiStore) GetFeederMapping(_ context.Context, projID string) (*models.FeederMasterMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mappings[projID], nil
}

func (s *fakeThaiStore) ReplaceThaiFundHoldings(_ context.Context, projID, period string, holdings []models.ThaiFundHolding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings[projID+"/"+period] = holdings
	return nil
}

func (s *fakeThaiStore) GetThaiFundHoldings(_ context.Context, projID, period string, limit int) ([]models.ThaiFundHolding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, h := range s.holdings {
		if strings.HasPrefix(key, projID+"/") {
			if len(h) > limit {
				h = h[:limit]
			}
			return h, nil
		}
	}
	return []models.ThaiFundHolding{}, nil
}

type fakeSEC struct {
	enabled   bool
	profiles  []sec.FundProfile
	top5      []sec.TopHolding
	top5Err   error
	portfolio []sec.PortfolioItem
}

func (f *fakeSEC) Enabled() bool { return f.enabled }

func (f *fakeSEC) AllFundProfiles(_ context.Context, maxPages int) ([]sec.FundProfile, error) {
	return f.profiles, nil
}

func (f *fakeSEC) Top5Holdings(_ context.Context, projID string) ([]sec.TopHolding, error) {
	return f.top5, f.top5Err
}

func (f *fakeSEC) QuarterlyPortfolio(_ context.Context, projID, startPeriod string) ([]sec.PortfolioItem, error) {
	return f.portfolio, nil
}

type fakeFundSource struct {
	requested []string
	resp      *models.FundResponse
	err       error
}

func (f *fakeFundSource) GetFundData(_ context.Context, ticker string, forceRefresh bool) (*models.FundResponse, error) {
	f.requested = append(f.requested, ticker)
	return f.resp, f.err
}

func strPtr(s string) *string { return &s }

func seedThaiFund(store *fakeThaiStore) *models.ThaiFund {
	f := &models.ThaiFund{
		ProjID:               "M0001_2560",
		ProjNameEN:           "K US Equity Fund",
		ProjAbbrName:         "K-USA",
		IsFeederFund:         true,
		FeederfundMasterFund: "iShares Core S&P 500 ETF",
	}
	store.funds[f.ProjID] = f
	return f
}

func TestThaiGetFundInfo_UsesFactsheetWhenConfigured(t *testing.T) {
	store := newFakeThaiStore()
	seedThaiFund(store)
	source := &fakeSEC{
		enabled: true,
		top5: []sec.TopHolding{
			{AssetName: "ISHARES CORE S&P 500", AssetRatio: decimal.NewNullDecimal(decimal.RequireFromString("97.5"))},
			{AssetName: "CASH"},
		},
	}
	svc := services.NewThaiFundService(store, source, &fakeFundSource{})

	resp, err := svc.GetFundInfo(context.Background(), "k-usa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.FundInfo.ProjID != "M0001_2560" {
		t.Errorf("expected M0001_2560, got %s", resp.FundInfo.ProjID)
	}
	if len(resp.Top5Holdings) != 2 {
		t.Fatalf("expected 2 top holdings, got %d", len(resp.Top5Holdings))
	}
	if resp.Top5Holdings[0].AssetRatio == nil || *resp.Top5Holdings[0].AssetRatio != 97.5 {
		t.Errorf("expected ratio 97.5, got %v", resp.Top5Holdings[0].AssetRatio)
	}
	if resp.Top5Holdings[1].AssetRatio != nil {
		t.Errorf("expected nil ratio, got %v", *resp.Top5Holdings[1].AssetRatio)
	}
	if store.views["M0001_2560"] != 1 {
		t.Errorf("expected 1 view, got %d", store.views["M0001_2560"])
	}
}

func TestThaiGetFundInfo_FallsBackToStoredHoldings(t *testing.T) {
	store := newFakeThaiStore()
	seedThaiFund(store)
	store.holdings["M0001_2560/202406"] = []models.ThaiFundHolding{
		{Issuer: "ISHARES CORE S&P 500", PercentNAV: 96.1},
	}
	source := &fakeSEC{enabled: true, top5Err: errors.New("boom")}
	svc := services.NewThaiFundService(store, source, &fakeFundSource{})

	resp, err := svc.GetFundInfo(context.Background(), "M0001_2560")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Top5Holdings) != 1 || resp.Top5Holdings[0].AssetName != "ISHARES CORE S&P 500" {
		t.Errorf("unexpected top holdings %+v", resp.Top5Holdings)
	}
}

func TestThaiGetFundInfo_NotFound(t *testing.T) {
	svc := services.NewThaiFundService(newFakeThaiStore(), &fakeSEC{}, &fakeFundSource{})

	_, err := svc.GetFundInfo(context.Background(), "NOPE")
	if !errors.Is(err, services.ErrFundNotFound) {
		t.Errorf("expected ErrFundNotFound, got %v", err)
	}
}

func TestThaiSearch_EmptyQuery(t *testing.T) {
	store := newFakeThaiStore()
	seedThaiFund(store)
	svc := services.NewThaiFundService(store, &fakeSEC{}, &fakeFundSource{})

	results, err := svc.Search(context.Background(), "  ", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil results, got %v", results)
	}

	results, err = svc.Search(context.Background(), "us equity", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestThaiMasterHoldings_ResolvesThroughFundPipeline(t *testing.T) {
	store := newFakeThaiStore()
	seedThaiFund(store)
	store.mappings["M0001_2560"] = &models.FeederMasterMapping{
		ThaiFundProjID:   "M0001_2560",
		MasterFundName:   "iShares Core S&P 500 ETF",
		MasterFundTicker: strPtr("IVV"),
		Confidence:       models.MappingConfidenceAuto,
	}
	funds := &fakeFundSource{resp: storedFund("IVV", testNow)}
	svc := services.NewThaiFundService(store, &fakeSEC{}, funds)

	resp, err := svc.MasterHoldings(context.Background(), "M0001_2560")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(funds.requested) != 1 || funds.requested[0] != "IVV" {
		t.Errorf("expected IVV to be requested, got %v", funds.requested)
	}
	if resp.Master.Fund.Ticker != "IVV" || resp.Mapping.Confidence != models.MappingConfidenceAuto {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestThaiMasterHoldings_Unmapped(t *testing.T) {
	store := newFakeThaiStore()
	seedThaiFund(store)
	store.mappings["M0001_2560"] = &models.FeederMasterMapping{
		ThaiFundProjID: "M0001_2560",
		MasterFundName: "Obscure Master Fund",
		Confidence:     models.MappingConfidenceUnmapped,
	}
	funds := &fakeFundSource{}
	svc := services.NewThaiFundService(store, &fakeSEC{}, funds)

	_, err := svc.MasterHoldings(context.Background(), "M0001_2560")
	if !errors.Is(err, services.ErrNotMapped) {
		t.Errorf("expected ErrNotMapped, got %v", err)
	}
	if len(funds.requested) != 0 {
		t.Errorf("expected no fund lookups, got %v", funds.requested)
	}
}

func TestImportProfiles_WritesFundsAndMappings(t *testing.T) {
	store := newFakeThaiStore()
	source := &fakeSEC{profiles: []sec.FundProfile{
		{ProjID: "F1", ProjNameEN: "K US Equity", FeederfundMasterFund: "iShares Core S&P 500 ETF", FeederfundISIN: "US4642872000"},
		{ProjID: "F2", ProjNameEN: "Obscure Feeder", FeederfundMasterFund: "Obscure Master Fund"},
		{ProjID: "F3", ProjNameEN: "Thai Equity", PolicyDesc: "Equity", RiskSpectrum: "6"},
	}}
	svc := services.NewSECImportService(source, store)

	result, err := svc.ImportProfiles(context.Background(), 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 3 || result.Imported != 3 || result.Feeders != 2 || result.Mapped != 1 {
		t.Errorf("unexpected result %+v", result)
	}

	if got := store.funds["F1"].MasterFundTicker; got == nil || *got != "IVV" {
		t.Errorf("expected F1 mapped to IVV, got %v", got)
	}
	if m := store.mappings["F1"]; m == nil || m.Confidence != models.MappingConfidenceAuto || m.MasterFundISIN != "US4642872000" {
		t.Errorf("unexpected F1 mapping %+v", m)
	}
	if m := store.mappings["F2"]; m == nil || m.Confidence != models.MappingConfidenceUnmapped || m.MasterFundTicker != nil {
		t.Errorf("unexpected F2 mapping %+v", m)
	}
	if _, ok := store.mappings["F3"]; ok {
		t.Error("expected no mapping for a non-feeder fund")
	}
	if store.funds["F3"].IsFeederFund || store.funds["F3"].RiskLevel != "6" {
		t.Errorf("unexpected F3 row %+v", store.funds["F3"])
	}
}

func TestImportProfiles_DryRunWritesNothing(t *testing.T) {
	store := newFakeThaiStore()
	source := &fakeSEC{profiles: []sec.FundProfile{
		{ProjID: "F1", FeederfundMasterFund: "Invesco QQQ Trust"},
	}}
	svc := services.NewSECImportService(source, store)

	result, err := svc.ImportProfiles(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 0 || result.Feeders != 1 || result.Mapped != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(store.funds) != 0 || len(store.mappings) != 0 {
		t.Error("expected dry run to write nothing")
	}
}

func TestImportHoldings_GroupsByPeriod(t *testing.T) {
	store := newFakeThaiStore()
	source := &fakeSEC{portfolio: []sec.PortfolioItem{
		{Period: "202403", Issuer: "A", PercentNAV: decimal.NewFromFloat(60)},
		{Period: "202403", Issuer: "B", PercentNAV: decimal.NewFromFloat(40)},
		{Period: "", Issuer: "C", AssetliabValue: decimal.NewFromInt(1000), PercentNAV: decimal.NewFromFloat(100)},
	}}
	svc := services.NewSECImportService(source, store)

	n, err := svc.ImportHoldings(context.Background(), "F1", "202406")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 holdings imported, got %d", n)
	}
	if len(store.holdings["F1/202403"]) != 2 {
		t.Errorf("expected 2 holdings in 202403, got %d", len(store.holdings["F1/202403"]))
	}
	h := store.holdings["F1/202406"]
	if len(h) != 1 || h[0].Value != 1000 || h[0].Period != "202406" {
		t.Errorf("unexpected 202406 holdings %+v", h)
	}
}
