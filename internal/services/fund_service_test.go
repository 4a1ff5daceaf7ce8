package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/epeers/whattheyhold/internal/cache"
	"github.com/epeers/whattheyhold/internal/models"
	"github.com/epeers/whattheyhold/internal/repository"
	"github.com/epeers/whattheyhold/internal/services"
	"github.com/epeers/whattheyhold/internal/upstream"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu        sync.Mutex
	funds     map[string]*models.FundResponse
	getErr    error
	upsertErr error
	upserts   int
	views     map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{funds: map[string]*models.FundResponse{}, views: map[string]int{}}
}

func (s *fakeStore) GetFund(_ context.Context, ticker string) (*models.FundResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.funds[ticker], nil
}

func (s *fakeStore) UpsertFund(_ context.Context, data *models.FundResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.funds[data.Fund.Ticker] = data
	return nil
}

func (s *fakeStore) IncrementFundView(_ context.Context, ticker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[ticker]++
	return nil
}

func (s *fakeStore) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

type fakeProvider struct {
	payload *upstream.Payload
	err     error
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (p *fakeProvider) FetchRaw(_ context.Context, ticker string) (*upstream.Payload, error) {
	p.calls.Add(1)
	if p.started != nil {
		p.started <- struct{}{}
		<-p.release
	}
	if p.err != nil {
		return nil, p.err
	}
	cp := *p.payload
	cp.Ticker = ticker
	return &cp, nil
}

func samplePayload() *upstream.Payload {
	price := 512.25
	return &upstream.Payload{
		Name:  "Sample Fund",
		Price: &price,
		Holdings: []upstream.RawHolding{
			{Symbol: "AAPL", Name: "Apple Inc", Weight: 0.40},
			{Symbol: "NESN.SW", Name: "Nestle SA", Weight: 0.10},
			{Symbol: "7203.T", Name: "Toyota Motor Corp", Weight: 0.05},
		},
		Sectors: []upstream.RawSectorWeight{
			{Sector: "technology", Weight: 0.40},
			{Sector: "consumer_defensive", Weight: 0.15},
		},
		Scale: upstream.ScaleFraction,
	}
}

func storedFund(ticker string, updated time.Time) *models.FundResponse {
	return &models.FundResponse{
		Fund:           models.FundInfo{Ticker: ticker, Name: "Stored " + ticker, Currency: "USD"},
		Holdings:       []models.Holding{{Ticker: "MSFT", Name: "Microsoft", Pct: 7}},
		CountryWeights: []models.CountryWeight{{CountryCode: "840", WeightPct: 7}},
		SectorWeights:  []models.SectorWeight{},
		LastUpdated:    &updated,
	}
}

func newService(store *fakeStore, provider *fakeProvider, fc *cache.FundCache) *services.FundService {
	return services.NewFundService(store, provider, fc, services.FundServiceConfig{
		MaxAge: 24 * time.Hour,
		Now:    func() time.Time { return testNow },
	})
}

func assertClose(t *testing.T, label string, want, got float64) {
	t.Helper()
	diff := want - got
	if diff < -1e-9 || diff > 1e-9 {
		t.Errorf("%s: expected %.6f, got %.6f", label, want, got)
	}
}

func TestGetFundData_FetchesNormalizesAndPersists(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{payload: samplePayload()}
	fc := cache.NewFundCache()
	svc := newService(store, provider, fc)

	resp, err := svc.GetFundData(context.Background(), "  voo ", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if resp.Fund.Ticker != "VOO" {
		t.Errorf("expected ticker VOO, got %q", resp.Fund.Ticker)
	}
	if resp.Fund.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", resp.Fund.Currency)
	}
	if resp.LastUpdated == nil || !resp.LastUpdated.Equal(testNow) {
		t.Errorf("expected last_updated %v, got %v", testNow, resp.LastUpdated)
	}

	if len(resp.Holdings) != 3 {
		t.Fatalf("expected 3 holdings, got %d", len(resp.Holdings))
	}
	assertClose(t, "AAPL pct", 40, resp.Holdings[0].Pct)
	assertClose(t, "NESN.SW pct", 10, resp.Holdings[1].Pct)
	assertClose(t, "7203.T pct", 5, resp.Holdings[2].Pct)

	wantCountries := []string{"840", "756", "392"}
	if len(resp.CountryWeights) != len(wantCountries) {
		t.Fatalf("expected %d country weights, got %d", len(wantCountries), len(resp.CountryWeights))
	}
	var total float64
	for i, cw := range resp.CountryWeights {
		if cw.CountryCode != wantCountries[i] {
			t.Errorf("country %d: expected %s, got %s", i, wantCountries[i], cw.CountryCode)
		}
		total += cw.WeightPct
	}
	assertClose(t, "country total", 55, total)

	if len(resp.SectorWeights) != 2 {
		t.Fatalf("expected 2 sector weights, got %d", len(resp.SectorWeights))
	}
	assertClose(t, "technology", 40, resp.SectorWeights[0].WeightPct)

	if store.upsertCount() != 1 {
		t.Errorf("expected 1 upsert, got %d", store.upsertCount())
	}
	if _, ok := fc.Get("VOO"); !ok {
		t.Error("expected VOO in the in-process cache")
	}
}

func TestGetFundData_FreshDurableSkipsUpstream(t *testing.T) {
	store := newFakeStore()
	store.funds["VOO"] = storedFund("VOO", testNow.Add(-24*time.Hour+time.Second))
	provider := &fakeProvider{payload: samplePayload()}
	svc := newService(store, provider, cache.NewFundCache())

	resp, err := svc.GetFundData(context.Background(), "VOO", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Fund.Name != "Stored VOO" {
		t.Errorf("expected stored fund, got %q", resp.Fund.Name)
	}
	if provider.calls.Load() != 0 {
		t.Errorf("expected no upstream calls, got %d", provider.calls.Load())
	}
}

func TestGetFundData_ExactlyMaxAgeIsStale(t *testing.T) {
	store := newFakeStore()
	store.funds["VOO"] = storedFund("VOO", testNow.Add(-24*time.Hour))
	provider := &fakeProvider{payload: samplePayload()}
	svc := newService(store, provider, cache.NewFundCache())

	resp, err := svc.GetFundData(context.Background(), "VOO", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if provider.calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", provider.calls.Load())
	}
	if resp.Fund.Name != "Sample Fund" {
		t.Errorf("expected refreshed fund, got %q", resp.Fund.Name)
	}
}

func TestGetFundData_StaleFallbackOnUpstreamFailure(t *testing.T) {
	store := newFakeStore()
	stale := storedFund("VOO", testNow.Add(-72*time.Hour))
	store.funds["VOO"] = stale
	provider := &fakeProvider{err: fmt.Errorf("%w: status 502", upstream.ErrUnavailable)}
	svc := newService(store, provider, cache.NewFundCache())

	ctx, wc := services.NewWarningContext(context.Background())
	resp, err := svc.GetFundData(ctx, "VOO", false)
	if err != nil {
		t.Fatalf("expected stale fallback, got error %v", err)
	}
	if resp != stale {
		t.Error("expected the stale durable copy to be served")
	}

	warnings := wc.GetWarnings()
	if len(warnings) != 1 || warnings[0].Code != models.WarnServedStale {
		t.Errorf("expected one %s warning, got %+v", models.WarnServedStale, warnings)
	}
}

func TestGetFundData_StaleDurableOutranksCache(t *testing.T) {
	store := newFakeStore()
	store.funds["VOO"] = storedFund("VOO", testNow.Add(-48*time.Hour))
	fc := cache.NewFundCache()
	fc.Put("VOO", storedFund("CACHED", testNow))
	provider := &fakeProvider{err: upstream.ErrUnavailable}
	svc := newService(store, provider, fc)

	resp, err := svc.GetFundData(context.Background(), "VOO", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Fund.Name != "Stored VOO" {
		t.Errorf("expected the stale durable copy, got %q", resp.Fund.Name)
	}
	if provider.calls.Load() != 1 {
		t.Errorf("expected upstream to be tried once, got %d", provider.calls.Load())
	}
}

func TestGetFundData_StoreErrorFallsBackToCache(t *testing.T) {
	store := newFakeStore()
	store.getErr = fmt.Errorf("%w: connection refused", repository.ErrStoreUnavailable)
	fc := cache.NewFundCache()
	fc.Put("QQQ", storedFund("QQQ", testNow.Add(-time.Hour)))
	provider := &fakeProvider{payload: samplePayload()}
	svc := newService(store, provider, fc)

	resp, err := svc.GetFundData(context.Background(), "qqq", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Fund.Ticker != "QQQ" {
		t.Errorf("expected cached QQQ, got %q", resp.Fund.Ticker)
	}
	if provider.calls.Load() != 0 {
		t.Errorf("expected no upstream calls, got %d", provider.calls.Load())
	}
}

func TestGetFundData_ForceRefreshBypassesTiers(t *testing.T) {
	store := newFakeStore()
	store.funds["VOO"] = storedFund("VOO", testNow.Add(-time.Minute))
	fc := cache.NewFundCache()
	fc.Put("VOO", storedFund("VOO", testNow.Add(-time.Minute)))
	provider := &fakeProvider{payload: samplePayload()}
	svc := newService(store, provider, fc)

	resp, err := svc.GetFundData(context.Background(), "VOO", true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Fund.Name != "Sample Fund" {
		t.Errorf("expected refreshed fund, got %q", resp.Fund.Name)
	}
	if provider.calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", provider.calls.Load())
	}
	if store.upsertCount() != 1 {
		t.Errorf("expected 1 upsert, got %d", store.upsertCount())
	}
}

func TestGetFundData_ForceRefreshFailureServesDurableCopy(t *testing.T) {
	store := newFakeStore()
	store.funds["VOO"] = storedFund("VOO", testNow.Add(-72*time.Hour))
	provider := &fakeProvider{err: upstream.ErrUnavailable}
	svc := newService(store, provider, cache.NewFundCache())

	ctx, wc := services.NewWarningContext(context.Background())
	resp, err := svc.GetFundData(ctx, "VOO", true)
	if err != nil {
		t.Fatalf("expected the durable copy, got %v", err)
	}
	if resp != store.funds["VOO"] {
		t.Errorf("expected the stored VOO back, got %+v", resp)
	}
	if !wc.Has(models.WarnServedStale) {
		t.Errorf("expected %s on a failed forced refresh", models.WarnServedStale)
	}
	if provider.calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", provider.calls.Load())
	}
}

func TestGetFundData_ForceRefreshFailureWithoutHistoryIsNotFound(t *testing.T) {
	svc := newService(newFakeStore(), &fakeProvider{err: upstream.ErrUnavailable}, cache.NewFundCache())

	_, err := svc.GetFundData(context.Background(), "VOO", true)
	if !errors.Is(err, services.ErrFundNotFound) {
		t.Errorf("expected ErrFundNotFound, got %v", err)
	}
}

func TestGetFundData_SecondCallServedFromStore(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{payload: samplePayload()}
	svc := newService(store, provider, cache.NewFundCache())

	first, err := svc.GetFundData(context.Background(), "VOO", false)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.GetFundData(context.Background(), "VOO", false)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if provider.calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", provider.calls.Load())
	}
	if !first.LastUpdated.Equal(*second.LastUpdated) {
		t.Errorf("expected identical last_updated, got %v and %v", first.LastUpdated, second.LastUpdated)
	}
	if len(first.Holdings) != len(second.Holdings) {
		t.Errorf("expected identical holdings, got %d and %d", len(first.Holdings), len(second.Holdings))
	}
}

func TestGetFundData_NotFound(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("%w: no result", upstream.ErrEmpty)}
	svc := newService(newFakeStore(), provider, cache.NewFundCache())

	_, err := svc.GetFundData(context.Background(), "NOPE", false)
	if !errors.Is(err, services.ErrFundNotFound) {
		t.Errorf("expected ErrFundNotFound, got %v", err)
	}

	_, err = svc.GetFundData(context.Background(), "   ", false)
	if !errors.Is(err, services.ErrFundNotFound) {
		t.Errorf("expected ErrFundNotFound for blank ticker, got %v", err)
	}
}

func TestGetFundData_EmptyHoldingsIsFailure(t *testing.T) {
	store := newFakeStore()
	payload := samplePayload()
	payload.Holdings = []upstream.RawHolding{{Symbol: " ", Name: "", Weight: 0.5}}
	provider := &fakeProvider{payload: payload}
	fc := cache.NewFundCache()
	svc := newService(store, provider, fc)

	_, err := svc.GetFundData(context.Background(), "VOO", false)
	if !errors.Is(err, services.ErrFundNotFound) {
		t.Errorf("expected ErrFundNotFound, got %v", err)
	}
	if store.upsertCount() != 0 {
		t.Errorf("expected no upserts, got %d", store.upsertCount())
	}
	if _, ok := fc.Get("VOO"); ok {
		t.Error("expected nothing cached for VOO")
	}
}

func TestGetFundData_UpsertErrorIsSwallowed(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = fmt.Errorf("%w: disk full", repository.ErrStoreUnavailable)
	provider := &fakeProvider{payload: samplePayload()}
	fc := cache.NewFundCache()
	svc := newService(store, provider, fc)

	resp, err := svc.GetFundData(context.Background(), "VOO", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp == nil || len(resp.Holdings) != 3 {
		t.Fatal("expected the fetched response")
	}
	if _, ok := fc.Get("VOO"); !ok {
		t.Error("expected VOO in the in-process cache")
	}
}

func TestGetFundData_RescaleWarning(t *testing.T) {
	payload := samplePayload()
	payload.Scale = upstream.ScalePercent
	payload.Holdings = []upstream.RawHolding{
		{Symbol: "AAPL", Weight: 4500},
		{Symbol: "MSFT", Weight: 3000},
		{Symbol: "NVDA", Weight: 2500},
	}
	svc := newService(newFakeStore(), &fakeProvider{payload: payload}, cache.NewFundCache())

	ctx, wc := services.NewWarningContext(context.Background())
	resp, err := svc.GetFundData(ctx, "VOO", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assertClose(t, "AAPL", 45, resp.Holdings[0].Pct)
	assertClose(t, "MSFT", 30, resp.Holdings[1].Pct)
	assertClose(t, "NVDA", 25, resp.Holdings[2].Pct)

	warnings := wc.GetWarnings()
	if len(warnings) != 1 || warnings[0].Code != models.WarnHoldingsRescaled {
		t.Errorf("expected one %s warning, got %+v", models.WarnHoldingsRescaled, warnings)
	}
}

func TestGetFundData_CanceledCallerStillPersists(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeProvider{payload: samplePayload()}, cache.NewFundCache())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.GetFundData(ctx, "VOO", false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.upsertCount() != 1 {
		t.Errorf("expected 1 upsert, got %d", store.upsertCount())
	}
}

func TestGetFundData_ConcurrentMissesShareOneFetch(t *testing.T) {
	provider := &fakeProvider{
		payload: samplePayload(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newService(newFakeStore(), provider, cache.NewFundCache())

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	call := func() {
		defer wg.Done()
		if _, err := svc.GetFundData(context.Background(), "VOO", false); err != nil {
			errs <- err
		}
	}

	wg.Add(1)
	go call()
	<-provider.started

	wg.Add(n - 1)
	for i := 1; i < n; i++ {
		go call()
	}
	time.Sleep(50 * time.Millisecond)
	close(provider.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	if provider.calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", provider.calls.Load())
	}
}

func TestGetFundData_SharedFetchWarningsReachEveryCaller(t *testing.T) {
	payload := samplePayload()
	payload.Scale = upstream.ScalePercent
	payload.Holdings = []upstream.RawHolding{{Symbol: "AAPL", Weight: 6000}, {Symbol: "MSFT", Weight: 4000}}
	provider := &fakeProvider{
		payload: payload,
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newService(newFakeStore(), provider, cache.NewFundCache())

	leaderCtx, leaderWC := services.NewWarningContext(context.Background())
	followerCtx, followerWC := services.NewWarningContext(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.GetFundData(leaderCtx, "VOO", false)
	}()
	<-provider.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.GetFundData(followerCtx, "VOO", false)
	}()
	time.Sleep(50 * time.Millisecond)
	close(provider.release)
	wg.Wait()

	if provider.calls.Load() != 1 {
		t.Fatalf("expected 1 upstream call, got %d", provider.calls.Load())
	}
	if !leaderWC.Has(models.WarnHoldingsRescaled) || !followerWC.Has(models.WarnHoldingsRescaled) {
		t.Errorf("expected both callers to see %s", models.WarnHoldingsRescaled)
	}
}

func TestGetFundData_ConcurrentForcedCallsAreNotCoalesced(t *testing.T) {
	provider := &fakeProvider{payload: samplePayload()}
	svc := newService(newFakeStore(), provider, cache.NewFundCache())

	const n = 4
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = svc.GetFundData(context.Background(), "VOO", true)
		}()
	}
	wg.Wait()

	if provider.calls.Load() != n {
		t.Errorf("expected %d upstream calls, got %d", n, provider.calls.Load())
	}
}

func TestRecordView(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeProvider{payload: samplePayload()}, cache.NewFundCache())

	svc.RecordView(context.Background(), "voo")
	svc.RecordView(context.Background(), "VOO")

	if store.views["VOO"] != 2 {
		t.Errorf("expected 2 views for VOO, got %d", store.views["VOO"])
	}
}
