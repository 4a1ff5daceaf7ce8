package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/epeers/whattheyhold/internal/repository"
	"github.com/epeers/whattheyhold/internal/upstream"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// FundStore is the durable tier
type FundStore interface {
	GetFund(ctx context.Context, ticker string) (*models.FundResponse, error)
	UpsertFund(ctx context.Context, data *models.FundResponse) error
	IncrementFundView(ctx context.Context, ticker string) error
}

// FundCache is the in-process tier
type FundCache interface {
	Get(ticker string) (*models.FundResponse, bool)
	Put(ticker string, data *models.FundResponse)
}

// FundServiceConfig tunes the orchestrator. Zero values fall back to defaults.
type FundServiceConfig struct {
	MaxAge          time.Duration
	StoreTimeout    time.Duration
	UpstreamTimeout time.Duration
	Now             func() time.Time
}

// FundService resolves fund compositions across the durable store, the in-process
// cache and the upstream provider
type FundService struct {
	store           FundStore
	provider        upstream.Provider
	cache           FundCache
	maxAge          time.Duration
	storeTimeout    time.Duration
	upstreamTimeout time.Duration
	now             func() time.Time
	inflight        singleflight.Group
}

// NewFundService creates a new FundService
func NewFundService(store FundStore, provider upstream.Provider, cache FundCache, cfg FundServiceConfig) *FundService {
	s := &FundService{
		store:           store,
		provider:        provider,
		cache:           cache,
		maxAge:          cfg.MaxAge,
		storeTimeout:    cfg.StoreTimeout,
		upstreamTimeout: cfg.UpstreamTimeout,
		now:             cfg.Now,
	}
	if s.maxAge <= 0 {
		s.maxAge = repository.DefaultMaxAge
	}
	if s.storeTimeout <= 0 {
		s.storeTimeout = 5 * time.Second
	}
	if s.upstreamTimeout <= 0 {
		s.upstreamTimeout = 15 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type fetchOutcome int

const (
	fetchOK fetchOutcome = iota
	fetchEmpty
	fetchFailed
)

// fetchResult is the outcome of one upstream fetch and normalization
type fetchResult struct {
	outcome  fetchOutcome
	data     *models.FundResponse
	err      error
	warnings []models.Warning
}

// GetFundData returns the composition of a fund.
//
// Unless forceRefresh is set, fresh durable data is returned first, and the in-process
// cache is consulted only when the durable store has nothing for the ticker. Otherwise
// the fund is fetched upstream, normalized, cached and persisted. When the fetch fails
// any durable copy is served, forced or not, else ErrFundNotFound.
//
// The fetch is detached from ctx cancellation so an abandoned request still fills the caches.
func (s *FundService) GetFundData(ctx context.Context, ticker string, forceRefresh bool) (*models.FundResponse, error) {
	defer TrackTime("GetFundData", time.Now())

	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrFundNotFound
	}
	ctx = context.WithoutCancel(ctx)

	// durable data is always read so a failed refresh can fall back on it,
	// forced calls just never return it early
	staleFallback := s.readStore(ctx, ticker)
	if !forceRefresh {
		if staleFallback != nil {
			if repository.IsFreshAt(staleFallback.LastUpdated, s.maxAge, s.now()) {
				log.Debugf("serving %s from the durable store", ticker)
				return staleFallback, nil
			}
		} else if cached, ok := s.cache.Get(ticker); ok {
			log.Debugf("serving %s from the in-process cache", ticker)
			return cached, nil
		}
	}

	var res fetchResult
	if forceRefresh {
		res = s.refresh(ctx, ticker)
	} else {
		v, _, shared := s.inflight.Do(ticker, func() (any, error) {
			return s.refresh(ctx, ticker), nil
		})
		res = v.(fetchResult)
		if shared {
			log.Debugf("joined in-flight fetch for %s", ticker)
		}
	}
	// every caller sharing a fetch sees its warnings
	AddWarnings(ctx, res.warnings...)

	switch res.outcome {
	case fetchOK:
		return res.data, nil
	case fetchEmpty:
		log.Warnf("upstream returned no holdings for %s: %v", ticker, res.err)
	default:
		log.Warnf("upstream fetch for %s failed: %v", ticker, res.err)
	}

	if staleFallback != nil {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnServedStale,
			Message: fmt.Sprintf("refresh of %s failed, serving data last updated %s", ticker, formatUpdated(staleFallback.LastUpdated)),
		})
		return staleFallback, nil
	}
	return nil, ErrFundNotFound
}

// RecordView bumps the view counter of a fund, failures are only logged
func (s *FundService) RecordView(ctx context.Context, ticker string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()

	if err := s.store.IncrementFundView(ctx, NormalizeTicker(ticker)); err != nil {
		log.Warnf("failed to record view for %s: %v", ticker, err)
	}
}

// readStore treats any store failure as "no durable data"
func (s *FundService) readStore(ctx context.Context, ticker string) *models.FundResponse {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	data, err := s.store.GetFund(ctx, ticker)
	if err != nil {
		log.Errorf("durable read for %s failed, treating as absent: %v", ticker, err)
		return nil
	}
	return data
}

// refresh fetches and normalizes a fund and, on success, writes both tiers
func (s *FundService) refresh(ctx context.Context, ticker string) fetchResult {
	res := s.fetchAndNormalize(ctx, ticker)
	if res.outcome != fetchOK {
		return res
	}

	updated := s.now().UTC().Truncate(time.Microsecond)
	res.data.LastUpdated = &updated

	s.cache.Put(ticker, res.data)

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.UpsertFund(storeCtx, res.data); err != nil {
		log.Errorf("Issue in saving fund %s: %s", ticker, err)
	}
	return res
}

// fetchAndNormalize calls the provider and turns its payload into a FundResponse
func (s *FundService) fetchAndNormalize(ctx context.Context, ticker string) fetchResult {
	defer TrackTime("fetchAndNormalize", time.Now())

	fetchCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	payload, err := s.provider.FetchRaw(fetchCtx, ticker)
	if errors.Is(err, upstream.ErrEmpty) {
		return fetchResult{outcome: fetchEmpty, err: err}
	}
	if err != nil {
		return fetchResult{outcome: fetchFailed, err: err}
	}

	holdings, rescaled := NormalizeHoldings(payload.Holdings, payload.Scale)
	if len(holdings) == 0 {
		return fetchResult{outcome: fetchEmpty, err: fmt.Errorf("%w: no usable holdings for %s", upstream.ErrEmpty, ticker)}
	}
	var warnings []models.Warning
	if rescaled {
		warnings = append(warnings, models.Warning{
			Code:    models.WarnHoldingsRescaled,
			Message: fmt.Sprintf("holdings of %s were reported 100x too large and were divided by 100", ticker),
		})
	}

	name := payload.Name
	if name == "" {
		name = ticker
	}

	return fetchResult{
		outcome:  fetchOK,
		warnings: warnings,
		data: &models.FundResponse{
			Fund: models.FundInfo{
				Ticker:    ticker,
				Name:      name,
				Price:     payload.Price,
				Currency:  NormalizeCurrency(payload.Currency),
				ChangePct: payload.ChangePct,
			},
			Holdings:       holdings,
			CountryWeights: BuildCountryWeights(holdings),
			SectorWeights:  NormalizeSectors(payload.Sectors, payload.Scale),
		},
	}
}

func formatUpdated(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
