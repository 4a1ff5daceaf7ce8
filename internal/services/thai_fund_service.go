package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/epeers/whattheyhold/internal/repository"
	"github.com/epeers/whattheyhold/internal/sec"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	topHoldingsLimit      = 5
	defaultThaiSearchSize = 10
	defaultFeederListSize = 50
)

// ThaiFundStore is the persistence ThaiFundService and SECImportService need
type ThaiFundStore interface {
	UpsertThaiFund(ctx context.Context, f *models.ThaiFund) error
	GetThaiFund(ctx context.Context, key string) (*models.ThaiFund, error)
	IncrementThaiFundView(ctx context.Context, projID string) error
	SearchThaiFunds(ctx context.Context, q string, limit int) ([]models.ThaiFund, error)
	GetFeederFunds(ctx context.Context, limit int) ([]models.ThaiFund, error)
	GetDistinctAMCs(ctx context.Context) ([]string, error)
	UpsertFeederMapping(ctx context.Context, m *models.FeederMasterMapping) error
	GetFeederMapping(ctx context.Context, projID string) (*models.FeederMasterMapping, error)
	ReplaceThaiFundHoldings(ctx context.Context, projID, period string, holdings []models.ThaiFundHolding) error
	GetThaiFundHoldings(ctx context.Context, projID, period string, limit int) ([]models.ThaiFundHolding, error)
}

// SECSource is the subset of the SEC Open Data client used by the services
type SECSource interface {
	Enabled() bool
	AllFundProfiles(ctx context.Context, maxPages int) ([]sec.FundProfile, error)
	Top5Holdings(ctx context.Context, projID string) ([]sec.TopHolding, error)
	QuarterlyPortfolio(ctx context.Context, projID, startPeriod string) ([]sec.PortfolioItem, error)
}

// FundDataSource resolves the composition of a listed fund
type FundDataSource interface {
	GetFundData(ctx context.Context, ticker string, forceRefresh bool) (*models.FundResponse, error)
}

// ThaiFundService serves SEC Thailand fund data
type ThaiFundService struct {
	store ThaiFundStore
	sec   SECSource
	funds FundDataSource
}

// NewThaiFundService creates a new ThaiFundService
func NewThaiFundService(store ThaiFundStore, secSource SECSource, funds FundDataSource) *ThaiFundService {
	return &ThaiFundService{
		store: store,
		sec:   secSource,
		funds: funds,
	}
}

// GetFundInfo returns a Thai fund and its top holdings. The factsheet top-5 is used when
// the SEC API is configured and answers, otherwise the stored quarterly portfolio.
func (s *ThaiFundService) GetFundInfo(ctx context.Context, key string) (*models.ThaiFundInfoResponse, error) {
	defer TrackTime("ThaiFundService.GetFundInfo", time.Now())

	fund, err := s.store.GetThaiFund(ctx, key)
	if errors.Is(err, repository.ErrThaiFundNotFound) {
		return nil, ErrFundNotFound
	}
	if err != nil {
		return nil, err
	}

	resp := &models.ThaiFundInfoResponse{FundInfo: *fund}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.store.IncrementThaiFundView(gctx, fund.ProjID); err != nil {
			log.Warnf("failed to record view for thai fund %s: %v", fund.ProjID, err)
		}
		return nil
	})
	g.Go(func() error {
		top, err := s.topHoldings(gctx, fund.ProjID)
		resp.Top5Holdings = top
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *ThaiFundService) topHoldings(ctx context.Context, projID string) ([]models.ThaiTopHolding, error) {
	if s.sec != nil && s.sec.Enabled() {
		items, err := s.sec.Top5Holdings(ctx, projID)
		switch {
		case err != nil:
			log.Warnf("factsheet top holdings for %s failed, using stored portfolio: %v", projID, err)
		case len(items) > 0:
			return factsheetHoldings(items), nil
		}
	}

	stored, err := s.store.GetThaiFundHoldings(ctx, projID, "", topHoldingsLimit)
	if err != nil {
		return nil, err
	}
	top := make([]models.ThaiTopHolding, len(stored))
	for i, h := range stored {
		ratio := h.PercentNAV
		top[i] = models.ThaiTopHolding{AssetName: h.Issuer, AssetRatio: &ratio}
	}
	return top, nil
}

func factsheetHoldings(items []sec.TopHolding) []models.ThaiTopHolding {
	if len(items) > topHoldingsLimit {
		items = items[:topHoldingsLimit]
	}
	top := make([]models.ThaiTopHolding, len(items))
	for i, item := range items {
		top[i] = models.ThaiTopHolding{AssetName: item.AssetName}
		if item.AssetRatio.Valid {
			ratio := item.AssetRatio.Decimal.InexactFloat64()
			top[i].AssetRatio = &ratio
		}
		if !item.AsOfDate.IsZero() {
			asOf := item.AsOfDate
			top[i].AsOf = &asOf
		}
	}
	return top
}

// Search matches Thai funds by name, abbreviation, proj_id or AMC
func (s *ThaiFundService) Search(ctx context.Context, q string, limit int) ([]models.ThaiFund, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.ThaiFund{}, nil
	}
	if limit <= 0 {
		limit = defaultThaiSearchSize
	}
	return s.store.SearchThaiFunds(ctx, q, limit)
}

// FeederFunds lists feeder funds
func (s *ThaiFundService) FeederFunds(ctx context.Context, limit int) ([]models.ThaiFund, error) {
	if limit <= 0 {
		limit = defaultFeederListSize
	}
	return s.store.GetFeederFunds(ctx, limit)
}

// AMCs lists the distinct asset management companies on file
func (s *ThaiFundService) AMCs(ctx context.Context) ([]string, error) {
	return s.store.GetDistinctAMCs(ctx)
}

// MasterHoldings resolves the master fund of a feeder and returns its composition
// through the regular fund pipeline
func (s *ThaiFundService) MasterHoldings(ctx context.Context, projID string) (*models.MasterHoldingsResponse, error) {
	defer TrackTime("ThaiFundService.MasterHoldings", time.Now())

	feeder, err := s.store.GetThaiFund(ctx, projID)
	if errors.Is(err, repository.ErrThaiFundNotFound) {
		return nil, ErrFundNotFound
	}
	if err != nil {
		return nil, err
	}

	mapping, err := s.store.GetFeederMapping(ctx, feeder.ProjID)
	if err != nil {
		return nil, err
	}
	if mapping == nil && feeder.MasterFundTicker != nil {
		mapping = &models.FeederMasterMapping{
			ThaiFundProjID:   feeder.ProjID,
			MasterFundName:   feeder.FeederfundMasterFund,
			MasterFundTicker: feeder.MasterFundTicker,
			Confidence:       models.MappingConfidenceAuto,
		}
	}
	if mapping == nil || mapping.MasterFundTicker == nil || *mapping.MasterFundTicker == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotMapped, feeder.ProjID)
	}

	master, err := s.funds.GetFundData(ctx, *mapping.MasterFundTicker, false)
	if err != nil {
		return nil, err
	}

	return &models.MasterHoldingsResponse{
		Feeder:  *feeder,
		Mapping: *mapping,
		Master:  master,
	}, nil
}
