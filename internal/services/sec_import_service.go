package services

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/epeers/whattheyhold/internal/sec"
	log "github.com/sirupsen/logrus"
)

// ImportResult summarises one profile import run
type ImportResult struct {
	Processed int `json:"processed"`
	Imported  int `json:"imported"`
	Feeders   int `json:"feeders"`
	Mapped    int `json:"mapped"`
	Failed    int `json:"failed"`
}

// SECImportService copies SEC Open Data profiles and portfolios into the Thai fund tables
type SECImportService struct {
	sec   SECSource
	store ThaiFundStore
	now   func() time.Time
}

// NewSECImportService creates a new SECImportService
func NewSECImportService(secSource SECSource, store ThaiFundStore) *SECImportService {
	return &SECImportService{
		sec:   secSource,
		store: store,
		now:   time.Now,
	}
}

// ImportProfiles fetches up to maxPages of profiles (0 = all) and upserts them.
// Feeder funds also get a feeder_master_mapping row when they name a master fund.
// With dryRun nothing is written and only the counts are computed.
func (s *SECImportService) ImportProfiles(ctx context.Context, maxPages int, dryRun bool) (*ImportResult, error) {
	defer TrackTime("SECImportService.ImportProfiles", time.Now())

	profiles, err := s.sec.AllFundProfiles(ctx, maxPages)
	if err != nil && len(profiles) == 0 {
		return nil, fmt.Errorf("failed to fetch fund profiles: %w", err)
	}
	if err != nil {
		log.Warnf("profile fetch stopped early after %d profiles: %v", len(profiles), err)
	}

	result := &ImportResult{}
	updated := s.now().UTC()

	for i, p := range profiles {
		result.Processed++
		fund, mapping := thaiFundFromProfile(p, updated)
		if fund.IsFeederFund {
			result.Feeders++
		}
		if fund.MasterFundTicker != nil {
			result.Mapped++
		}

		if dryRun {
			if fund.IsFeederFund {
				log.Infof("[dry-run] %s master=%q ticker=%s", displayName(fund), fund.FeederfundMasterFund, tickerOrUnmapped(fund.MasterFundTicker))
			}
			continue
		}

		if err := s.store.UpsertThaiFund(ctx, fund); err != nil {
			log.Errorf("Issue in saving thai fund %s: %s", fund.ProjID, err)
			result.Failed++
			continue
		}
		result.Imported++

		if mapping != nil {
			if err := s.store.UpsertFeederMapping(ctx, mapping); err != nil {
				log.Errorf("Issue in saving feeder mapping %s: %s", fund.ProjID, err)
			}
		}

		if (i+1)%50 == 0 {
			log.Infof("processed %d/%d fund profiles", i+1, len(profiles))
		}
	}

	log.Infof("imported %d of %d fund profiles (%d feeders, %d mapped)", result.Imported, result.Processed, result.Feeders, result.Mapped)
	return result, nil
}

// ImportHoldings stores the quarterly portfolio of one fund, replacing each period it returns.
// Lines without a period are filed under the requested period.
func (s *SECImportService) ImportHoldings(ctx context.Context, projID, period string) (int, error) {
	items, err := s.sec.QuarterlyPortfolio(ctx, projID, period)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch portfolio for %s: %w", projID, err)
	}

	byPeriod := make(map[string][]models.ThaiFundHolding)
	var periods []string
	for _, item := range items {
		p := string(item.Period)
		if p == "" {
			p = period
		}
		if _, seen := byPeriod[p]; !seen {
			periods = append(periods, p)
		}
		byPeriod[p] = append(byPeriod[p], models.ThaiFundHolding{
			ThaiFundProjID: projID,
			Period:         p,
			Issuer:         item.Issuer,
			IssueCode:      item.IssueCode,
			ISINCode:       item.ISINCode,
			AssetType:      item.AssetType,
			Value:          item.AssetliabValue.InexactFloat64(),
			PercentNAV:     item.PercentNAV.InexactFloat64(),
		})
	}

	imported := 0
	for _, p := range periods {
		if err := s.store.ReplaceThaiFundHoldings(ctx, projID, p, byPeriod[p]); err != nil {
			return imported, err
		}
		imported += len(byPeriod[p])
	}
	log.Infof("imported %d holdings for %s", imported, projID)
	return imported, nil
}

// thaiFundFromProfile maps a profile onto a thai_funds row and, for feeders naming
// a master fund, a mapping row
func thaiFundFromProfile(p sec.FundProfile, updated time.Time) (*models.ThaiFund, *models.FeederMasterMapping) {
	fund := &models.ThaiFund{
		ProjID:       p.ProjID,
		ProjNameTH:   p.ProjNameTH,
		ProjNameEN:   p.ProjNameEN,
		ProjAbbrName: p.ProjAbbrName,
		AMCNameTH:    p.CompNameTH,
		AMCNameEN:    p.CompNameEN,
		FundType:     p.PolicyDesc,
		PolicyDesc:   p.InvestmentPolicyDesc,
		IsFeederFund: sec.IsFeederFund(p),
		RiskLevel:    string(p.RiskSpectrum),
		UpdatedAt:    &updated,
	}
	if !fund.IsFeederFund {
		return fund, nil
	}

	master := sec.ExtractMasterFundName(p)
	fund.FeederfundMasterFund = master
	fund.FeederfundCountry = p.FeederfundCountry
	if master == "" {
		return fund, nil
	}

	mapping := &models.FeederMasterMapping{
		ThaiFundProjID: p.ProjID,
		MasterFundName: master,
		MasterFundISIN: p.FeederfundISIN,
		Confidence:     models.MappingConfidenceUnmapped,
	}
	if ticker := sec.MapMasterFundToTicker(master); ticker != "" {
		fund.MasterFundTicker = &ticker
		mapping.MasterFundTicker = &ticker
		mapping.Confidence = models.MappingConfidenceAuto
	}
	return fund, mapping
}

func displayName(f *models.ThaiFund) string {
	if f.ProjNameEN != "" {
		return f.ProjNameEN
	}
	return f.ProjNameTH
}

func tickerOrUnmapped(t *string) string {
	if t == nil {
		return "unmapped"
	}
	return *t
}
