package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrThaiFundNotFound is returned when no Thai fund matches the lookup
var ErrThaiFundNotFound = errors.New("thai fund not found")

const thaiFundColumns = `
	proj_id, proj_name_th, proj_name_en, proj_abbr_name, amc_name_th, amc_name_en,
	fund_type, policy_desc, is_feeder_fund, feederfund_master_fund, feederfund_country,
	master_fund_ticker, risk_level, view_count, updated_at
`

// ThaiFundRepository handles SEC Thailand fund database operations
type ThaiFundRepository struct {
	pool *pgxpool.Pool
}

// NewThaiFundRepository creates a new ThaiFundRepository
func NewThaiFundRepository(pool *pgxpool.Pool) *ThaiFundRepository {
	return &ThaiFundRepository{pool: pool}
}

func scanThaiFund(row pgx.Row) (*models.ThaiFund, error) {
	var f models.ThaiFund
	err := row.Scan(
		&f.ProjID, &f.ProjNameTH, &f.ProjNameEN, &f.ProjAbbrName, &f.AMCNameTH, &f.AMCNameEN,
		&f.FundType, &f.PolicyDesc, &f.IsFeederFund, &f.FeederfundMasterFund, &f.FeederfundCountry,
		&f.MasterFundTicker, &f.RiskLevel, &f.ViewCount, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func collectThaiFunds(rows pgx.Rows) ([]models.ThaiFund, error) {
	defer rows.Close()

	funds := make([]models.ThaiFund, 0)
	for rows.Next() {
		f, err := scanThaiFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thai fund: %w", err)
		}
		funds = append(funds, *f)
	}
	return funds, rows.Err()
}

// UpsertThaiFund inserts or updates a Thai fund keyed by proj_id
func (r *ThaiFundRepository) UpsertThaiFund(ctx context.Context, f *models.ThaiFund) error {
	query := `
		INSERT INTO thai_funds (
			proj_id, proj_name_th, proj_name_en, proj_abbr_name, amc_name_th, amc_name_en,
			fund_type, policy_desc, is_feeder_fund, feederfund_master_fund, feederfund_country,
			master_fund_ticker, risk_level, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (proj_id) DO UPDATE SET
			proj_name_th = EXCLUDED.proj_name_th,
			proj_name_en = EXCLUDED.proj_name_en,
			proj_abbr_name = EXCLUDED.proj_abbr_name,
			amc_name_th = EXCLUDED.amc_name_th,
			amc_name_en = EXCLUDED.amc_name_en,
			fund_type = EXCLUDED.fund_type,
			policy_desc = EXCLUDED.policy_desc,
			is_feeder_fund = EXCLUDED.is_feeder_fund,
			feederfund_master_fund = EXCLUDED.feederfund_master_fund,
			feederfund_country = EXCLUDED.feederfund_country,
			master_fund_ticker = EXCLUDED.master_fund_ticker,
			risk_level = EXCLUDED.risk_level,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		f.ProjID, f.ProjNameTH, f.ProjNameEN, f.ProjAbbrName, f.AMCNameTH, f.AMCNameEN,
		f.FundType, f.PolicyDesc, f.IsFeederFund, f.FeederfundMasterFund, f.FeederfundCountry,
		f.MasterFundTicker, f.RiskLevel, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert thai fund %s: %w", f.ProjID, err)
	}
	return nil
}

// GetThaiFund looks a fund up by proj_id or by its abbreviation, case-insensitively
func (r *ThaiFundRepository) GetThaiFund(ctx context.Context, key string) (*models.ThaiFund, error) {
	query := `SELECT ` + thaiFundColumns + `
		FROM thai_funds
		WHERE proj_id = $1 OR upper(proj_abbr_name) = upper($1)
		ORDER BY (proj_id = $1) DESC
		LIMIT 1
	`
	f, err := scanThaiFund(r.pool.QueryRow(ctx, query, strings.TrimSpace(key)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrThaiFundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thai fund: %w", err)
	}
	return f, nil
}

// IncrementThaiFundView bumps the view counter of a Thai fund
func (r *ThaiFundRepository) IncrementThaiFundView(ctx context.Context, projID string) error {
	if _, err := r.pool.Exec(ctx, `SELECT increment_thai_fund_view($1)`, projID); err != nil {
		return fmt.Errorf("failed to increment thai fund view: %w", err)
	}
	return nil
}

// SearchThaiFunds matches names, abbreviation, proj_id and AMC
func (r *ThaiFundRepository) SearchThaiFunds(ctx context.Context, q string, limit int) ([]models.ThaiFund, error) {
	query := `SELECT ` + thaiFundColumns + `
		FROM thai_funds
		WHERE proj_name_en ILIKE $1
		   OR proj_name_th ILIKE $1
		   OR proj_abbr_name ILIKE $1
		   OR proj_id ILIKE $1
		   OR amc_name_en ILIKE $1
		ORDER BY view_count DESC, proj_abbr_name
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search thai funds: %w", err)
	}
	return collectThaiFunds(rows)
}

// GetFeederFunds lists feeder funds ordered by English name
func (r *ThaiFundRepository) GetFeederFunds(ctx context.Context, limit int) ([]models.ThaiFund, error) {
	query := `SELECT ` + thaiFundColumns + `
		FROM thai_funds
		WHERE is_feeder_fund
		ORDER BY proj_name_en
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeder funds: %w", err)
	}
	return collectThaiFunds(rows)
}

// GetDistinctAMCs returns the distinct asset management company names
func (r *ThaiFundRepository) GetDistinctAMCs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT trim(amc_name_en) AS amc
		FROM thai_funds
		WHERE trim(amc_name_en) <> ''
		ORDER BY amc
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get AMCs: %w", err)
	}
	defer rows.Close()

	amcs := make([]string, 0)
	for rows.Next() {
		var amc string
		if err := rows.Scan(&amc); err != nil {
			return nil, fmt.Errorf("failed to scan AMC: %w", err)
		}
		amcs = append(amcs, amc)
	}
	return amcs, rows.Err()
}

// UpsertFeederMapping replaces the mapping of a feeder fund
func (r *ThaiFundRepository) UpsertFeederMapping(ctx context.Context, m *models.FeederMasterMapping) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM feeder_master_mapping WHERE thai_fund_proj_id = $1`, m.ThaiFundProjID); err != nil {
		return fmt.Errorf("failed to delete feeder mapping: %w", err)
	}

	insertQuery := `
		INSERT INTO feeder_master_mapping (thai_fund_proj_id, master_fund_name, master_fund_ticker, master_fund_isin, confidence)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertQuery, m.ThaiFundProjID, m.MasterFundName, m.MasterFundTicker, m.MasterFundISIN, m.Confidence); err != nil {
		return fmt.Errorf("failed to insert feeder mapping: %w", err)
	}

	return tx.Commit(ctx)
}

// GetFeederMapping returns the mapping of a feeder fund, or nil when there is none
func (r *ThaiFundRepository) GetFeederMapping(ctx context.Context, projID string) (*models.FeederMasterMapping, error) {
	query := `
		SELECT thai_fund_proj_id, master_fund_name, master_fund_ticker, master_fund_isin, confidence
		FROM feeder_master_mapping
		WHERE thai_fund_proj_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	var m models.FeederMasterMapping
	err := r.pool.QueryRow(ctx, query, projID).Scan(
		&m.ThaiFundProjID, &m.MasterFundName, &m.MasterFundTicker, &m.MasterFundISIN, &m.Confidence,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feeder mapping: %w", err)
	}
	return &m, nil
}

// ReplaceThaiFundHoldings replaces the holdings of one fund for one period
func (r *ThaiFundRepository) ReplaceThaiFundHoldings(ctx context.Context, projID, period string, holdings []models.ThaiFundHolding) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM thai_fund_holdings WHERE thai_fund_proj_id = $1 AND period = $2`, projID, period); err != nil {
		return fmt.Errorf("failed to delete thai fund holdings: %w", err)
	}

	batch := &pgx.Batch{}
	for _, h := range holdings {
		batch.Queue(`
			INSERT INTO thai_fund_holdings (thai_fund_proj_id, period, issuer, issue_code, isin_code, asset_type, value, percent_nav)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			projID, h.Period, h.Issuer, h.IssueCode, h.ISINCode, h.AssetType, h.Value, h.PercentNAV)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert thai fund holdings: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetThaiFundHoldings returns the stored holdings of a fund, largest first.
// An empty period selects the latest period on file.
func (r *ThaiFundRepository) GetThaiFundHoldings(ctx context.Context, projID, period string, limit int) ([]models.ThaiFundHolding, error) {
	query := `
		SELECT thai_fund_proj_id, period, issuer, issue_code, isin_code, asset_type, value, percent_nav
		FROM thai_fund_holdings
		WHERE thai_fund_proj_id = $1
		  AND period = COALESCE(NULLIF($2, ''), (
			SELECT max(period) FROM thai_fund_holdings WHERE thai_fund_proj_id = $1
		  ))
		ORDER BY percent_nav DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, projID, period, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get thai fund holdings: %w", err)
	}
	defer rows.Close()

	holdings := make([]models.ThaiFundHolding, 0)
	for rows.Next() {
		var h models.ThaiFundHolding
		if err := rows.Scan(&h.ThaiFundProjID, &h.Period, &h.Issuer, &h.IssueCode, &h.ISINCode, &h.AssetType, &h.Value, &h.PercentNAV); err != nil {
			return nil, fmt.Errorf("failed to scan thai fund holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
