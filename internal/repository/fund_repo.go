package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStoreUnavailable wraps connectivity and query failures against the durable store
var ErrStoreUnavailable = errors.New("fund store unavailable")

// DefaultMaxAge is the freshness window of durable fund data
const DefaultMaxAge = 24 * time.Hour

// FundRepository handles fund database operations
type FundRepository struct {
	pool *pgxpool.Pool
}

// NewFundRepository creates a new FundRepository
func NewFundRepository(pool *pgxpool.Pool) *FundRepository {
	return &FundRepository{pool: pool}
}

// IsFresh reports whether data last updated at lastUpdated is younger than maxAge
func IsFresh(lastUpdated *time.Time, maxAge time.Duration) bool {
	return IsFreshAt(lastUpdated, maxAge, time.Now())
}

// IsFreshAt is IsFresh evaluated at now. A nil timestamp is never fresh and
// an age of exactly maxAge is stale.
func IsFreshAt(lastUpdated *time.Time, maxAge time.Duration, now time.Time) bool {
	if lastUpdated == nil || lastUpdated.IsZero() {
		return false
	}
	return now.UTC().Sub(lastUpdated.UTC()) < maxAge
}

// IsFresh reports whether lastUpdated falls within the repository's default window
func (r *FundRepository) IsFresh(lastUpdated *time.Time) bool {
	return IsFresh(lastUpdated, DefaultMaxAge)
}

// GetFund returns the fully hydrated fund for ticker, or nil if no row exists
func (r *FundRepository) GetFund(ctx context.Context, ticker string) (*models.FundResponse, error) {
	ticker = strings.ToUpper(ticker)

	query := `
		SELECT id, ticker, name, price, currency, change_pct, updated_at
		FROM funds
		WHERE ticker = $1
	`
	var (
		fundID    int64
		resp      models.FundResponse
		updatedAt *time.Time
	)
	err := r.pool.QueryRow(ctx, query, ticker).Scan(
		&fundID, &resp.Fund.Ticker, &resp.Fund.Name, &resp.Fund.Price,
		&resp.Fund.Currency, &resp.Fund.ChangePct, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get fund: %w", ErrStoreUnavailable, err)
	}
	if updatedAt != nil {
		utc := updatedAt.UTC()
		resp.LastUpdated = &utc
	}

	batch := &pgx.Batch{}
	batch.Queue(`SELECT ticker, name, pct FROM holdings WHERE fund_id = $1 ORDER BY position, id`, fundID)
	batch.Queue(`SELECT country_code, weight_pct FROM country_weights WHERE fund_id = $1 ORDER BY position, id`, fundID)
	batch.Queue(`SELECT sector, weight_pct FROM sector_weights WHERE fund_id = $1 ORDER BY position, id`, fundID)

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	resp.Holdings, err = collect(br, func(row pgx.Rows) (models.Holding, error) {
		var h models.Holding
		err := row.Scan(&h.Ticker, &h.Name, &h.Pct)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get holdings: %w", ErrStoreUnavailable, err)
	}

	resp.CountryWeights, err = collect(br, func(row pgx.Rows) (models.CountryWeight, error) {
		var cw models.CountryWeight
		err := row.Scan(&cw.CountryCode, &cw.WeightPct)
		return cw, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get country weights: %w", ErrStoreUnavailable, err)
	}

	resp.SectorWeights, err = collect(br, func(row pgx.Rows) (models.SectorWeight, error) {
		var sw models.SectorWeight
		err := row.Scan(&sw.Sector, &sw.WeightPct)
		return sw, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get sector weights: %w", ErrStoreUnavailable, err)
	}

	return &resp, nil
}

// collect reads the next batched result set into a slice.
// The slice is never nil so an empty set encodes as [] rather than null.
func collect[T any](br pgx.BatchResults, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := br.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpsertFund replaces the full aggregate for a fund: the fund row is upserted,
// all child rows are deleted and the new set is inserted, in one transaction.
func (r *FundRepository) UpsertFund(ctx context.Context, data *models.FundResponse) error {
	ticker := strings.ToUpper(data.Fund.Ticker)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	upsertQuery := `
		INSERT INTO funds (ticker, name, price, currency, change_pct, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			change_pct = EXCLUDED.change_pct,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	var fundID int64
	err = tx.QueryRow(ctx, upsertQuery,
		ticker, data.Fund.Name, data.Fund.Price, data.Fund.Currency, data.Fund.ChangePct, data.LastUpdated,
	).Scan(&fundID)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert fund: %w", ErrStoreUnavailable, err)
	}

	for _, table := range []string{"holdings", "country_weights", "sector_weights"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE fund_id = $1`, fundID); err != nil {
			return fmt.Errorf("%w: failed to delete existing %s: %w", ErrStoreUnavailable, table, err)
		}
	}

	batch := &pgx.Batch{}
	for i, h := range data.Holdings {
		batch.Queue(`INSERT INTO holdings (fund_id, position, ticker, name, pct) VALUES ($1, $2, $3, $4, $5)`,
			fundID, i, h.Ticker, h.Name, h.Pct)
	}
	for i, cw := range data.CountryWeights {
		batch.Queue(`INSERT INTO country_weights (fund_id, position, country_code, weight_pct) VALUES ($1, $2, $3, $4)`,
			fundID, i, cw.CountryCode, cw.WeightPct)
	}
	for i, sw := range data.SectorWeights {
		batch.Queue(`INSERT INTO sector_weights (fund_id, position, sector, weight_pct) VALUES ($1, $2, $3, $4)`,
			fundID, i, sw.Sector, sw.WeightPct)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("%w: failed to insert fund composition: %w", ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit fund upsert: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// IncrementFundView bumps the view counter of a fund
func (r *FundRepository) IncrementFundView(ctx context.Context, ticker string) error {
	if _, err := r.pool.Exec(ctx, `SELECT increment_fund_view($1)`, strings.ToUpper(ticker)); err != nil {
		return fmt.Errorf("failed to increment fund view: %w", err)
	}
	return nil
}

// ScreenFunds returns the funds holding ticker with at least minWeight percent, heaviest first
func (r *FundRepository) ScreenFunds(ctx context.Context, ticker string, minWeight float64) ([]models.ScreenResult, error) {
	query := `
		SELECT f.ticker, f.name, h.ticker, h.pct
		FROM holdings h
		JOIN funds f ON f.id = h.fund_id
		WHERE h.ticker = $1 AND h.pct >= $2
		ORDER BY h.pct DESC
	`
	rows, err := r.pool.Query(ctx, query, strings.ToUpper(ticker), minWeight)
	if err != nil {
		return nil, fmt.Errorf("failed to screen funds: %w", err)
	}
	defer rows.Close()

	results := make([]models.ScreenResult, 0)
	for rows.Next() {
		var sr models.ScreenResult
		if err := rows.Scan(&sr.FundTicker, &sr.FundName, &sr.HoldingTicker, &sr.WeightPct); err != nil {
			return nil, fmt.Errorf("failed to scan screen result: %w", err)
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// TrendingFunds returns the most recently refreshed funds
func (r *FundRepository) TrendingFunds(ctx context.Context, limit int) ([]models.TrendingFund, error) {
	query := `
		SELECT ticker, name, price, change_pct
		FROM funds
		WHERE updated_at IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending funds: %w", err)
	}
	defer rows.Close()

	results := make([]models.TrendingFund, 0)
	for rows.Next() {
		var tf models.TrendingFund
		if err := rows.Scan(&tf.Ticker, &tf.Name, &tf.Price, &tf.ChangePct); err != nil {
			return nil, fmt.Errorf("failed to scan trending fund: %w", err)
		}
		results = append(results, tf)
	}
	return results, rows.Err()
}

// SearchFunds returns funds whose ticker contains query, case-insensitively
func (r *FundRepository) SearchFunds(ctx context.Context, query string, limit int) ([]models.FundSearchResult, error) {
	sqlQuery := `
		SELECT ticker, name
		FROM funds
		WHERE ticker ILIKE $1
		ORDER BY view_count DESC, ticker
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, sqlQuery, "%"+escapeLike(strings.ToUpper(query))+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search funds: %w", err)
	}
	defer rows.Close()

	results := make([]models.FundSearchResult, 0)
	for rows.Next() {
		var fs models.FundSearchResult
		if err := rows.Scan(&fs.Ticker, &fs.Name); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, fs)
	}
	return results, rows.Err()
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
