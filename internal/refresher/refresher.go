// Package refresher keeps popular funds warm by force-refreshing them on a schedule.
package refresher

import (
	"context"
	"time"

	"github.com/epeers/whattheyhold/internal/models"
	log "github.com/sirupsen/logrus"
)

// DefaultPause is the gap between two upstream refreshes
const DefaultPause = 3 * time.Second

// PopularTickers is refreshed when no explicit list is configured
var PopularTickers = []string{"VOO", "QQQ", "VTI", "SCHD", "SPY", "IVV", "VUG", "IWM", "VNQ", "ARKK"}

// FundRefresher is the orchestrator entry point the refresher drives
type FundRefresher interface {
	GetFundData(ctx context.Context, ticker string, forceRefresh bool) (*models.FundResponse, error)
}

// Result counts the outcome of one RefreshAll run
type Result struct {
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Refresher force-refreshes a fixed ticker list, one ticker at a time
type Refresher struct {
	funds   FundRefresher
	tickers []string
	pause   time.Duration
}

// New creates a Refresher. An empty ticker list selects PopularTickers and a
// negative pause selects DefaultPause.
func New(funds FundRefresher, tickers []string, pause time.Duration) *Refresher {
	if len(tickers) == 0 {
		tickers = PopularTickers
	}
	if pause < 0 {
		pause = DefaultPause
	}
	return &Refresher{
		funds:   funds,
		tickers: tickers,
		pause:   pause,
	}
}

// Tickers returns the list the refresher works through
func (r *Refresher) Tickers() []string {
	return append([]string(nil), r.tickers...)
}

// RefreshAll refreshes every ticker in order, pausing between calls.
// It stops early only when ctx is done.
func (r *Refresher) RefreshAll(ctx context.Context) Result {
	start := time.Now()
	res := Result{Failed: []string{}}

	for i, ticker := range r.tickers {
		if ctx.Err() != nil {
			log.Warnf("refresh interrupted after %d of %d tickers", i, len(r.tickers))
			return res
		}
		if i > 0 && r.pause > 0 {
			select {
			case <-ctx.Done():
				log.Warnf("refresh interrupted after %d of %d tickers", i, len(r.tickers))
				return res
			case <-time.After(r.pause):
			}
		}

		if _, err := r.funds.GetFundData(ctx, ticker, true); err != nil {
			log.Warnf("failed to refresh %s: %v", ticker, err)
			res.Failed = append(res.Failed, ticker)
			continue
		}
		log.Debugf("refreshed %s", ticker)
		res.Succeeded++
	}

	log.Infof("refreshed %d/%d funds in %s", res.Succeeded, len(r.tickers), time.Since(start).Round(time.Millisecond))
	return res
}
