// Package sec is a client for the SEC Thailand Open Data API (https://secopendata.sec.or.th).
package sec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/epeers/whattheyhold/internal/httputil"
	"github.com/epeers/whattheyhold/internal/upstream"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.sec.or.th"

	// DefaultThrottle is the minimum gap between two requests
	DefaultThrottle = 500 * time.Millisecond

	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
)

// ErrNoAPIKey is returned by every call when the client has no subscription key
var ErrNoAPIKey = errors.New("SEC API key not configured")

// Client is an HTTP client for the SEC Open Data API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
	throttle   time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a new SEC client. An empty baseURL selects DefaultBaseURL.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry:    httputil.DefaultRetry,
		throttle: DefaultThrottle,
	}
}

// WithRetry overrides the retry policy
func (c *Client) WithRetry(cfg httputil.RetryConfig) *Client {
	c.retry = cfg
	return c
}

// WithThrottle overrides the gap between requests
func (c *Client) WithThrottle(d time.Duration) *Client {
	c.throttle = d
	return c
}

// Enabled reports whether the client has a subscription key
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// FundProfiles fetches one page of fund profiles
func (c *Client) FundProfiles(ctx context.Context, pageNum int, search string) ([]FundProfile, int, error) {
	params := url.Values{}
	params.Set("current_page", strconv.Itoa(pageNum))
	if search != "" {
		params.Set("search", search)
	}

	var p page[FundProfile]
	if err := c.get(ctx, "/v1/fund/general-info/profiles", params, &p); err != nil {
		return nil, 0, err
	}
	return p.Items, max(p.TotalPages, 1), nil
}

// AllFundProfiles walks the profile pages until the last page, an empty page or maxPages.
// maxPages <= 0 means no limit.
func (c *Client) AllFundProfiles(ctx context.Context, maxPages int) ([]FundProfile, error) {
	var all []FundProfile
	for pageNum := 1; ; pageNum++ {
		items, totalPages, err := c.FundProfiles(ctx, pageNum, "")
		if err != nil {
			return all, err
		}
		if len(items) == 0 {
			log.Debugf("no fund profiles on page %d, stopping", pageNum)
			break
		}
		all = append(all, items...)
		log.Debugf("fetched %d fund profiles from page %d/%d (total %d)", len(items), pageNum, totalPages, len(all))

		if pageNum >= totalPages {
			break
		}
		if maxPages > 0 && pageNum >= maxPages {
			log.Infof("reached max pages limit (%d)", maxPages)
			break
		}
	}
	return all, nil
}

// AMCs fetches one page of asset management companies
func (c *Client) AMCs(ctx context.Context, pageNum int) ([]AMC, error) {
	params := url.Values{}
	params.Set("current_page", strconv.Itoa(pageNum))

	var p page[AMC]
	if err := c.get(ctx, "/v1/fund/general-info/amcs", params, &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// Top5Holdings fetches the factsheet top-5 holdings of a fund
func (c *Client) Top5Holdings(ctx context.Context, projID string) ([]TopHolding, error) {
	params := url.Values{}
	params.Set("proj_id", projID)
	params.Set("current_page", "1")

	var p page[TopHolding]
	if err := c.get(ctx, "/v1/fund/factsheet/top5-holdings", params, &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// QuarterlyPortfolio fetches the outstanding portfolio of a fund.
// startPeriod is YYYYMM and may be empty.
func (c *Client) QuarterlyPortfolio(ctx context.Context, projID, startPeriod string) ([]PortfolioItem, error) {
	params := url.Values{}
	params.Set("proj_id", projID)
	params.Set("current_page", "1")
	if startPeriod != "" {
		params.Set("period_start", startPeriod)
	}

	var p page[PortfolioItem]
	if err := c.get(ctx, "/v1/fund/outstanding/portfolio", params, &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// wait blocks until the throttle gap since the previous request has passed
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gap := c.throttle - time.Since(c.lastRequest); gap > 0 {
		timer := time.NewTimer(gap)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if !c.Enabled() {
		return ErrNoAPIKey
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(subscriptionKeyHeader, c.apiKey)
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("%w: SEC request %s failed: %w", upstream.ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: SEC API %s returned status %d", upstream.ErrUnavailable, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read SEC response: %w", upstream.ErrUnavailable, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to unmarshal SEC response: %w", upstream.ErrUnavailable, err)
	}
	return nil
}
