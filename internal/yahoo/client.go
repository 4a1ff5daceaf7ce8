package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/epeers/whattheyhold/internal/httputil"
	"github.com/epeers/whattheyhold/internal/upstream"
	log "github.com/sirupsen/logrus"
)

// Yahoo Finance serves fund composition through the quoteSummary endpoint.
// topHoldings carries holdings and sector weights as fractions, price carries names and currency.
//
// quoteSummary answers 401 without a session cookie and a matching crumb. The cookie is
// set by defaultCookieURL and the crumb read from /v1/test/getcrumb with that cookie.
const (
	defaultBaseURL   = "https://query2.finance.yahoo.com"
	defaultCookieURL = "https://fc.yahoo.com"
)

const quoteSummaryModules = "topHoldings,price,summaryDetail"

// Client is an HTTP client for Yahoo Finance
type Client struct {
	baseURL    string
	cookieURL  string
	httpClient *http.Client
	retry      httputil.RetryConfig
	userAgent  func() string

	mu    sync.Mutex
	crumb string
}

// NewClient creates a new Yahoo Finance client with the given request timeout
func NewClient(timeout time.Duration) *Client {
	return NewClientWithBaseURL(defaultBaseURL, timeout)
}

// NewClientWithBaseURL creates a new Yahoo Finance client with a custom base URL (for testing)
func NewClientWithBaseURL(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	// cookiejar.New only fails on a broken PublicSuffixList
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		cookieURL: defaultCookieURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		retry:     httputil.DefaultRetry,
		userAgent: upstream.RandomUserAgent,
	}
}

// WithCookieURL overrides the page that sets the session cookie
func (c *Client) WithCookieURL(u string) *Client {
	c.cookieURL = u
	return c
}

// WithRetry overrides the retry policy
func (c *Client) WithRetry(cfg httputil.RetryConfig) *Client {
	c.retry = cfg
	return c
}

// FetchRaw fetches the holdings, sector weights and basic info of a fund
func (c *Client) FetchRaw(ctx context.Context, ticker string) (*upstream.Payload, error) {
	doc, err := c.quoteSummary(ctx, ticker)
	if err != nil {
		return nil, err
	}

	result, ok := lookup("$.quoteSummary.result[0]", doc)
	if !ok || result == nil {
		return nil, fmt.Errorf("%w: no quoteSummary result for %s", upstream.ErrEmpty, ticker)
	}

	payload := &upstream.Payload{
		Ticker:   ticker,
		Name:     firstString(result, ticker, "$.price.longName", "$.price.shortName"),
		Currency: firstString(result, "", "$.price.currency", "$.summaryDetail.currency"),
		Price:    firstFloat(result, "$.summaryDetail.previousClose", "$.price.regularMarketPreviousClose"),
		Holdings: parseHoldings(result),
		Sectors:  parseSectors(result),
		Scale:    upstream.ScaleFraction,
	}
	if change := firstFloat(result, "$.price.regularMarketChangePercent"); change != nil {
		pct := *change * 100
		payload.ChangePct = &pct
	}

	if len(payload.Holdings) == 0 {
		return nil, fmt.Errorf("%w: %s has no topHoldings", upstream.ErrEmpty, ticker)
	}

	log.Debugf("yahoo returned %d holdings and %d sectors for %s", len(payload.Holdings), len(payload.Sectors), ticker)
	return payload, nil
}

// quoteSummary performs the request and decodes the body into a generic document.
// A 401 or 403 triggers one crumb handshake and a second attempt.
func (c *Client) quoteSummary(ctx context.Context, ticker string) (any, error) {
	crumb := c.currentCrumb()
	resp, err := c.get(ctx, c.quoteSummaryURL(ticker, crumb))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s: %w", upstream.ErrUnavailable, ticker, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		log.Debugf("yahoo rejected the request for %s with %d, renewing crumb", ticker, resp.StatusCode)

		if crumb, err = c.renewCrumb(ctx, crumb); err != nil {
			return nil, fmt.Errorf("%w: crumb handshake failed: %w", upstream.ErrUnavailable, err)
		}
		if resp, err = c.get(ctx, c.quoteSummaryURL(ticker, crumb)); err != nil {
			return nil, fmt.Errorf("%w: failed to fetch %s: %w", upstream.ErrUnavailable, ticker, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: yahoo has no data for %s", upstream.ErrEmpty, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d", upstream.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", upstream.ErrUnavailable, err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %w", upstream.ErrUnavailable, err)
	}
	return doc, nil
}

func (c *Client) quoteSummaryURL(ticker, crumb string) string {
	params := url.Values{}
	params.Set("modules", quoteSummaryModules)
	if crumb != "" {
		params.Set("crumb", crumb)
	}
	return fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())
}

func (c *Client) currentCrumb() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crumb
}

// renewCrumb replaces rejected with a new crumb, unless another call already did
func (c *Client) renewCrumb(ctx context.Context, rejected string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumb != "" && c.crumb != rejected {
		return c.crumb, nil
	}

	// the cookie page is usually an error page, only its Set-Cookie matters
	resp, err := c.get(ctx, c.cookieURL)
	if err != nil {
		return "", fmt.Errorf("cookie request: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	resp, err = c.get(ctx, c.baseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("crumb request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("getcrumb returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("failed to read crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return "", fmt.Errorf("getcrumb returned an empty crumb")
	}

	c.crumb = crumb
	return crumb, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	return httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent())
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
}

// parseHoldings reads topHoldings.holdings, dropping rows without a weight
func parseHoldings(result any) []upstream.RawHolding {
	rows, ok := lookup("$.topHoldings.holdings", result)
	if !ok {
		return nil
	}
	list, ok := rows.([]any)
	if !ok {
		return nil
	}

	holdings := make([]upstream.RawHolding, 0, len(list))
	for _, row := range list {
		weight := firstFloat(row, "$.holdingPercent")
		if weight == nil {
			continue
		}
		holdings = append(holdings, upstream.RawHolding{
			Symbol: firstString(row, "", "$.symbol"),
			Name:   firstString(row, "", "$.holdingName"),
			Weight: *weight,
		})
	}
	return holdings
}

// parseSectors reads topHoldings.sectorWeightings, a list of single-key objects
func parseSectors(result any) []upstream.RawSectorWeight {
	rows, ok := lookup("$.topHoldings.sectorWeightings", result)
	if !ok {
		return nil
	}
	list, ok := rows.([]any)
	if !ok {
		return nil
	}

	var sectors []upstream.RawSectorWeight
	for _, row := range list {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		for sector, value := range m {
			weight, ok := rawFloat(value)
			if !ok {
				continue
			}
			sectors = append(sectors, upstream.RawSectorWeight{Sector: sector, Weight: weight})
		}
	}
	return sectors
}

// lookup evaluates a JSONPath, a missing key is reported as !ok
func lookup(path string, doc any) (any, bool) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, false
	}
	return v, true
}

// firstString returns the first non-empty string found at paths, or def
func firstString(doc any, def string, paths ...string) string {
	for _, p := range paths {
		v, ok := lookup(p, doc)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return def
}

// firstFloat returns the first number found at paths
func firstFloat(doc any, paths ...string) *float64 {
	for _, p := range paths {
		v, ok := lookup(p, doc)
		if !ok {
			continue
		}
		if f, ok := rawFloat(v); ok {
			return &f
		}
	}
	return nil
}

// rawFloat accepts either a bare number or Yahoo's {"raw": n, "fmt": "..."} wrapper
func rawFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case map[string]any:
		if raw, ok := val["raw"].(float64); ok {
			return raw, true
		}
	}
	return 0, false
}
