package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/epeers/whattheyhold/internal/httputil"
	"github.com/epeers/whattheyhold/internal/upstream"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Alphavantage is a Stock and ETF API that fetches data including pricing data
// It is a subscription service, but provides free API access
// https://www.alphavantage.co/documentation/
const defaultBaseURL = "https://www.alphavantage.co/query"

// Client is an HTTP client for the AlphaVantage API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

// NewClient creates a new AlphaVantage client
func NewClient(apiKey string, timeout time.Duration) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, timeout)
}

// NewClientWithBaseURL creates a new AlphaVantage client with a custom base URL (for testing)
func NewClientWithBaseURL(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: httputil.DefaultRetry,
	}
}

// WithRetry overrides the retry policy
func (c *Client) WithRetry(cfg httputil.RetryConfig) *Client {
	c.retry = cfg
	return c
}

// FetchRaw fetches ETF_PROFILE and GLOBAL_QUOTE in parallel.
// A failed quote only leaves the price empty, a failed profile fails the fetch.
func (c *Client) FetchRaw(ctx context.Context, ticker string) (*upstream.Payload, error) {
	var (
		profile *ETFProfileResponse
		price   *float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.GetETFProfile(gctx, ticker)
		profile = p
		return err
	})
	g.Go(func() error {
		p, err := c.GetPreviousClose(gctx, ticker)
		if err != nil {
			log.Warnf("alphavantage quote for %s failed: %v", ticker, err)
			return nil
		}
		price = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	payload := &upstream.Payload{
		Ticker:   ticker,
		Name:     ticker,
		Price:    price,
		Currency: "USD",
		Scale:    upstream.ScaleFraction,
	}

	for _, h := range profile.Holdings {
		weight, err := strconv.ParseFloat(h.Weight, 64)
		if err != nil {
			continue
		}
		payload.Holdings = append(payload.Holdings, upstream.RawHolding{
			Symbol: h.Symbol,
			Name:   h.Name,
			Weight: weight,
		})
	}
	for _, s := range profile.Sectors {
		weight, err := strconv.ParseFloat(s.Weight, 64)
		if err != nil {
			continue
		}
		payload.Sectors = append(payload.Sectors, upstream.RawSectorWeight{
			Sector: strings.ToLower(s.Sector),
			Weight: weight,
		})
	}

	if len(payload.Holdings) == 0 {
		return nil, fmt.Errorf("%w: %s has no ETF_PROFILE holdings", upstream.ErrEmpty, ticker)
	}
	return payload, nil
}

// GetETFProfile fetches the holdings and sector allocation of an ETF
func (c *Client) GetETFProfile(ctx context.Context, symbol string) (*ETFProfileResponse, error) {
	params := url.Values{}
	params.Set("function", "ETF_PROFILE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var etfResp ETFProfileResponse
	if err := json.Unmarshal(body, &etfResp); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %w", upstream.ErrUnavailable, err)
	}
	if msg := etfResp.refusal(); msg != "" {
		return nil, fmt.Errorf("%w: %s", upstream.ErrUnavailable, msg)
	}
	return &etfResp, nil
}

// GetPreviousClose fetches the previous close of a symbol from GLOBAL_QUOTE
func (c *Client) GetPreviousClose(ctx context.Context, symbol string) (*float64, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var quoteResp GlobalQuoteResponse
	if err := json.Unmarshal(body, &quoteResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	raw := quoteResp.GlobalQuote.PreviousClose
	if raw == "" {
		raw = quoteResp.GlobalQuote.Price
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	return &price, nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", upstream.RandomUserAgent())
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", upstream.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d", upstream.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", upstream.ErrUnavailable, err)
	}
	return body, nil
}
