package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/epeers/whattheyhold/internal/httputil"
	log "github.com/sirupsen/logrus"
)

// DefaultFaviconURL serves 128px favicons by domain
const DefaultFaviconURL = "https://www.google.com/s2/favicons"

// IssuerDomains maps a fund issuer slug to the domain its logo is taken from
var IssuerDomains = map[string]string{
	"vanguard":       "vanguard.com",
	"invesco":        "invesco.com",
	"blackrock":      "blackrock.com",
	"ishares":        "ishares.com",
	"spdr":           "ssga.com",
	"state_street":   "statestreet.com",
	"fidelity":       "fidelity.com",
	"ark":            "ark-funds.com",
	"wisdomtree":     "wisdomtree.com",
	"charles_schwab": "schwab.com",
	"global_x":       "globalxetfs.com",
}

// ObjectUploader stores one object
type ObjectUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

// LogoUploader copies issuer favicons into object storage as <issuer>.png
type LogoUploader struct {
	store      ObjectUploader
	faviconURL string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

// NewLogoUploader creates a LogoUploader. An empty faviconURL selects DefaultFaviconURL.
func NewLogoUploader(store ObjectUploader, faviconURL string, timeout time.Duration) *LogoUploader {
	if faviconURL == "" {
		faviconURL = DefaultFaviconURL
	}
	return &LogoUploader{
		store:      store,
		faviconURL: faviconURL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      httputil.DefaultRetry,
	}
}

// WithRetry overrides the retry policy
func (u *LogoUploader) WithRetry(cfg httputil.RetryConfig) *LogoUploader {
	u.retry = cfg
	return u
}

// UploadAll processes every issuer in IssuerDomains in name order.
// It returns the issuers that were uploaded and those that failed.
func (u *LogoUploader) UploadAll(ctx context.Context) (uploaded, failed []string) {
	issuers := make([]string, 0, len(IssuerDomains))
	for issuer := range IssuerDomains {
		issuers = append(issuers, issuer)
	}
	sort.Strings(issuers)

	for _, issuer := range issuers {
		if err := u.Upload(ctx, issuer, IssuerDomains[issuer]); err != nil {
			log.Warnf("logo for %s failed: %v", issuer, err)
			failed = append(failed, issuer)
			continue
		}
		uploaded = append(uploaded, issuer)
	}
	log.Infof("uploaded %d logos, %d failed", len(uploaded), len(failed))
	return uploaded, failed
}

// Upload fetches the favicon of domain and stores it as <issuer>.png
func (u *LogoUploader) Upload(ctx context.Context, issuer, domain string) error {
	params := url.Values{}
	params.Set("domain", domain)
	params.Set("sz", "128")
	reqURL := u.faviconURL + "?" + params.Encode()

	resp, err := httputil.Do(ctx, u.httpClient, u.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("failed to fetch favicon for %s: %w", domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("favicon for %s returned status %d", domain, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read favicon for %s: %w", domain, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty favicon for %s", domain)
	}

	return u.store.Upload(ctx, issuer+".png", "image/png", bytes.NewReader(body))
}
