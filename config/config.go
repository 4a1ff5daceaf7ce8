package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Upstream providers
const (
	ProviderYahoo        = "yahoo"
	ProviderAlphaVantage = "alphavantage"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL string
	Port  string

	UpstreamProvider string
	AVKey            string
	YahooBaseURL     string
	UpstreamTimeout  time.Duration
	StoreTimeout     time.Duration
	FreshnessWindow  time.Duration

	SECAPIKey     string
	SECAPIBaseURL string

	CORSOrigins []string

	RefreshSchedule string
	RefreshTickers  []string
	RefreshPause    time.Duration

	LogLevel  string
	LogFormat string

	LogoBucket        string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Load reads configuration from environment variables.
// Values from a .env file in the working directory are used only when the
// shell environment does not already set them.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	provider := strings.ToLower(envStr("UPSTREAM_PROVIDER", ProviderYahoo))
	if provider != ProviderYahoo && provider != ProviderAlphaVantage {
		return nil, fmt.Errorf("UPSTREAM_PROVIDER must be %q or %q, got %q", ProviderYahoo, ProviderAlphaVantage, provider)
	}

	avKey := os.Getenv("AV_KEY")
	if provider == ProviderAlphaVantage && avKey == "" {
		return nil, fmt.Errorf("AV_KEY environment variable is required for the alphavantage provider")
	}

	cfg := &Config{
		PGURL:             pgURL,
		Port:              envStr("PORT", "8080"),
		UpstreamProvider:  provider,
		AVKey:             avKey,
		YahooBaseURL:      os.Getenv("YAHOO_BASE_URL"),
		SECAPIKey:         os.Getenv("SEC_API_KEY"),
		SECAPIBaseURL:     envStr("SEC_API_BASE_URL", "https://api.sec.or.th"),
		CORSOrigins:       envList("CORS_ORIGINS", []string{"*"}),
		RefreshSchedule:   os.Getenv("REFRESH_SCHEDULE"),
		RefreshTickers:    envList("REFRESH_TICKERS", nil),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		LogFormat:         strings.ToLower(envStr("LOG_FORMAT", "text")),
		LogoBucket:        envStr("LOGO_BUCKET", "logos"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          envStr("S3_REGION", "us-east-1"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
	}

	for i, t := range cfg.RefreshTickers {
		cfg.RefreshTickers[i] = strings.ToUpper(t)
	}

	var err error
	if cfg.UpstreamTimeout, err = envDuration("UPSTREAM_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = envDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.FreshnessWindow, err = envDuration("FRESHNESS_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RefreshPause, err = envDuration("REFRESH_PAUSE", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshPause == 0 {
		return nil, fmt.Errorf("REFRESH_PAUSE must be greater than zero")
	}

	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must not be negative", key)
	}
	return d, nil
}

// envList splits a comma separated value, dropping empty entries
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
