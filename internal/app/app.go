// Package app wires configuration into the clients and services shared by the
// HTTP server and the fundctl maintenance tool.
package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/epeers/whattheyhold/config"
	"github.com/epeers/whattheyhold/internal/alphavantage"
	"github.com/epeers/whattheyhold/internal/cache"
	"github.com/epeers/whattheyhold/internal/repository"
	"github.com/epeers/whattheyhold/internal/sec"
	"github.com/epeers/whattheyhold/internal/services"
	"github.com/epeers/whattheyhold/internal/upstream"
	"github.com/epeers/whattheyhold/internal/yahoo"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the global logrus logger
func ConfigureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	return nil
}

// NewProvider returns the upstream holdings provider selected by UPSTREAM_PROVIDER
func NewProvider(cfg *config.Config) upstream.Provider {
	if cfg.UpstreamProvider == config.ProviderAlphaVantage {
		return alphavantage.NewClient(cfg.AVKey, cfg.UpstreamTimeout)
	}
	return yahoo.NewClientWithBaseURL(cfg.YahooBaseURL, cfg.UpstreamTimeout)
}

// Services holds every service built on top of the shared pool
type Services struct {
	FundRepo  *repository.FundRepository
	Funds     *services.FundService
	Thai      *services.ThaiFundService
	SECImport *services.SECImportService
	Analytics *services.AnalyticsService
	SEC       *sec.Client
}

// NewServices builds the repositories and services
func NewServices(cfg *config.Config, pool *pgxpool.Pool) *Services {
	fundRepo := repository.NewFundRepository(pool)
	thaiRepo := repository.NewThaiFundRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	secClient := sec.NewClient(cfg.SECAPIKey, cfg.SECAPIBaseURL, cfg.UpstreamTimeout)
	if !secClient.Enabled() {
		log.Warn("SEC_API_KEY is not set, Thai factsheet lookups and imports are disabled")
	}

	funds := services.NewFundService(fundRepo, NewProvider(cfg), cache.NewFundCache(), services.FundServiceConfig{
		MaxAge:          cfg.FreshnessWindow,
		StoreTimeout:    cfg.StoreTimeout,
		UpstreamTimeout: cfg.UpstreamTimeout,
	})

	return &Services{
		FundRepo:  fundRepo,
		Funds:     funds,
		Thai:      services.NewThaiFundService(thaiRepo, secClient, funds),
		SECImport: services.NewSECImportService(secClient, thaiRepo),
		Analytics: services.NewAnalyticsService(analyticsRepo),
		SEC:       secClient,
	}
}

// WithCORS wraps h with the CORS policy for the given origins.
// Warning is exposed so browsers can see stale responses.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Warning", "X-Request-ID"},
		MaxAge:         300,
	})(h)
}
