package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/epeers/whattheyhold/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 5
	maxListLimit     = 100

	staleWarningHeader = `110 - "Response is Stale"`
)

// FundLookup resolves fund compositions
type FundLookup interface {
	GetFundData(ctx context.Context, ticker string, forceRefresh bool) (*models.FundResponse, error)
	RecordView(ctx context.Context, ticker string)
}

// FundQueries answers the list endpoints from the durable store
type FundQueries interface {
	ScreenFunds(ctx context.Context, ticker string, minWeight float64) ([]models.ScreenResult, error)
	TrendingFunds(ctx context.Context, limit int) ([]models.TrendingFund, error)
	SearchFunds(ctx context.Context, query string, limit int) ([]models.FundSearchResult, error)
}

// FundHandler handles fund endpoints
type FundHandler struct {
	funds   FundLookup
	queries FundQueries
}

// NewFundHandler creates a new FundHandler
func NewFundHandler(funds FundLookup, queries FundQueries) *FundHandler {
	return &FundHandler{
		funds:   funds,
		queries: queries,
	}
}

// Root handles GET /
// @Summary Welcome message
// @Tags meta
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router / [get]
func (h *FundHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Welcome to WhatTheyHold API"})
}

// Health handles GET /health
// @Summary Liveness check
// @Tags meta
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Router /health [get]
func (h *FundHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// GetFund handles GET /api/fund/:ticker
// @Summary Get fund composition
// @Description Holdings, country weights and sector weights of a fund. Served from cache when fresh,
// @Description otherwise fetched upstream. A stale copy is flagged with a Warning header.
// @Tags funds
// @Produce json
// @Param ticker path string true "Fund ticker"
// @Success 200 {object} models.FundResponse
// @Header 200 {string} Warning "110 - \"Response is Stale\" when stale data is served"
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/fund/{ticker} [get]
func (h *FundHandler) GetFund(c *gin.Context) {
	ctx, wc := services.NewWarningContext(c.Request.Context())

	data, err := h.funds.GetFundData(ctx, c.Param("ticker"), false)
	if err != nil {
		if errors.Is(err, services.ErrFundNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Fund not found"})
			return
		}
		log.Errorf("Error processing request for %s: %v", c.Param("ticker"), err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	h.funds.RecordView(ctx, data.Fund.Ticker)

	if wc.Has(models.WarnServedStale) {
		c.Header("Warning", staleWarningHeader)
	}
	c.JSON(http.StatusOK, data)
}

// Screen handles GET /api/screen
// @Summary Screen funds by holding
// @Description Funds that hold the given ticker at or above min_weight percent, heaviest first
// @Tags funds
// @Produce json
// @Param holding query string true "Holding ticker"
// @Param min_weight query number false "Minimum weight in percent" default(0)
// @Success 200 {object} models.ScreenResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/screen [get]
func (h *FundHandler) Screen(c *gin.Context) {
	holding := strings.ToUpper(strings.TrimSpace(c.Query("holding")))
	if holding == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing 'holding' parameter"})
		return
	}
	minWeight := queryFloat(c, "min_weight", 0)

	results, err := h.queries.ScreenFunds(c.Request.Context(), holding, minWeight)
	if err != nil {
		log.Errorf("Error screening funds: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, models.ScreenResponse{Results: results})
}

// Trending handles GET /api/trending
// @Summary Recently refreshed funds
// @Tags funds
// @Produce json
// @Param limit query int false "Maximum results" default(5)
// @Success 200 {object} models.TrendingResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/trending [get]
func (h *FundHandler) Trending(c *gin.Context) {
	results, err := h.queries.TrendingFunds(c.Request.Context(), queryLimit(c, defaultListLimit))
	if err != nil {
		log.Errorf("Error fetching trending funds: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, models.TrendingResponse{Results: results})
}

// Search handles GET /api/search
// @Summary Search funds by ticker
// @Tags funds
// @Produce json
// @Param q query string false "Ticker fragment"
// @Param limit query int false "Maximum results" default(5)
// @Success 200 {object} models.SearchResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/search [get]
func (h *FundHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, models.SearchResponse{Results: []models.FundSearchResult{}})
		return
	}

	results, err := h.queries.SearchFunds(c.Request.Context(), q, queryLimit(c, defaultListLimit))
	if err != nil {
		log.Errorf("Error searching funds: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, models.SearchResponse{Results: results})
}

// queryFloat returns the float query parameter, or fallback when absent or malformed
func queryFloat(c *gin.Context, key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

// queryLimit reads ?limit=, clamped to [1, maxListLimit]
func queryLimit(c *gin.Context, fallback int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return fallback
	}
	return min(n, maxListLimit)
}
