package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/epeers/whattheyhold/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	defaultThaiSearchLimit = 10
	defaultFeederLimit     = 50
)

// ThaiFunds is the Thai fund service surface used by the handlers
type ThaiFunds interface {
	GetFundInfo(ctx context.Context, key string) (*models.ThaiFundInfoResponse, error)
	Search(ctx context.Context, q string, limit int) ([]models.ThaiFund, error)
	FeederFunds(ctx context.Context, limit int) ([]models.ThaiFund, error)
	AMCs(ctx context.Context) ([]string, error)
	MasterHoldings(ctx context.Context, projID string) (*models.MasterHoldingsResponse, error)
}

// ThaiFundHandler handles SEC Thailand fund endpoints
type ThaiFundHandler struct {
	thaiSvc ThaiFunds
}

// NewThaiFundHandler creates a new ThaiFundHandler
func NewThaiFundHandler(thaiSvc ThaiFunds) *ThaiFundHandler {
	return &ThaiFundHandler{thaiSvc: thaiSvc}
}

// GetFundInfo handles GET /api/thai-fund-info/:ticker
// @Summary Get a Thai fund with its top holdings
// @Tags thai-funds
// @Produce json
// @Param ticker path string true "Fund abbreviation or proj_id"
// @Success 200 {object} models.ThaiFundInfoResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/thai-fund-info/{ticker} [get]
func (h *ThaiFundHandler) GetFundInfo(c *gin.Context) {
	resp, err := h.thaiSvc.GetFundInfo(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		if errors.Is(err, services.ErrFundNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Fund not found"})
			return
		}
		log.Errorf("Error fetching thai fund %s: %v", c.Param("ticker"), err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search handles GET /api/thai-funds/search
// @Summary Search Thai funds
// @Tags thai-funds
// @Produce json
// @Param q query string false "Name, abbreviation, proj_id or AMC fragment"
// @Param limit query int false "Maximum results" default(10)
// @Success 200 {object} models.ThaiFundSearchResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/thai-funds/search [get]
func (h *ThaiFundHandler) Search(c *gin.Context) {
	results, err := h.thaiSvc.Search(c.Request.Context(), c.Query("q"), queryLimit(c, defaultThaiSearchLimit))
	if err != nil {
		log.Errorf("Error searching thai funds: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, models.ThaiFundSearchResponse{Results: results})
}

// Feeders handles GET /api/thai-funds/feeders
// @Summary List Thai feeder funds
// @Tags thai-funds
// @Produce json
// @Param limit query int false "Maximum results" default(50)
// @Success 200 {object} models.ThaiFundSearchResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/thai-funds/feeders [get]
func (h *ThaiFundHandler) Feeders(c *gin.Context) {
	results, err := h.thaiSvc.FeederFunds(c.Request.Context(), queryLimit(c, defaultFeederLimit))
	if err != nil {
		log.Errorf("Error listing feeder funds: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, models.ThaiFundSearchResponse{Results: results})
}

// AMCs handles GET /api/thai-funds/amcs
// @Summary List asset management companies
// @Tags thai-funds
// @Produce json
// @Success 200 {object} models.AMCListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/thai-funds/amcs [get]
func (h *ThaiFundHandler) AMCs(c *gin.Context) {
	results, err := h.thaiSvc.AMCs(c.Request.Context())
	if err != nil {
		log.Errorf("Error listing AMCs: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, models.AMCListResponse{Results: results})
}

// MasterHoldings handles GET /api/thai-funds/:proj_id/master-holdings
// @Summary Composition of a feeder fund's master fund
// @Tags thai-funds
// @Produce json
// @Param proj_id path string true "Feeder fund proj_id"
// @Success 200 {object} models.MasterHoldingsResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/thai-funds/{proj_id}/master-holdings [get]
func (h *ThaiFundHandler) MasterHoldings(c *gin.Context) {
	resp, err := h.thaiSvc.MasterHoldings(c.Request.Context(), c.Param("proj_id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotMapped):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Master fund not mapped", Message: err.Error()})
		case errors.Is(err, services.ErrFundNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Fund not found"})
		default:
			log.Errorf("Error resolving master holdings for %s: %v", c.Param("proj_id"), err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}
