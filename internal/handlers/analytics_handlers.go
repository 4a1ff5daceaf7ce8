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

// Analytics records anonymous usage
type Analytics interface {
	CreateSession(ctx context.Context, req *models.CreateSessionRequest) (string, error)
	TrackEvent(ctx context.Context, req *models.TrackEventRequest) error
}

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	analyticsSvc Analytics
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc Analytics) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// CreateSession handles POST /api/analytics/session
// @Summary Start an analytics session
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body models.CreateSessionRequest true "Session details"
// @Success 200 {object} models.CreateSessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/session [post]
func (h *AnalyticsHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	sessionID, err := h.analyticsSvc.CreateSession(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidUUID) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
			return
		}
		log.Errorf("Analytics session creation error: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, models.CreateSessionResponse{SessionID: sessionID})
}

// TrackEvent handles POST /api/analytics/event
// @Summary Record an analytics event
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body models.TrackEventRequest true "Event"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/event [post]
func (h *AnalyticsHandler) TrackEvent(c *gin.Context) {
	var req models.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.analyticsSvc.TrackEvent(c.Request.Context(), &req); err != nil {
		if errors.Is(err, services.ErrInvalidUUID) || errors.Is(err, services.ErrInvalidEventType) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
			return
		}
		log.Errorf("Analytics event tracking error: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}
