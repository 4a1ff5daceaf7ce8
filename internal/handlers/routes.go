package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every public endpoint on r
func RegisterRoutes(r gin.IRouter, fund *FundHandler, thai *ThaiFundHandler, analytics *AnalyticsHandler) {
	r.GET("/", fund.Root)
	r.GET("/health", fund.Health)

	api := r.Group("/api")
	api.GET("/fund/:ticker", fund.GetFund)
	api.GET("/screen", fund.Screen)
	api.GET("/trending", fund.Trending)
	api.GET("/search", fund.Search)

	api.GET("/thai-fund-info/:ticker", thai.GetFundInfo)
	thaiFunds := api.Group("/thai-funds")
	thaiFunds.GET("/search", thai.Search)
	thaiFunds.GET("/feeders", thai.Feeders)
	thaiFunds.GET("/amcs", thai.AMCs)
	thaiFunds.GET("/:proj_id/master-holdings", thai.MasterHoldings)

	api.POST("/analytics/session", analytics.CreateSession)
	api.POST("/analytics/event", analytics.TrackEvent)
}
