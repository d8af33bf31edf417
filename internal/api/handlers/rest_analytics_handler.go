package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ylvish/torque/internal/services"
)

// RestAnalyticsHandler serves the staff dashboard stats.
type RestAnalyticsHandler struct {
	analyticsService services.IAnalyticsService
}

// NewRestAnalyticsHandler creates a new RestAnalyticsHandler.
func NewRestAnalyticsHandler(analyticsService services.IAnalyticsService) *RestAnalyticsHandler {
	return &RestAnalyticsHandler{analyticsService: analyticsService}
}

// GetDashboardStats handles GET /v1/staff/analytics.
func (h *RestAnalyticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
