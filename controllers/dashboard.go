package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"tableorder-backend/services"
	"tableorder-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	dashboard *services.DashboardService
	logger    *slog.Logger
}

func NewDashboardController(dashboard *services.DashboardService, logger *slog.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, logger: logger}
}

// GetDashboardOverview returns revenue, order and menu counters.
func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	overview, err := dc.dashboard.Overview(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, dc.logger, err, "Failed to fetch dashboard overview")
		return
	}
	c.JSON(http.StatusOK, overview)
}

type TableController struct {
	baseURL string
	logger  *slog.Logger
}

func NewTableController(baseURL string, logger *slog.Logger) *TableController {
	return &TableController{baseURL: baseURL, logger: logger}
}

// GetTableLinks returns the customer menu link for tables 1..count.
func (tc *TableController) GetTableLinks(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "count must be a number")
		return
	}
	if tc.baseURL == "" {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Client base URL is not configured")
		return
	}

	links, err := services.TableLinks(tc.baseURL, count)
	if err != nil {
		respondWithServiceError(c, tc.logger, err, "Failed to build table links")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(links), "links": links})
}
