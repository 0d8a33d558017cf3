package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librarydesk/librarydesk-api/internal/service"
	"github.com/librarydesk/librarydesk-api/pkg/response"
)

// DashboardHandler serves the headline dashboard figures.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary returns student, payment and occupancy totals.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, cached, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, gin.H{"cached": cached})
}
