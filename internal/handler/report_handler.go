package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librarydesk/librarydesk-api/internal/service"
	"github.com/librarydesk/librarydesk-api/pkg/response"
)

// ReportHandler exposes the monthly rollup and its downloads.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Monthly returns per-month enrollment and revenue aggregates.
func (h *ReportHandler) Monthly(c *gin.Context) {
	aggregates, cached, err := h.reports.Monthly(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, aggregates, nil, gin.H{"cached": cached})
}

// Export streams the monthly report as csv, pdf or xlsx.
func (h *ReportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.reports.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
