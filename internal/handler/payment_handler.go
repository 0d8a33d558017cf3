package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/librarydesk/librarydesk-api/internal/models"
	"github.com/librarydesk/librarydesk-api/internal/service"
	"github.com/librarydesk/librarydesk-api/pkg/response"
)

// PaymentHandler exposes the payment ledger.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// List returns payment records, newest first, optionally for one student.
func (h *PaymentHandler) List(c *gin.Context) {
	var filter models.PaymentFilter
	filter.StudentID = c.Query("student_id")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	payments, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// ListForStudent returns the payment history of a single student.
func (h *PaymentHandler) ListForStudent(c *gin.Context) {
	var filter models.PaymentFilter
	filter.StudentID = c.Param("id")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	payments, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}
