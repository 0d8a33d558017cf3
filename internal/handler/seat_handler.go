package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librarydesk/librarydesk-api/internal/service"
	"github.com/librarydesk/librarydesk-api/pkg/response"
)

// SeatHandler exposes the seat layout endpoint.
type SeatHandler struct {
	seats *service.SeatService
}

// NewSeatHandler constructs SeatHandler.
func NewSeatHandler(seats *service.SeatService) *SeatHandler {
	return &SeatHandler{seats: seats}
}

// Layout returns the tri-state seat grid. The optional selected query carries
// the caller's in-progress pick so it renders highlighted.
func (h *SeatHandler) Layout(c *gin.Context) {
	layouts, err := h.seats.Layout(c.Request.Context(), c.Query("selected"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, layouts, nil)
}
