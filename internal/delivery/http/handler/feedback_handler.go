package handler

import (
	"net/http"
	"time"

	"device-checkout/internal/usecase/device"
	"device-checkout/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FeedbackHandler struct {
	service *device.Service
}

func NewFeedbackHandler(service *device.Service) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

func (h *FeedbackHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.POST("/:id/feedback", h.AddFeedback)
		devices.DELETE("/:id/feedback", h.RemoveFeedback)
	}
}

// AddFeedback records the caller's review. The display name is taken from
// the token claims at this moment and stored verbatim on the entry.
func (h *FeedbackHandler) AddFeedback(c *gin.Context) {
	reviewerID, ok := callerID(c)
	if !ok {
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	var req device.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ledger, err := h.service.AddFeedback(c.Request.Context(), deviceID, reviewerID, callerUsername(c), &req, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Feedback added successfully", ledger)
}

func (h *FeedbackHandler) RemoveFeedback(c *gin.Context) {
	reviewerID, ok := callerID(c)
	if !ok {
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	ledger, err := h.service.RemoveFeedback(c.Request.Context(), deviceID, reviewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Feedback removed successfully", ledger)
}
