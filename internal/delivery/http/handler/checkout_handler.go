package handler

import (
	"net/http"
	"time"

	"device-checkout/internal/usecase/checkout"
	"device-checkout/internal/usecase/device"
	"device-checkout/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	service *checkout.Service
}

func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.POST("/:id/checkout", h.CheckOut)
		devices.POST("/:id/checkin", h.CheckIn)
	}
}

// CheckOut admits the request against the time window and the exclusivity
// rules, then returns the refreshed pool. The clock is read here, at the
// boundary, and handed down.
func (h *CheckoutHandler) CheckOut(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	devices, err := h.service.CheckOut(c.Request.Context(), deviceID, userID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device checked out successfully", device.ToDeviceResponses(devices))
}

func (h *CheckoutHandler) CheckIn(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	devices, err := h.service.CheckIn(c.Request.Context(), deviceID, userID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device checked in successfully", device.ToDeviceResponses(devices))
}
