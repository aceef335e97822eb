package handler

import (
	"errors"
	"net/http"

	domainDevice "device-checkout/internal/domain/device"
	domainUser "device-checkout/internal/domain/user"
	appErrors "device-checkout/pkg/errors"
	"device-checkout/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// statusForError maps domain sentinels onto HTTP statuses: absent entities
// are 404, authorization failures 403, caller-fixable input 400, and every
// conflict or policy gate 409.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domainDevice.ErrDeviceNotFound),
		errors.Is(err, domainDevice.ErrFeedbackNotFound),
		errors.Is(err, domainUser.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainDevice.ErrNotRegisterer):
		return http.StatusForbidden
	case errors.Is(err, domainDevice.ErrAlreadyCheckedOut),
		errors.Is(err, domainDevice.ErrNotCheckedOut),
		errors.Is(err, domainDevice.ErrNotCurrentHolder),
		errors.Is(err, domainDevice.ErrUserAlreadyHolding),
		errors.Is(err, domainDevice.ErrDuplicateFeedback),
		errors.Is(err, domainDevice.ErrPoolCapacityReached),
		errors.Is(err, domainDevice.ErrOutsideCheckoutWindow),
		errors.Is(err, domainUser.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, domainUser.ErrUserInactive):
		return http.StatusUnauthorized
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	utils.ErrorResponse(c, statusForError(err), err.Error())
}

// callerID returns the authenticated user id placed in the context by the
// auth middleware.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

func callerUsername(c *gin.Context) string {
	if v, exists := c.Get("username"); exists {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}
