package handler

import (
	"errors"
	"net/http"
	"testing"

	domainDevice "device-checkout/internal/domain/device"
	domainUser "device-checkout/internal/domain/user"
	appErrors "device-checkout/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domainDevice.ErrDeviceNotFound, http.StatusNotFound},
		{domainDevice.ErrFeedbackNotFound, http.StatusNotFound},
		{domainDevice.ErrNotRegisterer, http.StatusForbidden},
		{domainDevice.ErrAlreadyCheckedOut, http.StatusConflict},
		{domainDevice.ErrNotCheckedOut, http.StatusConflict},
		{domainDevice.ErrNotCurrentHolder, http.StatusConflict},
		{domainDevice.ErrUserAlreadyHolding, http.StatusConflict},
		{domainDevice.ErrDuplicateFeedback, http.StatusConflict},
		{domainDevice.ErrPoolCapacityReached, http.StatusConflict},
		{domainDevice.ErrOutsideCheckoutWindow, http.StatusConflict},
		{domainUser.ErrUserAlreadyExists, http.StatusConflict},
		{appErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", nil), http.StatusBadRequest},
		{errors.New("database on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, statusForError(tc.err), "error: %v", tc.err)
	}
}
