package device

import "errors"

var (
	ErrDeviceNotFound      = errors.New("device not found")
	ErrPoolCapacityReached = errors.New("device pool is at capacity")
	ErrNotRegisterer       = errors.New("only the registering user may remove a device")

	ErrAlreadyCheckedOut     = errors.New("device is already checked out")
	ErrNotCheckedOut         = errors.New("device is not checked out")
	ErrNotCurrentHolder      = errors.New("device is checked out by another user")
	ErrUserAlreadyHolding    = errors.New("user already holds a checked-out device")
	ErrOutsideCheckoutWindow = errors.New("checkout requests are outside the admitted time window")

	ErrDuplicateFeedback = errors.New("reviewer already has a feedback entry for this device")
	ErrFeedbackNotFound  = errors.New("no feedback entry for this reviewer")
)
