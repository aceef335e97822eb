package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"device-checkout/internal/config"
	domainDevice "device-checkout/internal/domain/device"
	"device-checkout/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the checkout coordinator. It owns the two invariants a single
// device row cannot express alone: a user holds at most one device across
// the whole pool, and a device has at most one holder.
//
// All check-then-set sequences run under mu, making the coordinator the
// single serialization point for checkout traffic in this process. The
// repository's conditional writes (and the partial unique index on the
// holder column) back the same invariants at the storage layer.
type Service struct {
	deviceRepo domainDevice.Repository
	pool       config.PoolConfig

	mu sync.Mutex
}

// NewService creates a new checkout coordinator
func NewService(deviceRepo domainDevice.Repository, pool config.PoolConfig) *Service {
	return &Service{
		deviceRepo: deviceRepo,
		pool:       pool,
	}
}

// withinWindow reports whether now's local hour falls inside the admitted
// checkout hours, both bounds inclusive.
func (s *Service) withinWindow(now time.Time) bool {
	hour := now.Hour()
	return hour >= s.pool.CheckoutOpenHour && hour <= s.pool.CheckoutCloseHour
}

// CheckOut marks the device as held by userID. now is supplied by the caller
// boundary so the admission window is deterministic under test.
func (s *Service) CheckOut(ctx context.Context, deviceID, userID uuid.UUID, now time.Time) ([]*domainDevice.Device, error) {
	if !s.withinWindow(now) {
		logger.Warn("Checkout attempted outside window",
			zap.String("device_id", deviceID.String()),
			zap.String("user_id", userID.String()),
			zap.Int("hour", now.Hour()),
			zap.String("event", "checkout_rejected_window"),
		)
		return nil, domainDevice.ErrOutsideCheckoutWindow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	// Registry-wide scan: the exclusivity rule spans every device, not just
	// the one being requested.
	held, err := s.deviceRepo.FindHeldBy(ctx, userID)
	if err != nil && !errors.Is(err, domainDevice.ErrDeviceNotFound) {
		return nil, err
	}
	if held != nil {
		return nil, domainDevice.ErrUserAlreadyHolding
	}

	if device.IsCheckedOut {
		return nil, domainDevice.ErrAlreadyCheckedOut
	}

	if err := s.deviceRepo.MarkCheckedOut(ctx, deviceID, userID, now); err != nil {
		return nil, err
	}

	logger.Info("Device checked out",
		zap.String("device_id", deviceID.String()),
		zap.String("user_id", userID.String()),
		zap.String("event", "device_checked_out"),
	)

	return s.deviceRepo.List(ctx)
}

// CheckIn releases the device held by userID. The holder pointer is kept as
// history; only the checked-out flag and the check-in timestamp change.
func (s *Service) CheckIn(ctx context.Context, deviceID, userID uuid.UUID, now time.Time) ([]*domainDevice.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if !device.IsCheckedOut {
		return nil, domainDevice.ErrNotCheckedOut
	}
	if !device.HeldBy(userID) {
		return nil, domainDevice.ErrNotCurrentHolder
	}

	if err := s.deviceRepo.MarkCheckedIn(ctx, deviceID, now); err != nil {
		return nil, err
	}

	logger.Info("Device checked in",
		zap.String("device_id", deviceID.String()),
		zap.String("user_id", userID.String()),
		zap.String("event", "device_checked_in"),
	)

	return s.deviceRepo.List(ctx)
}
