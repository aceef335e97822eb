package device

import (
	"context"
	"sync"
	"time"

	"device-checkout/internal/config"
	domainDevice "device-checkout/internal/domain/device"
	"device-checkout/internal/logger"
	appErrors "device-checkout/pkg/errors"
	"device-checkout/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements the device registry use cases: registration, listing,
// removal and the per-device feedback ledger. Checkout transitions live in
// the checkout coordinator, which needs a view of the whole pool.
type Service struct {
	deviceRepo domainDevice.Repository
	pool       config.PoolConfig

	// registerMu serializes registrations so the capacity gate is evaluated
	// by one caller at a time within this process. The repository's
	// transactional count-then-insert is the second line of defense.
	registerMu sync.Mutex
}

// NewService creates a new device registry service
func NewService(deviceRepo domainDevice.Repository, pool config.PoolConfig) *Service {
	return &Service{
		deviceRepo: deviceRepo,
		pool:       pool,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterDeviceRequest, registeredBy uuid.UUID, now time.Time) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	device := &domainDevice.Device{
		Model:        req.Model,
		OS:           req.OS,
		Manufacturer: req.Manufacturer,
		RegisteredBy: registeredBy,
		RegisteredAt: now,
		IsCheckedOut: false,
	}

	s.registerMu.Lock()
	err := s.deviceRepo.Create(ctx, device, s.pool.Capacity)
	s.registerMu.Unlock()
	if err != nil {
		return nil, err
	}

	logger.Info("Device registered",
		zap.String("device_id", device.ID.String()),
		zap.String("model", device.Model),
		zap.String("registered_by", registeredBy.String()),
		zap.String("event", "device_registered"),
	)

	return ToDeviceResponse(device), nil
}

func (s *Service) List(ctx context.Context) ([]DeviceResponse, error) {
	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	return ToDeviceResponses(devices), nil
}

func (s *Service) Get(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	return ToDeviceResponse(device), nil
}

// Remove deletes a device. Only the original registerer may remove it.
// There is no checked-out guard: removal succeeds even while the device is
// held.
func (s *Service) Remove(ctx context.Context, deviceID, requesterID uuid.UUID) error {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	if device.RegisteredBy != requesterID {
		return domainDevice.ErrNotRegisterer
	}

	if err := s.deviceRepo.Delete(ctx, deviceID); err != nil {
		return err
	}

	logger.Info("Device removed",
		zap.String("device_id", deviceID.String()),
		zap.String("requester_id", requesterID.String()),
		zap.Bool("was_checked_out", device.IsCheckedOut),
		zap.String("event", "device_removed"),
	)

	return nil
}

// AddFeedback appends a ledger entry for the reviewer. reviewerName is
// snapshotted as given; a later rename of the account does not rewrite
// history. A second entry by the same reviewer is rejected until the first
// is removed.
func (s *Service) AddFeedback(ctx context.Context, deviceID, reviewerID uuid.UUID, reviewerName string, req *FeedbackRequest, now time.Time) ([]FeedbackResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	rating := req.Rating
	if rating == 0 {
		rating = domainDevice.DefaultRating
	}

	entry := &domainDevice.Feedback{
		DeviceID:     deviceID,
		ReviewerID:   reviewerID,
		ReviewerName: reviewerName,
		Rating:       rating,
		Comment:      req.Comment,
		CreatedAt:    now,
	}

	if err := s.deviceRepo.AddFeedback(ctx, entry); err != nil {
		return nil, err
	}

	logger.Info("Feedback added",
		zap.String("device_id", deviceID.String()),
		zap.String("reviewer_id", reviewerID.String()),
		zap.Int("rating", rating),
		zap.String("event", "feedback_added"),
	)

	return s.ledger(ctx, deviceID)
}

func (s *Service) RemoveFeedback(ctx context.Context, deviceID, reviewerID uuid.UUID) ([]FeedbackResponse, error) {
	if err := s.deviceRepo.RemoveFeedback(ctx, deviceID, reviewerID); err != nil {
		return nil, err
	}

	logger.Info("Feedback removed",
		zap.String("device_id", deviceID.String()),
		zap.String("reviewer_id", reviewerID.String()),
		zap.String("event", "feedback_removed"),
	)

	return s.ledger(ctx, deviceID)
}

func (s *Service) ledger(ctx context.Context, deviceID uuid.UUID) ([]FeedbackResponse, error) {
	entries, err := s.deviceRepo.ListFeedback(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return ToFeedbackResponses(entries), nil
}

func (s *Service) Statistics(ctx context.Context) (*StatisticsResponse, error) {
	total, err := s.deviceRepo.CountDevices(ctx)
	if err != nil {
		return nil, err
	}
	checkedOut, err := s.deviceRepo.CountCheckedOut(ctx)
	if err != nil {
		return nil, err
	}

	return ToStatisticsResponse(&domainDevice.Statistics{
		TotalDevices:      int(total),
		CheckedOutDevices: int(checkedOut),
		AvailableDevices:  int(total - checkedOut),
		Capacity:          s.pool.Capacity,
	}), nil
}
