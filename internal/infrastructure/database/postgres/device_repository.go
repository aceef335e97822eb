package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainDevice "device-checkout/internal/domain/device"
	"device-checkout/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceRepository implements the device domain Repository interface.
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

// feedbackOrder loads a ledger most-recent-first; the autoincrement id breaks
// same-timestamp ties in favor of the later insert.
func feedbackOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id DESC")
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device, capacity int) error {
	d.ID = uuid.New()

	dbModel := toDeviceModel(d)

	// Count and insert in one transaction so two concurrent registrations
	// cannot both pass the capacity gate.
	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.DeviceModel{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count devices: %w", err)
		}
		if count >= int64(capacity) {
			return domainDevice.ErrPoolCapacityReached
		}
		return tx.Create(dbModel).Error
	})
	if err != nil {
		if errors.Is(err, domainDevice.ErrPoolCapacityReached) {
			return err
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Preload("Feedback", feedbackOrder).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

// List returns the pool in registration order. The registration timestamp is
// the primary key of the ordering; ids break ties between same-instant rows.
func (r *DeviceRepository) List(ctx context.Context) ([]*domainDevice.Device, error) {
	var dbModels []models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Preload("Feedback", feedbackOrder).
		Order("registered_at ASC, id ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}

	return devices, nil
}

func (r *DeviceRepository) Delete(ctx context.Context, deviceID uuid.UUID) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", deviceID).Delete(&models.FeedbackModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete device feedback: %w", err)
		}

		result := tx.Where("id = ?", deviceID).Delete(&models.DeviceModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete device: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainDevice.ErrDeviceNotFound
		}
		return nil
	})
}

func (r *DeviceRepository) FindHeldBy(ctx context.Context, userID uuid.UUID) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("is_checked_out = ? AND last_checked_out_by = ?", true, userID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find held device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) MarkCheckedOut(ctx context.Context, deviceID, userID uuid.UUID, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ? AND is_checked_out = ?", deviceID, false).
		Updates(map[string]interface{}{
			"is_checked_out":      true,
			"last_checked_out_by": userID,
			"last_checked_out_at": at,
			"updated_at":          time.Now(),
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainDevice.ErrUserAlreadyHolding
		}
		return fmt.Errorf("failed to mark device checked out: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.explainCheckoutConflict(ctx, deviceID, domainDevice.ErrAlreadyCheckedOut)
	}

	return nil
}

func (r *DeviceRepository) MarkCheckedIn(ctx context.Context, deviceID uuid.UUID, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ? AND is_checked_out = ?", deviceID, true).
		Updates(map[string]interface{}{
			"is_checked_out":     false,
			"last_checked_in_at": at,
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark device checked in: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.explainCheckoutConflict(ctx, deviceID, domainDevice.ErrNotCheckedOut)
	}

	return nil
}

// explainCheckoutConflict distinguishes a missing device from a state
// conflict after a conditional update touched no rows.
func (r *DeviceRepository) explainCheckoutConflict(ctx context.Context, deviceID uuid.UUID, conflict error) error {
	var count int64
	if err := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to resolve checkout conflict: %w", err)
	}
	if count == 0 {
		return domainDevice.ErrDeviceNotFound
	}
	return conflict
}

func (r *DeviceRepository) AddFeedback(ctx context.Context, entry *domainDevice.Feedback) error {
	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deviceCount int64
		if err := tx.Model(&models.DeviceModel{}).
			Where("id = ?", entry.DeviceID).
			Count(&deviceCount).Error; err != nil {
			return fmt.Errorf("failed to check device: %w", err)
		}
		if deviceCount == 0 {
			return domainDevice.ErrDeviceNotFound
		}

		var existing int64
		if err := tx.Model(&models.FeedbackModel{}).
			Where("device_id = ? AND reviewer_id = ?", entry.DeviceID, entry.ReviewerID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing feedback: %w", err)
		}
		if existing > 0 {
			return domainDevice.ErrDuplicateFeedback
		}

		return tx.Create(toFeedbackModel(entry)).Error
	})
	if err != nil {
		if errors.Is(err, domainDevice.ErrDeviceNotFound) ||
			errors.Is(err, domainDevice.ErrDuplicateFeedback) {
			return err
		}
		// The composite unique index backstops the in-transaction check.
		if isUniqueViolation(err) {
			return domainDevice.ErrDuplicateFeedback
		}
		return fmt.Errorf("failed to add feedback: %w", err)
	}

	return nil
}

func (r *DeviceRepository) RemoveFeedback(ctx context.Context, deviceID, reviewerID uuid.UUID) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deviceCount int64
		if err := tx.Model(&models.DeviceModel{}).
			Where("id = ?", deviceID).
			Count(&deviceCount).Error; err != nil {
			return fmt.Errorf("failed to check device: %w", err)
		}
		if deviceCount == 0 {
			return domainDevice.ErrDeviceNotFound
		}

		result := tx.Where("device_id = ? AND reviewer_id = ?", deviceID, reviewerID).
			Delete(&models.FeedbackModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove feedback: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainDevice.ErrFeedbackNotFound
		}
		return nil
	})
}

func (r *DeviceRepository) ListFeedback(ctx context.Context, deviceID uuid.UUID) ([]*domainDevice.Feedback, error) {
	var deviceCount int64
	if err := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Count(&deviceCount).Error; err != nil {
		return nil, fmt.Errorf("failed to check device: %w", err)
	}
	if deviceCount == 0 {
		return nil, domainDevice.ErrDeviceNotFound
	}

	var dbModels []models.FeedbackModel
	err := feedbackOrder(r.db.DB.WithContext(ctx).Where("device_id = ?", deviceID)).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	entries := make([]*domainDevice.Feedback, len(dbModels))
	for i := range dbModels {
		entries[i] = toFeedbackEntity(&dbModels[i])
	}

	return entries, nil
}

func (r *DeviceRepository) CountDevices(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).Model(&models.DeviceModel{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return count, nil
}

func (r *DeviceRepository) CountCheckedOut(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("is_checked_out = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count checked-out devices: %w", err)
	}
	return count, nil
}

// isUniqueViolation matches duplicate-key failures from both postgres and the
// sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint")
}

// Helper functions to convert between domain entities and database models

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:               d.ID,
		Model:            d.Model,
		OS:               d.OS,
		Manufacturer:     d.Manufacturer,
		RegisteredBy:     d.RegisteredBy,
		RegisteredAt:     d.RegisteredAt,
		IsCheckedOut:     d.IsCheckedOut,
		LastCheckedOutBy: d.LastCheckedOutBy,
		LastCheckedOutAt: d.LastCheckedOutAt,
		LastCheckedInAt:  d.LastCheckedInAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	feedback := make([]*domainDevice.Feedback, len(m.Feedback))
	for i := range m.Feedback {
		feedback[i] = toFeedbackEntity(&m.Feedback[i])
	}

	return &domainDevice.Device{
		ID:               m.ID,
		Model:            m.Model,
		OS:               m.OS,
		Manufacturer:     m.Manufacturer,
		RegisteredBy:     m.RegisteredBy,
		RegisteredAt:     m.RegisteredAt,
		IsCheckedOut:     m.IsCheckedOut,
		LastCheckedOutBy: m.LastCheckedOutBy,
		LastCheckedOutAt: m.LastCheckedOutAt,
		LastCheckedInAt:  m.LastCheckedInAt,
		Feedback:         feedback,
	}
}

func toFeedbackModel(f *domainDevice.Feedback) *models.FeedbackModel {
	return &models.FeedbackModel{
		DeviceID:     f.DeviceID,
		ReviewerID:   f.ReviewerID,
		ReviewerName: f.ReviewerName,
		Rating:       f.Rating,
		Comment:      f.Comment,
		CreatedAt:    f.CreatedAt,
	}
}

func toFeedbackEntity(m *models.FeedbackModel) *domainDevice.Feedback {
	return &domainDevice.Feedback{
		DeviceID:     m.DeviceID,
		ReviewerID:   m.ReviewerID,
		ReviewerName: m.ReviewerName,
		Rating:       m.Rating,
		Comment:      m.Comment,
		CreatedAt:    m.CreatedAt,
	}
}
