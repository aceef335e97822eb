package device

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the device pool.
//
// Create enforces the pool capacity atomically (count-then-insert in one
// transaction). MarkCheckedOut and MarkCheckedIn are conditional writes keyed
// on the current IsCheckedOut value, so a lost race surfaces as
// ErrAlreadyCheckedOut / ErrNotCheckedOut instead of a silent overwrite.
type Repository interface {
	Create(ctx context.Context, device *Device, capacity int) error
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	List(ctx context.Context) ([]*Device, error)
	Delete(ctx context.Context, deviceID uuid.UUID) error

	// FindHeldBy returns the device currently checked out by userID, or
	// ErrDeviceNotFound when the user holds nothing.
	FindHeldBy(ctx context.Context, userID uuid.UUID) (*Device, error)
	MarkCheckedOut(ctx context.Context, deviceID, userID uuid.UUID, at time.Time) error
	MarkCheckedIn(ctx context.Context, deviceID uuid.UUID, at time.Time) error

	AddFeedback(ctx context.Context, entry *Feedback) error
	RemoveFeedback(ctx context.Context, deviceID, reviewerID uuid.UUID) error
	ListFeedback(ctx context.Context, deviceID uuid.UUID) ([]*Feedback, error)

	CountDevices(ctx context.Context) (int64, error)
	CountCheckedOut(ctx context.Context) (int64, error)
}
