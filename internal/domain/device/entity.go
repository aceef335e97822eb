package device

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds for feedback entries. A zero rating on input is replaced by
// DefaultRating, the midpoint of the scale.
const (
	MinRating     = 1
	MaxRating     = 10
	DefaultRating = 5
)

// Device represents one lendable device in the shared pool.
//
// Lifecycle invariant: IsCheckedOut is true exactly while LastCheckedOutBy
// points at the current holder. After a check-in the holder pointer is kept
// as history, so LastCheckedOutBy being set does NOT imply the device is out.
type Device struct {
	ID               uuid.UUID
	Model            string
	OS               string
	Manufacturer     string
	RegisteredBy     uuid.UUID
	RegisteredAt     time.Time
	IsCheckedOut     bool
	LastCheckedOutBy *uuid.UUID
	LastCheckedOutAt *time.Time
	LastCheckedInAt  *time.Time

	// Feedback is the device's ledger, most recent entry first.
	Feedback []*Feedback
}

// HeldBy reports whether userID is the current holder of the device.
func (d *Device) HeldBy(userID uuid.UUID) bool {
	return d.IsCheckedOut && d.LastCheckedOutBy != nil && *d.LastCheckedOutBy == userID
}

// Feedback is a single ledger entry. ReviewerName is a snapshot taken at
// review time; it is never re-resolved if the reviewer later renames.
type Feedback struct {
	DeviceID     uuid.UUID
	ReviewerID   uuid.UUID
	ReviewerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

// Statistics summarizes the pool for the stats endpoint.
type Statistics struct {
	TotalDevices      int
	CheckedOutDevices int
	AvailableDevices  int
	Capacity          int
}
