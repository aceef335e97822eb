package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceModel represents the database model for pool devices.
//
// The partial unique index on LastCheckedOutBy is the storage-level backstop
// for the "one active holder per user" rule: it only applies to rows with
// is_checked_out set, so the retained holder history of checked-in devices
// never collides.
type DeviceModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Model            string     `gorm:"type:varchar(255);not null"`
	OS               string     `gorm:"column:os;type:varchar(100);not null"`
	Manufacturer     string     `gorm:"type:varchar(255);not null"`
	RegisteredBy     uuid.UUID  `gorm:"type:uuid;not null;index"`
	RegisteredAt     time.Time  `gorm:"not null;index"`
	IsCheckedOut     bool       `gorm:"not null;default:false"`
	LastCheckedOutBy *uuid.UUID `gorm:"type:uuid;uniqueIndex:udx_active_holder,where:is_checked_out"`
	LastCheckedOutAt *time.Time `gorm:"type:timestamp"`
	LastCheckedInAt  *time.Time `gorm:"type:timestamp"`

	Feedback []FeedbackModel `gorm:"foreignKey:DeviceID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (DeviceModel) TableName() string {
	return "devices"
}

// FeedbackModel represents one ledger entry. The autoincrement ID doubles as
// the insertion-order tiebreak when entries share a timestamp.
type FeedbackModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	DeviceID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:udx_device_reviewer"`
	ReviewerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:udx_device_reviewer"`
	ReviewerName string    `gorm:"type:varchar(255);not null"`
	Rating       int       `gorm:"not null"`
	Comment      string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

func (FeedbackModel) TableName() string {
	return "device_feedback"
}
