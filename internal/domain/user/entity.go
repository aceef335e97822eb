package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated account able to borrow devices.
type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	PasswordHashed string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
