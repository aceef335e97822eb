package device

import (
	"time"

	domainDevice "device-checkout/internal/domain/device"

	"github.com/google/uuid"
)

type RegisterDeviceRequest struct {
	Model        string `json:"model" validate:"required,max=255"`
	OS           string `json:"os" validate:"required,max=100"`
	Manufacturer string `json:"manufacturer" validate:"required,max=255"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=10"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

type DeviceResponse struct {
	ID               uuid.UUID          `json:"id"`
	Model            string             `json:"model"`
	OS               string             `json:"os"`
	Manufacturer     string             `json:"manufacturer"`
	RegisteredBy     uuid.UUID          `json:"registered_by"`
	RegisteredAt     time.Time          `json:"registered_at"`
	IsCheckedOut     bool               `json:"is_checked_out"`
	LastCheckedOutBy *uuid.UUID         `json:"last_checked_out_by,omitempty"`
	LastCheckedOutAt *time.Time         `json:"last_checked_out_at,omitempty"`
	LastCheckedInAt  *time.Time         `json:"last_checked_in_at,omitempty"`
	Feedback         []FeedbackResponse `json:"feedback"`
}

type FeedbackResponse struct {
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

type StatisticsResponse struct {
	TotalDevices      int `json:"total_devices"`
	CheckedOutDevices int `json:"checked_out_devices"`
	AvailableDevices  int `json:"available_devices"`
	Capacity          int `json:"capacity"`
}

func ToStatisticsResponse(s *domainDevice.Statistics) *StatisticsResponse {
	return &StatisticsResponse{
		TotalDevices:      s.TotalDevices,
		CheckedOutDevices: s.CheckedOutDevices,
		AvailableDevices:  s.AvailableDevices,
		Capacity:          s.Capacity,
	}
}

func ToDeviceResponse(d *domainDevice.Device) *DeviceResponse {
	if d == nil {
		return nil
	}
	return &DeviceResponse{
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
		Feedback:         ToFeedbackResponses(d.Feedback),
	}
}

func ToDeviceResponses(devices []*domainDevice.Device) []DeviceResponse {
	responses := make([]DeviceResponse, len(devices))
	for i, d := range devices {
		responses[i] = *ToDeviceResponse(d)
	}
	return responses
}

func ToFeedbackResponse(f *domainDevice.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ReviewerID:   f.ReviewerID,
		ReviewerName: f.ReviewerName,
		Rating:       f.Rating,
		Comment:      f.Comment,
		CreatedAt:    f.CreatedAt,
	}
}

func ToFeedbackResponses(entries []*domainDevice.Feedback) []FeedbackResponse {
	responses := make([]FeedbackResponse, len(entries))
	for i, f := range entries {
		responses[i] = ToFeedbackResponse(f)
	}
	return responses
}
