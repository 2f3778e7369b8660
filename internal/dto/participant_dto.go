package dto

import (
	"time"

	"github.com/engagekit/engage-go-api/internal/models"
)

// ParticipantCreateRequest is the payload to register a participant.
type ParticipantCreateRequest struct {
	Name               string `json:"name" validate:"required,min=1,max=255"`
	Email              string `json:"email" validate:"omitempty,email"`
	Phone              string `json:"phone" validate:"omitempty,max=64"`
	EmailNotifications *bool  `json:"email_notifications"`
	SMSNotifications   *bool  `json:"sms_notifications"`
	IsGuest            bool   `json:"is_guest"`
}

// ParticipantOptInRequest updates per-channel opt-in flags. Nil fields keep
// their current value.
type ParticipantOptInRequest struct {
	EmailNotifications *bool `json:"email_notifications"`
	SMSNotifications   *bool `json:"sms_notifications"`
}

// ParticipantResponse is the serialized representation of a participant.
type ParticipantResponse struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	EmailNotifications bool      `json:"email_notifications"`
	SMSNotifications   bool      `json:"sms_notifications"`
	Status             string    `json:"status"`
	IsGuest            bool      `json:"is_guest"`
	CreatedAt          time.Time `json:"created_at"`
}

// ParticipantListResponse wraps a paginated participant listing.
type ParticipantListResponse struct {
	Items []ParticipantResponse `json:"items"`
	Total int64                 `json:"total"`
}

// NewParticipantResponse converts a model into a DTO.
func NewParticipantResponse(model models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:                 model.ID,
		Name:               model.Name,
		Email:              model.Email,
		Phone:              model.Phone,
		EmailNotifications: model.EmailNotifications,
		SMSNotifications:   model.SMSNotifications,
		Status:             model.Status,
		IsGuest:            model.IsGuest,
		CreatedAt:          model.CreatedAt,
	}
}

// NewParticipantResponseSlice converts a slice of models into DTOs.
func NewParticipantResponseSlice(items []models.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewParticipantResponse(item))
	}
	return out
}
