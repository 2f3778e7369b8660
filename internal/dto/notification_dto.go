package dto

import (
	"encoding/json"
	"time"

	"github.com/engagekit/engage-go-api/internal/models"
)

// DispatchRequest triggers a notification batch for an activity.
type DispatchRequest struct {
	Event          string `json:"event" validate:"required,oneof=invitation reminder thank_you program_expiry activity_summary"`
	ParticipantIDs []uint `json:"participant_ids" validate:"omitempty,dive,gt=0"`
}

// ChannelCounts reports per-channel sent/failed totals for one batch.
type ChannelCounts struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// DispatchSummary is the aggregate result of a notification batch.
type DispatchSummary struct {
	Event string        `json:"event"`
	Email ChannelCounts `json:"email"`
	SMS   ChannelCounts `json:"sms"`
}

// NotificationResponse is the serialized representation of an audit row.
type NotificationResponse struct {
	ID            uint      `json:"id"`
	Channel       string    `json:"channel"`
	Event         string    `json:"event"`
	ParticipantID *uint     `json:"participant_id,omitempty"`
	Recipient     string    `json:"recipient"`
	Subject       string    `json:"subject,omitempty"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewNotificationResponse converts an audit model to a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            model.ID,
		Channel:       model.Channel,
		Event:         model.Event,
		ParticipantID: model.ParticipantID,
		Recipient:     model.Recipient,
		Subject:       model.Subject,
		Status:        model.Status,
		ErrorMessage:  model.ErrorMessage,
		CreatedAt:     model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// ReportResponse summarizes one dispatch batch including failed addresses.
type ReportResponse struct {
	ID           uint          `json:"id"`
	ActivityID   uint          `json:"activity_id"`
	Event        string        `json:"event"`
	Email        ChannelCounts `json:"email"`
	SMS          ChannelCounts `json:"sms"`
	FailedEmails []string      `json:"failed_emails,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewReportResponse converts a report model to a DTO.
func NewReportResponse(model models.NotificationReport) ReportResponse {
	response := ReportResponse{
		ID:         model.ID,
		ActivityID: model.ActivityID,
		Event:      model.Event,
		Email:      ChannelCounts{Sent: model.EmailSent, Failed: model.EmailFailed},
		SMS:        ChannelCounts{Sent: model.SMSSent, Failed: model.SMSFailed},
		CreatedAt:  model.CreatedAt,
	}
	if len(model.FailedEmails) > 0 {
		var failed []string
		if err := json.Unmarshal(model.FailedEmails, &failed); err == nil {
			response.FailedEmails = failed
		}
	}
	return response
}

// NewReportResponseSlice converts report models to DTOs.
func NewReportResponseSlice(items []models.NotificationReport) []ReportResponse {
	out := make([]ReportResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewReportResponse(item))
	}
	return out
}

// UserNotificationCreateRequest describes the payload to create an in-app notification.
type UserNotificationCreateRequest struct {
	UserID     uint   `json:"user_id" validate:"required"`
	Type       string `json:"type" validate:"required,max=64"`
	Title      string `json:"title" validate:"required,min=1,max=255"`
	Message    string `json:"message" validate:"required,min=1,max=2000"`
	EntityType string `json:"entity_type" validate:"omitempty,max=64"`
	EntityID   *uint  `json:"entity_id"`
	ActionURL  string `json:"action_url" validate:"omitempty,url"`
}

// UserNotificationResponse represents an in-app notification for a dashboard user.
type UserNotificationResponse struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   *uint     `json:"entity_id,omitempty"`
	ActionURL  string    `json:"action_url,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserNotificationResponse converts a model to a DTO.
func NewUserNotificationResponse(model models.UserNotification) UserNotificationResponse {
	return UserNotificationResponse{
		ID:         model.ID,
		UserID:     model.UserID,
		Type:       model.Type,
		Title:      model.Title,
		Message:    model.Message,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		ActionURL:  model.ActionURL,
		Read:       model.Read,
		CreatedAt:  model.CreatedAt,
	}
}

// NewUserNotificationResponseSlice converts a slice to DTOs.
func NewUserNotificationResponseSlice(items []models.UserNotification) []UserNotificationResponse {
	out := make([]UserNotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewUserNotificationResponse(item))
	}
	return out
}
