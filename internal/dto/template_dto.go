package dto

import (
	"time"

	"github.com/engagekit/engage-go-api/internal/models"
)

// TemplateUpsertRequest creates or replaces a custom notification template.
type TemplateUpsertRequest struct {
	EventType string `json:"event_type" validate:"required,oneof=invitation reminder thank_you program_expiry activity_summary"`
	Subject   string `json:"subject" validate:"required,min=1,max=512"`
	BodyHTML  string `json:"body_html" validate:"required,min=1"`
	BodyText  string `json:"body_text"`
	Active    *bool  `json:"active"`
}

// TemplateResponse is the serialized representation of a notification template.
type TemplateResponse struct {
	ID         uint      `json:"id"`
	ActivityID uint      `json:"activity_id"`
	EventType  string    `json:"event_type"`
	Subject    string    `json:"subject"`
	BodyHTML   string    `json:"body_html"`
	BodyText   string    `json:"body_text,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewTemplateResponse converts a model into a DTO.
func NewTemplateResponse(model models.NotificationTemplate) TemplateResponse {
	return TemplateResponse{
		ID:         model.ID,
		ActivityID: model.ActivityID,
		EventType:  model.EventType,
		Subject:    model.Subject,
		BodyHTML:   model.BodyHTML,
		BodyText:   model.BodyText,
		Active:     model.Active,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewTemplateResponseSlice converts a slice of models into DTOs.
func NewTemplateResponseSlice(items []models.NotificationTemplate) []TemplateResponse {
	out := make([]TemplateResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewTemplateResponse(item))
	}
	return out
}
