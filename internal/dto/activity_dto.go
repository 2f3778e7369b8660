package dto

import (
	"time"

	"github.com/engagekit/engage-go-api/internal/models"
)

// ActivityCreateRequest is the payload to create an activity.
type ActivityCreateRequest struct {
	ProgramID   uint                   `json:"program_id" validate:"required"`
	Name        string                 `json:"name" validate:"required,min=3,max=255"`
	Description string                 `json:"description" validate:"max=10000"`
	Type        string                 `json:"type" validate:"required,oneof=survey poll assessment"`
	StartsAt    *time.Time             `json:"starts_at"`
	EndsAt      *time.Time             `json:"ends_at"`
	Settings    map[string]interface{} `json:"settings"`
}

// ActivityUpdateRequest updates mutable activity fields.
type ActivityUpdateRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=3,max=255"`
	Description *string                `json:"description" validate:"omitempty,max=10000"`
	StartsAt    *time.Time             `json:"starts_at"`
	EndsAt      *time.Time             `json:"ends_at"`
	Settings    map[string]interface{} `json:"settings"`
}

// ActivityStatusRequest transitions an activity through its lifecycle.
type ActivityStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft live closed expired"`
}

// ActivityAssignRequest hands an activity to a dashboard user to manage.
type ActivityAssignRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// ActivityResponse is the serialized representation of an activity.
type ActivityResponse struct {
	ID          uint                   `json:"id"`
	ProgramID   uint                   `json:"program_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Type        string                 `json:"type"`
	Status      string                 `json:"status"`
	StartsAt    *time.Time             `json:"starts_at"`
	EndsAt      *time.Time             `json:"ends_at"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
	AssignedTo  *uint                  `json:"assigned_to,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ActivityListResponse wraps a paginated activity listing.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Total int64              `json:"total"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(model models.Activity) ActivityResponse {
	response := ActivityResponse{
		ID:          model.ID,
		ProgramID:   model.ProgramID,
		Name:        model.Name,
		Description: model.Description,
		Type:        model.Type,
		Status:      model.Status,
		StartsAt:    model.StartsAt,
		EndsAt:      model.EndsAt,
		AssignedTo:  model.AssignedTo,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.Settings != nil {
		response.Settings = map[string]interface{}(model.Settings)
	}
	return response
}

// NewActivityResponseSlice converts a slice of models into DTOs.
func NewActivityResponseSlice(items []models.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewActivityResponse(item))
	}
	return out
}
