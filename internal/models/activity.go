package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity lifecycle statuses.
const (
	ActivityStatusDraft   = "draft"
	ActivityStatusLive    = "live"
	ActivityStatusClosed  = "closed"
	ActivityStatusExpired = "expired"
)

// Activity kinds.
const (
	ActivityTypeSurvey     = "survey"
	ActivityTypePoll       = "poll"
	ActivityTypeAssessment = "assessment"
)

// Activity represents a survey, poll or assessment run within a program.
type Activity struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ProgramID   uint              `gorm:"index;not null" json:"program_id"`
	Name        string            `gorm:"size:255;not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	Type        string            `gorm:"size:32;not null;default:survey" json:"type"`
	Status      string            `gorm:"size:32;not null;default:draft" json:"status"`
	StartsAt    *time.Time        `json:"starts_at"`
	EndsAt      *time.Time        `json:"ends_at"`
	Settings    datatypes.JSONMap `gorm:"type:json" json:"settings"`
	CreatedBy   uint              `gorm:"index" json:"created_by"`
	AssignedTo  *uint             `gorm:"index" json:"assigned_to"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`

	Program   Program                `json:"program,omitempty"`
	Questions []Question             `json:"questions,omitempty"`
	Templates []NotificationTemplate `json:"templates,omitempty"`
}

// Question is a single questionnaire item belonging to an activity.
type Question struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"index;not null" json:"activity_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Type       string    `gorm:"size:32;not null;default:text" json:"type"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	Required   bool      `gorm:"not null;default:false" json:"required"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
