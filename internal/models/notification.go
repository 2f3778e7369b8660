package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification event types. Each maps to a template slot and a default template.
const (
	EventInvitation      = "invitation"
	EventReminder        = "reminder"
	EventThankYou        = "thank_you"
	EventProgramExpiry   = "program_expiry"
	EventActivitySummary = "activity_summary"
)

// Delivery channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Send attempt statuses.
const (
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
	NotificationStatusPending = "pending"
)

// NotificationTemplate is an optional per-activity override for one event type.
// At most one active row per (activity, event type) pair is consulted; absence
// falls back to the hard-coded default.
type NotificationTemplate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"index;not null" json:"activity_id"`
	EventType  string    `gorm:"size:32;not null;index:idx_template_activity_event" json:"event_type"`
	Subject    string    `gorm:"size:512;not null" json:"subject"`
	BodyHTML   string    `gorm:"type:text;not null" json:"body_html"`
	BodyText   string    `gorm:"type:text" json:"body_text"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Notification is the append-only audit record: exactly one row per send
// attempt, success or failure. Never updated after creation.
type Notification struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Channel        string    `gorm:"size:16;not null;index" json:"channel"`
	Event          string    `gorm:"size:64;not null;index" json:"event"`
	ActivityID     *uint     `gorm:"index" json:"activity_id"`
	ParticipantID  *uint     `gorm:"index" json:"participant_id"`
	Recipient      string    `gorm:"size:255;not null" json:"recipient"`
	Subject        string    `gorm:"size:512" json:"subject"`
	Message        string    `gorm:"type:text" json:"message"`
	Status         string    `gorm:"size:16;not null;index" json:"status"`
	ProviderStatus int       `json:"provider_status"`
	ProviderBody   string    `gorm:"type:text" json:"provider_body"`
	ErrorMessage   string    `gorm:"type:text" json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationReport aggregates one dispatch batch: per-channel sent/failed
// counts and the list of email addresses that failed.
type NotificationReport struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ActivityID   uint           `gorm:"index;not null" json:"activity_id"`
	Event        string         `gorm:"size:64;not null" json:"event"`
	EmailSent    int            `gorm:"not null;default:0" json:"email_sent"`
	EmailFailed  int            `gorm:"not null;default:0" json:"email_failed"`
	SMSSent      int            `gorm:"not null;default:0" json:"sms_sent"`
	SMSFailed    int            `gorm:"not null;default:0" json:"sms_failed"`
	FailedEmails datatypes.JSON `gorm:"type:json" json:"failed_emails"`
	CreatedAt    time.Time      `json:"created_at"`
}

// UserNotification is an in-app notification targeted at an admin user.
type UserNotification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Message    string    `gorm:"type:text" json:"message"`
	EntityType string    `gorm:"size:64" json:"entity_type"`
	EntityID   *uint     `json:"entity_id"`
	ActionURL  string    `gorm:"size:512" json:"action_url"`
	Read       bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
