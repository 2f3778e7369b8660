package models

import "time"

// Participant statuses.
const (
	ParticipantStatusActive   = "active"
	ParticipantStatusInactive = "inactive"
)

// Participant is an invited respondent, associated with zero or more programs.
type Participant struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:255;not null" json:"name"`
	Email              string    `gorm:"size:255;index" json:"email"`
	Phone              string    `gorm:"size:64" json:"phone"`
	EmailNotifications bool      `gorm:"not null;default:true" json:"email_notifications"`
	SMSNotifications   bool      `gorm:"not null;default:false" json:"sms_notifications"`
	Status             string    `gorm:"size:32;not null;default:active" json:"status"`
	IsGuest            bool      `gorm:"not null;default:false" json:"is_guest"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Programs []Program `gorm:"many2many:program_participants" json:"programs,omitempty"`
}
