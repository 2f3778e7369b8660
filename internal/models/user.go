package models

import "time"

// User roles.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSuperAdmin = "super_admin"
)

// User is a dashboard user managing programs and activities.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:admin" json:"role"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactRequest is a demo/contact-sales enquiry submitted from the public site.
type ContactRequest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ReferenceID string    `gorm:"size:64;uniqueIndex;not null" json:"reference_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	Company     string    `gorm:"size:255" json:"company"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Checksum    string    `gorm:"size:64;index" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
