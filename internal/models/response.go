package models

import (
	"time"

	"gorm.io/datatypes"
)

// Response statuses.
const (
	ResponseStatusInProgress = "in_progress"
	ResponseStatusSubmitted  = "submitted"
)

// Response captures a participant's (possibly partial) answer set for an
// activity. Grading fields are filled in at submission time for assessment
// activities and stay at their zero values otherwise.
type Response struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ActivityID     uint       `gorm:"index;not null" json:"activity_id"`
	ParticipantID  *uint      `gorm:"index" json:"participant_id"`
	Status         string     `gorm:"size:32;not null;default:in_progress" json:"status"`
	Completion     float64    `gorm:"not null;default:0" json:"completion"`
	Score          float64    `gorm:"not null;default:0" json:"score"`
	Result         string     `gorm:"size:32" json:"result"`
	CorrectAnswers int        `gorm:"not null;default:0" json:"correct_answers"`
	TotalQuestions int        `gorm:"not null;default:0" json:"total_questions"`
	Attempt        int        `gorm:"not null;default:1" json:"attempt"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Participant *Participant `json:"participant,omitempty"`
	Answers     []Answer     `json:"answers,omitempty"`
}

// Answer holds either a scalar value or an array value for one question.
type Answer struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ResponseID uint           `gorm:"index;not null" json:"response_id"`
	QuestionID uint           `gorm:"index;not null" json:"question_id"`
	Value      string         `gorm:"type:text" json:"value"`
	ValueArray datatypes.JSON `gorm:"type:json" json:"value_array"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
