package dto

// CompletionBucket is one band of the completion-percentage histogram.
type CompletionBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// QuestionStats aggregates answers for a single question.
type QuestionStats struct {
	QuestionID     uint    `json:"question_id"`
	Text           string  `json:"text"`
	AnswerCount    int64   `json:"answer_count"`
	CompletionRate float64 `json:"completion_rate"`
}

// ActivityStatsResponse is the precomputed statistics payload consumed by the
// dashboard and the PDF report.
type ActivityStatsResponse struct {
	ActivityID             uint               `json:"activity_id"`
	ActivityName           string             `json:"activity_name"`
	TotalResponses         int64              `json:"total_responses"`
	SubmittedResponses     int64              `json:"submitted_responses"`
	InProgressResponses    int64              `json:"in_progress_responses"`
	ParticipantCount       int64              `json:"participant_count"`
	ParticipationRate      float64            `json:"participation_rate"`
	CompletionDistribution []CompletionBucket `json:"completion_distribution"`
	Questions              []QuestionStats    `json:"questions"`
	CacheHit               bool               `json:"cache_hit,omitempty"`
}

// ExportResponse describes a generated export file.
type ExportResponse struct {
	ActivityID uint   `json:"activity_id"`
	Format     string `json:"format"`
	Path       string `json:"path"`
	FileName   string `json:"file_name"`
}

// ContactSalesRequest is the demo/contact-sales intake payload.
type ContactSalesRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Company  string `json:"company" validate:"max=255"`
	Message  string `json:"message" validate:"required,min=5,max=5000"`
	Honeypot string `json:"_note"`
}

// ContactSalesResponse acknowledges an accepted enquiry.
type ContactSalesResponse struct {
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
}
