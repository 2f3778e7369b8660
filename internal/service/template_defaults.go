package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/engagekit/engage-go-api/internal/models"
)

type defaultTemplate struct {
	subject  string
	bodyHTML string
	bodyText string
}

// defaultTemplates is the hard-coded fallback content per event type. Every
// body contains {{activity_name}} and the {{activity_url}} deep link.
var defaultTemplates = map[string]defaultTemplate{
	models.EventInvitation: {
		subject: "You're invited: {{activity_name}}",
		bodyHTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h2>Hello {{participant_name}},</h2>
<p>You have been invited to take part in <strong>{{activity_name}}</strong>, part of the {{program_name}} program at {{organization_name}}.</p>
<p>{{activity_description}}</p>
<p>The activity starts in {{days_until_start}} day(s).</p>
<p><a href="{{activity_url}}" style="background:#3b82f6;color:#fff;padding:10px 20px;border-radius:6px;text-decoration:none;">Start now</a></p>
<p style="color:#6b7280;font-size:13px;">Sent on {{current_date}}.</p>
</div>`,
		bodyText: "Hello {{participant_name}}, you have been invited to {{activity_name}}. Open {{activity_url}} to take part.",
	},
	models.EventReminder: {
		subject: "Reminder: {{activity_name}} is waiting for you",
		bodyHTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h2>Hello {{participant_name}},</h2>
<p>This is a friendly reminder that <strong>{{activity_name}}</strong> is still open and we have not received your submission yet.</p>
<p>So far {{response_count}} responses have been collected.</p>
<p><a href="{{activity_url}}">Complete the activity</a></p>
</div>`,
		bodyText: "Hello {{participant_name}}, {{activity_name}} is still open. Complete it at {{activity_url}}.",
	},
	models.EventThankYou: {
		subject: "Thank you for completing {{activity_name}}",
		bodyHTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h2>Thank you, {{participant_name}}!</h2>
<p>Your response to <strong>{{activity_name}}</strong> has been recorded.</p>
<p><a href="{{activity_url}}">View the activity</a></p>
</div>`,
		bodyText: "Thank you {{participant_name}}, your response to {{activity_name}} has been recorded.",
	},
	models.EventProgramExpiry: {
		subject: "{{program_name}} is ending soon",
		bodyHTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h2>Hello {{participant_name}},</h2>
<p>The program <strong>{{program_name}}</strong> at {{organization_name}} is approaching its end date. Open activities such as <strong>{{activity_name}}</strong> close with it.</p>
<p><a href="{{activity_url}}">Finish outstanding activities</a></p>
</div>`,
		bodyText: "Hello {{participant_name}}, {{program_name}} is ending soon. Finish {{activity_name}} at {{activity_url}}.",
	},
	models.EventActivitySummary: {
		subject: "Results summary: {{activity_name}}",
		bodyHTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h2>Hello {{participant_name}},</h2>
<p><strong>{{activity_name}}</strong> has closed. {{response_count}} responses were collected with an average completion of {{completion_rate}}%.</p>
<p><a href="{{activity_url}}">See the full summary</a></p>
</div>`,
		bodyText: "{{activity_name}} has closed with {{response_count}} responses. Summary: {{activity_url}}.",
	},
}

// ResultData carries the optional assessment-result keys added to the bag for
// the thank-you-with-results variant.
type ResultData struct {
	Score          float64
	Result         string
	CorrectAnswers int
	TotalQuestions int
	AttemptNumber  int
}

// TemplateBag assembles the flat placeholder map for one participant and
// activity. Unset optional fields simply leave their placeholders unexpanded.
type TemplateBag struct {
	Activity       models.Activity
	Participant    models.Participant
	ActivityURL    string
	ResponseCount  int64
	CompletionRate float64
	Now            time.Time
	Results        *ResultData
}

// Build flattens the bag into placeholder -> stringified value pairs.
func (b TemplateBag) Build() map[string]string {
	now := b.Now
	if now.IsZero() {
		now = time.Now()
	}

	bag := map[string]string{
		"participant_name":     b.Participant.Name,
		"participant_email":    b.Participant.Email,
		"activity_name":        b.Activity.Name,
		"activity_description": b.Activity.Description,
		"activity_type":        b.Activity.Type,
		"program_name":         b.Activity.Program.Name,
		"program_description":  b.Activity.Program.Description,
		"organization_name":    b.Activity.Program.Organization.Name,
		"activity_url":         b.ActivityURL,
		"days_until_start":     strconv.Itoa(daysUntil(b.Activity.StartsAt, now)),
		"current_date":         now.Format("2006-01-02"),
		"response_count":       strconv.FormatInt(b.ResponseCount, 10),
		"completion_rate":      fmt.Sprintf("%.0f", b.CompletionRate),
	}

	if b.Activity.StartsAt != nil {
		bag["activity_start_date"] = b.Activity.StartsAt.Format("2006-01-02")
	}
	if b.Activity.EndsAt != nil {
		bag["activity_end_date"] = b.Activity.EndsAt.Format("2006-01-02")
	}

	if b.Results != nil {
		bag["score"] = fmt.Sprintf("%.1f", b.Results.Score)
		bag["assessment_result"] = b.Results.Result
		bag["correct_answers_count"] = strconv.Itoa(b.Results.CorrectAnswers)
		bag["total_questions"] = strconv.Itoa(b.Results.TotalQuestions)
		bag["attempt_number"] = strconv.Itoa(b.Results.AttemptNumber)
	}

	return bag
}

// daysUntil returns the whole-day count until start, floored at zero when the
// start date is unset or already past.
func daysUntil(start *time.Time, now time.Time) int {
	if start == nil {
		return 0
	}
	days := int(start.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
