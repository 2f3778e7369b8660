package service

import (
	"context"
	"io"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/repository"
	"github.com/engagekit/engage-go-api/pkg/mailer"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type activityRepoStub struct {
	activities map[uint]models.Activity
	questions  map[uint][]models.Question
	statuses   map[uint]string
}

func newActivityRepoStub() *activityRepoStub {
	return &activityRepoStub{
		activities: make(map[uint]models.Activity),
		questions:  make(map[uint][]models.Question),
		statuses:   make(map[uint]string),
	}
}

func (s *activityRepoStub) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == 0 {
		activity.ID = uint(len(s.activities) + 1)
	}
	s.activities[activity.ID] = *activity
	return nil
}

func (s *activityRepoStub) Update(ctx context.Context, activity *models.Activity) error {
	s.activities[activity.ID] = *activity
	return nil
}

func (s *activityRepoStub) UpdateStatus(ctx context.Context, id uint, status string) error {
	activity, ok := s.activities[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	activity.Status = status
	s.activities[id] = activity
	s.statuses[id] = status
	return nil
}

func (s *activityRepoStub) Delete(ctx context.Context, id uint) error {
	delete(s.activities, id)
	return nil
}

func (s *activityRepoStub) FindByID(ctx context.Context, id uint) (models.Activity, error) {
	activity, ok := s.activities[id]
	if !ok {
		return models.Activity{}, gorm.ErrRecordNotFound
	}
	return activity, nil
}

func (s *activityRepoStub) List(ctx context.Context, filter repository.ActivityFilter) ([]models.Activity, int64, error) {
	ids := make([]uint, 0, len(s.activities))
	for id := range s.activities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]models.Activity, 0, len(ids))
	for _, id := range ids {
		activity := s.activities[id]
		if filter.ProgramID != 0 && activity.ProgramID != filter.ProgramID {
			continue
		}
		if filter.Status != "" && activity.Status != filter.Status {
			continue
		}
		out = append(out, activity)
	}
	return out, int64(len(out)), nil
}

func (s *activityRepoStub) ListQuestions(ctx context.Context, activityID uint) ([]models.Question, error) {
	return s.questions[activityID], nil
}

type participantRepoStub struct {
	participants []models.Participant
}

func (s *participantRepoStub) Create(ctx context.Context, participant *models.Participant) error {
	if participant.ID == 0 {
		participant.ID = uint(len(s.participants) + 1)
	}
	s.participants = append(s.participants, *participant)
	return nil
}

func (s *participantRepoStub) Update(ctx context.Context, participant *models.Participant) error {
	for i := range s.participants {
		if s.participants[i].ID == participant.ID {
			s.participants[i] = *participant
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *participantRepoStub) FindByID(ctx context.Context, id uint) (models.Participant, error) {
	for _, participant := range s.participants {
		if participant.ID == id {
			return participant, nil
		}
	}
	return models.Participant{}, gorm.ErrRecordNotFound
}

func (s *participantRepoStub) FindByIDs(ctx context.Context, ids []uint) ([]models.Participant, error) {
	wanted := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.Participant
	for _, participant := range s.participants {
		if _, ok := wanted[participant.ID]; ok {
			out = append(out, participant)
		}
	}
	return out, nil
}

func (s *participantRepoStub) ListActiveByProgram(ctx context.Context, programID uint) ([]models.Participant, error) {
	var out []models.Participant
	for _, participant := range s.participants {
		if participant.Status == models.ParticipantStatusActive {
			out = append(out, participant)
		}
	}
	return out, nil
}

func (s *participantRepoStub) List(ctx context.Context, limit, offset int) ([]models.Participant, int64, error) {
	return s.participants, int64(len(s.participants)), nil
}

func (s *participantRepoStub) UpdateOptIns(ctx context.Context, id uint, email, sms bool) error {
	for i := range s.participants {
		if s.participants[i].ID == id {
			s.participants[i].EmailNotifications = email
			s.participants[i].SMSNotifications = sms
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type responseRepoStub struct {
	responses []models.Response
}

func (s *responseRepoStub) ListByActivity(ctx context.Context, activityID uint) ([]models.Response, error) {
	var out []models.Response
	for _, response := range s.responses {
		if response.ActivityID == activityID {
			out = append(out, response)
		}
	}
	return out, nil
}

func (s *responseRepoStub) CountByActivity(ctx context.Context, activityID uint) (int64, error) {
	items, _ := s.ListByActivity(ctx, activityID)
	return int64(len(items)), nil
}

func (s *responseRepoStub) CountSubmitted(ctx context.Context, activityID uint) (int64, error) {
	var count int64
	for _, response := range s.responses {
		if response.ActivityID == activityID && response.Status == models.ResponseStatusSubmitted {
			count++
		}
	}
	return count, nil
}

func (s *responseRepoStub) HasSubmitted(ctx context.Context, activityID, participantID uint) (bool, error) {
	for _, response := range s.responses {
		if response.ActivityID == activityID &&
			response.ParticipantID != nil && *response.ParticipantID == participantID &&
			response.Status == models.ResponseStatusSubmitted {
			return true, nil
		}
	}
	return false, nil
}

func (s *responseRepoStub) LatestSubmitted(ctx context.Context, activityID, participantID uint) (models.Response, error) {
	for i := len(s.responses) - 1; i >= 0; i-- {
		response := s.responses[i]
		if response.ActivityID == activityID &&
			response.ParticipantID != nil && *response.ParticipantID == participantID &&
			response.Status == models.ResponseStatusSubmitted {
			return response, nil
		}
	}
	return models.Response{}, gorm.ErrRecordNotFound
}

type notificationRepoStub struct {
	notifications []models.Notification
	reports       []models.NotificationReport
}

func (s *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = uint(len(s.notifications) + 1)
	s.notifications = append(s.notifications, *notification)
	return nil
}

func (s *notificationRepoStub) CreateReport(ctx context.Context, report *models.NotificationReport) error {
	report.ID = uint(len(s.reports) + 1)
	s.reports = append(s.reports, *report)
	return nil
}

func (s *notificationRepoStub) ListByActivity(ctx context.Context, activityID uint, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, notification := range s.notifications {
		if notification.ActivityID != nil && *notification.ActivityID == activityID {
			out = append(out, notification)
		}
	}
	return out, nil
}

func (s *notificationRepoStub) ListReports(ctx context.Context, activityID uint) ([]models.NotificationReport, error) {
	var out []models.NotificationReport
	for _, report := range s.reports {
		if report.ActivityID == activityID {
			out = append(out, report)
		}
	}
	return out, nil
}

func (s *notificationRepoStub) CountByActivity(ctx context.Context, activityID uint) (int64, error) {
	items, _ := s.ListByActivity(ctx, activityID, 0, 0)
	return int64(len(items)), nil
}

type templateRepoStub struct {
	templates []models.NotificationTemplate
}

func (s *templateRepoStub) Create(ctx context.Context, template *models.NotificationTemplate) error {
	if template.ID == 0 {
		template.ID = uint(len(s.templates) + 1)
	}
	s.templates = append(s.templates, *template)
	return nil
}

func (s *templateRepoStub) Update(ctx context.Context, template *models.NotificationTemplate) error {
	for i := range s.templates {
		if s.templates[i].ID == template.ID {
			s.templates[i] = *template
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *templateRepoStub) Delete(ctx context.Context, id uint) error {
	for i := range s.templates {
		if s.templates[i].ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *templateRepoStub) FindByID(ctx context.Context, id uint) (models.NotificationTemplate, error) {
	for _, template := range s.templates {
		if template.ID == id {
			return template, nil
		}
	}
	return models.NotificationTemplate{}, gorm.ErrRecordNotFound
}

func (s *templateRepoStub) FindActive(ctx context.Context, activityID uint, eventType string) (*models.NotificationTemplate, error) {
	for _, template := range s.templates {
		if template.ActivityID == activityID && template.EventType == eventType && template.Active {
			found := template
			return &found, nil
		}
	}
	return nil, nil
}

func (s *templateRepoStub) ListByActivity(ctx context.Context, activityID uint) ([]models.NotificationTemplate, error) {
	var out []models.NotificationTemplate
	for _, template := range s.templates {
		if template.ActivityID == activityID {
			out = append(out, template)
		}
	}
	return out, nil
}

func (s *templateRepoStub) DeactivateOthers(ctx context.Context, activityID uint, eventType string, keepID uint) error {
	for i := range s.templates {
		if s.templates[i].ActivityID == activityID && s.templates[i].EventType == eventType && s.templates[i].ID != keepID {
			s.templates[i].Active = false
		}
	}
	return nil
}

type userNotificationRepoStub struct {
	notifications []models.UserNotification
	batchInserts  int
}

func (s *userNotificationRepoStub) Create(ctx context.Context, notification *models.UserNotification) error {
	notification.ID = uint(len(s.notifications) + 1)
	s.notifications = append(s.notifications, *notification)
	return nil
}

func (s *userNotificationRepoStub) CreateBatch(ctx context.Context, notifications []models.UserNotification) error {
	s.batchInserts++
	for i := range notifications {
		if err := s.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *userNotificationRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.UserNotification, error) {
	var out []models.UserNotification
	for _, notification := range s.notifications {
		if notification.UserID == userID {
			out = append(out, notification)
		}
	}
	return out, nil
}

func (s *userNotificationRepoStub) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, notification := range s.notifications {
		if notification.UserID == userID && !notification.Read {
			count++
		}
	}
	return count, nil
}

func (s *userNotificationRepoStub) MarkRead(ctx context.Context, id, userID uint) (models.UserNotification, error) {
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].Read = true
			return s.notifications[i], nil
		}
	}
	return models.UserNotification{}, gorm.ErrRecordNotFound
}

// mailerStub fails sends for addresses listed in failFor and records the
// last rendered HTML body per recipient.
type mailerStub struct {
	sent    []string
	html    map[string]string
	failFor map[string]error
}

func (m *mailerStub) Send(ctx context.Context, to, subject, htmlBody, textBody string) (mailer.Result, error) {
	if err, ok := m.failFor[to]; ok {
		return mailer.Result{}, err
	}
	m.sent = append(m.sent, to)
	if m.html == nil {
		m.html = make(map[string]string)
	}
	m.html[to] = htmlBody
	return mailer.Result{ProviderID: "msg_test", StatusCode: 200, Body: "queued"}, nil
}
