package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/models"
)

func newUserNotificationServiceForTest(repo *userNotificationRepoStub) UserNotificationService {
	return NewUserNotificationService(repo, nil, "", nil, validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func TestPublishPersistsNotification(t *testing.T) {
	repo := &userNotificationRepoStub{}
	svc := newUserNotificationServiceForTest(repo)

	entityID := uint(42)
	response, err := svc.Publish(context.Background(), dto.UserNotificationCreateRequest{
		UserID:     7,
		Type:       "activity_closed",
		Title:      "Activity closed",
		Message:    "Quarterly Pulse stopped accepting responses.",
		EntityType: "activity",
		EntityID:   &entityID,
		ActionURL:  "https://app.example.com/activities/42",
	})
	require.NoError(t, err)
	require.NotZero(t, response.ID)
	require.Equal(t, uint(7), response.UserID)
	require.False(t, response.Read)

	require.Len(t, repo.notifications, 1)
	require.Equal(t, "activity_closed", repo.notifications[0].Type)
	require.Equal(t, &entityID, repo.notifications[0].EntityID)
}

func TestPublishBatchInsertsOnceAndBroadcasts(t *testing.T) {
	repo := &userNotificationRepoStub{}
	svc := newUserNotificationServiceForTest(repo)

	received, cleanup := svc.Subscribe(7)
	defer cleanup()

	responses, err := svc.PublishBatch(context.Background(), []dto.UserNotificationCreateRequest{
		{UserID: 7, Type: "approval_requested", Title: "Approval requested", Message: "Pulse is awaiting your approval."},
		{UserID: 9, Type: "approval_requested", Title: "Approval requested", Message: "Pulse is awaiting your approval."},
	})
	require.NoError(t, err)
	require.Len(t, responses, 2)
	require.Len(t, repo.notifications, 2)
	require.Equal(t, 1, repo.batchInserts)

	select {
	case notification := <-received:
		require.Equal(t, uint(7), notification.UserID)
		require.Equal(t, "approval_requested", notification.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast notification for user 7")
	}
}

func TestPublishBatchRejectsWholeBatchOnInvalidPayload(t *testing.T) {
	repo := &userNotificationRepoStub{}
	svc := newUserNotificationServiceForTest(repo)

	_, err := svc.PublishBatch(context.Background(), []dto.UserNotificationCreateRequest{
		{UserID: 7, Type: "approval_requested", Title: "Approval requested", Message: "Pulse is awaiting your approval."},
		{UserID: 9, Type: "approval_requested"}, // missing title and message
	})
	require.Error(t, err)
	require.Empty(t, repo.notifications)
}

func TestPublishValidatesPayload(t *testing.T) {
	svc := newUserNotificationServiceForTest(&userNotificationRepoStub{})

	_, err := svc.Publish(context.Background(), dto.UserNotificationCreateRequest{
		UserID: 7,
		Type:   "activity_closed",
		// missing title and message
	})
	require.Error(t, err)
}

func TestPublishStripsMarkupFromMessage(t *testing.T) {
	repo := &userNotificationRepoStub{}
	svc := newUserNotificationServiceForTest(repo)

	response, err := svc.Publish(context.Background(), dto.UserNotificationCreateRequest{
		UserID:  7,
		Type:    "contact_request",
		Title:   "New enquiry",
		Message: `<b>Acme Corp</b> wants a <a href="https://evil.example">demo</a>`,
	})
	require.NoError(t, err)
	require.Equal(t, "Acme Corp wants a demo", response.Message)
}

func TestPublishRejectsMessageThatSanitizesToNothing(t *testing.T) {
	repo := &userNotificationRepoStub{}
	svc := newUserNotificationServiceForTest(repo)

	_, err := svc.Publish(context.Background(), dto.UserNotificationCreateRequest{
		UserID:  7,
		Type:    "contact_request",
		Title:   "New enquiry",
		Message: "<script>alert(1)</script>",
	})
	require.Error(t, err)
	require.Empty(t, repo.notifications)
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	repo := &userNotificationRepoStub{}
	svc := newUserNotificationServiceForTest(repo)

	for _, title := range []string{"first", "second"} {
		_, err := svc.Publish(context.Background(), dto.UserNotificationCreateRequest{
			UserID:  7,
			Type:    "reminder",
			Title:   title,
			Message: "You have a pending activity.",
		})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(context.Background(), 7)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	marked, err := svc.MarkRead(context.Background(), 1, 7)
	require.NoError(t, err)
	require.True(t, marked.Read)

	// Marking the same notification again stays read and keeps succeeding.
	marked, err = svc.MarkRead(context.Background(), 1, 7)
	require.NoError(t, err)
	require.True(t, marked.Read)

	count, err = svc.UnreadCount(context.Background(), 7)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := &userNotificationRepoStub{
		notifications: []models.UserNotification{{ID: 1, UserID: 7, Type: "reminder", Title: "first", Message: "hi"}},
	}
	svc := newUserNotificationServiceForTest(repo)

	_, err := svc.MarkRead(context.Background(), 1, 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.False(t, repo.notifications[0].Read)
}

func TestSubscribeReceivesPublishedNotifications(t *testing.T) {
	svc := newUserNotificationServiceForTest(&userNotificationRepoStub{})

	stream, cancel := svc.Subscribe(7)
	defer cancel()

	_, err := svc.Publish(context.Background(), dto.UserNotificationCreateRequest{
		UserID:  7,
		Type:    "reminder",
		Title:   "Reminder",
		Message: "Quarterly Pulse closes tomorrow.",
	})
	require.NoError(t, err)

	select {
	case delivered := <-stream:
		require.Equal(t, "Reminder", delivered.Title)
		require.Equal(t, uint(7), delivered.UserID)
	case <-time.After(time.Second):
		t.Fatal("expected a notification on the subscriber channel")
	}
}

func TestSubscribeDoesNotLeakAcrossUsers(t *testing.T) {
	svc := newUserNotificationServiceForTest(&userNotificationRepoStub{})

	stream, cancel := svc.Subscribe(99)
	defer cancel()

	_, err := svc.Publish(context.Background(), dto.UserNotificationCreateRequest{
		UserID:  7,
		Type:    "reminder",
		Title:   "Reminder",
		Message: "Quarterly Pulse closes tomorrow.",
	})
	require.NoError(t, err)

	select {
	case delivered := <-stream:
		t.Fatalf("unexpected notification for another user: %+v", delivered)
	case <-time.After(50 * time.Millisecond):
	}
}
