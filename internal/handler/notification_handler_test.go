package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/handler"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/service"
)

type mockNotificationService struct {
	lastActivityID uint
	lastDispatch   dto.DispatchRequest
	summary        dto.DispatchSummary
	audit          []dto.NotificationResponse
	reports        []dto.ReportResponse
	err            error
}

func (m *mockNotificationService) Dispatch(_ context.Context, activityID uint, req dto.DispatchRequest) (dto.DispatchSummary, error) {
	m.lastActivityID = activityID
	m.lastDispatch = req
	return m.summary, m.err
}

func (m *mockNotificationService) ListAudit(_ context.Context, activityID uint, _, _ int) ([]dto.NotificationResponse, error) {
	m.lastActivityID = activityID
	return m.audit, m.err
}

func (m *mockNotificationService) ListReports(_ context.Context, activityID uint) ([]dto.ReportResponse, error) {
	m.lastActivityID = activityID
	return m.reports, m.err
}

func (m *mockNotificationService) NotifyApprovalRequested(_ context.Context, _ []uint, _ models.Activity) error {
	return m.err
}

func (m *mockNotificationService) NotifyApprovalDecision(_ context.Context, _ uint, _ models.Activity, _ bool) error {
	return m.err
}

func (m *mockNotificationService) NotifyActivityAssigned(_ context.Context, _ uint, _ models.Activity) error {
	return m.err
}

func newNotificationApp(svc service.NotificationService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v2/activities", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		return c.Next()
	})
	handler.NewNotificationHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestNotificationHandler_Dispatch(t *testing.T) {
	svc := &mockNotificationService{summary: dto.DispatchSummary{
		Event: "invitation",
		Email: dto.ChannelCounts{Sent: 3},
	}}
	app := newNotificationApp(svc)

	body, err := json.Marshal(dto.DispatchRequest{Event: "invitation"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/activities/7/notifications/dispatch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.DispatchSummary `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, 3, response.Data.Email.Sent)
	require.Equal(t, uint(7), svc.lastActivityID)
	require.Equal(t, "invitation", svc.lastDispatch.Event)
}

func TestNotificationHandler_DispatchUnknownActivity(t *testing.T) {
	app := newNotificationApp(&mockNotificationService{err: gorm.ErrRecordNotFound})

	body, err := json.Marshal(dto.DispatchRequest{Event: "reminder"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/activities/999/notifications/dispatch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNotificationHandler_DispatchUnknownEvent(t *testing.T) {
	app := newNotificationApp(&mockNotificationService{err: service.ErrUnknownEvent})

	body, err := json.Marshal(map[string]string{"event": "invitation"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/activities/7/notifications/dispatch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNotificationHandler_ListAudit(t *testing.T) {
	svc := &mockNotificationService{audit: []dto.NotificationResponse{{ID: 1, Channel: "email", Status: "sent"}}}
	app := newNotificationApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/activities/7/notifications?limit=50", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                       `json:"success"`
		Data    []dto.NotificationResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Len(t, response.Data, 1)
	require.Equal(t, "sent", response.Data[0].Status)
}

func TestNotificationHandler_ListReports(t *testing.T) {
	svc := &mockNotificationService{reports: []dto.ReportResponse{{ID: 9, Event: "reminder"}}}
	app := newNotificationApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/activities/7/notifications/reports", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastActivityID)
}
