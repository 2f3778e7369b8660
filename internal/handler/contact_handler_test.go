package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/engagekit/engage-go-api/internal/dto"
	"github.com/engagekit/engage-go-api/internal/handler"
	"github.com/engagekit/engage-go-api/internal/service"
)

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

type mockContactService struct {
	lastPayload dto.ContactSalesRequest
	response    dto.ContactSalesResponse
	err         error
}

func (m *mockContactService) Submit(_ context.Context, req dto.ContactSalesRequest) (dto.ContactSalesResponse, error) {
	m.lastPayload = req
	if m.err != nil {
		return dto.ContactSalesResponse{}, m.err
	}
	return m.response, nil
}

func newContactApp(svc service.ContactService) *fiber.App {
	app := fiber.New()
	handler.NewContactHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/contact"))
	return app
}

func TestContactHandler_SubmitAccepted(t *testing.T) {
	svc := &mockContactService{response: dto.ContactSalesResponse{ReferenceID: "ref-1", Status: "accepted"}}
	app := newContactApp(svc)

	payload := dto.ContactSalesRequest{Name: "Alice", Email: "alice@example.com", Company: "Acme", Message: "We want a demo."}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var response struct {
		Success bool                     `json:"success"`
		Data    dto.ContactSalesResponse `json:"data"`
		Message string                   `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "enquiry received", response.Message)
	require.Equal(t, "ref-1", response.Data.ReferenceID)
	require.Equal(t, "alice@example.com", svc.lastPayload.Email)
}

func TestContactHandler_HoneypotLooksLikeSuccess(t *testing.T) {
	svc := &mockContactService{err: service.ErrContactSpam}
	app := newContactApp(svc)

	payload := map[string]string{"name": "Bob", "email": "bob@example.com", "message": "Hi there", "_note": "spam"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "enquiry received", response.Message)
}

func TestContactHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "duplicate", err: service.ErrContactDuplicate, statusCode: fiber.StatusTooManyRequests},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newContactApp(&mockContactService{err: tc.err})

			payload := dto.ContactSalesRequest{Name: "Alice", Email: "alice@example.com", Message: "Hello there"}
			body, err := json.Marshal(payload)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestContactHandler_MalformedBody(t *testing.T) {
	app := newContactApp(&mockContactService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
