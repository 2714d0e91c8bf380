package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"psyconnect/internal/delivery/http/helpers"
	"psyconnect/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockInvitationService implements domain.InvitationService for tests.
type mockInvitationService struct {
	code       string
	invitation *domain.Invitation
	createErr  error
	lookupErr  error
	redeemErr  error

	gotEmail          string
	gotPatientID      string
	gotCode           string
	gotPsychologistID string
}

func (m *mockInvitationService) CreateInvitation(ctx context.Context, email, patientID string) (string, error) {
	m.gotEmail = email
	m.gotPatientID = patientID
	if m.createErr != nil {
		return "", m.createErr
	}
	return m.code, nil
}

func (m *mockInvitationService) LookupByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	m.gotEmail = email
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.invitation, nil
}

func (m *mockInvitationService) RedeemInvitation(ctx context.Context, code, psychologistID string) error {
	m.gotCode = code
	m.gotPsychologistID = psychologistID
	return m.redeemErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInvitationController_Health(t *testing.T) {
	ctrl := NewInvitationController(discardLogger(), &mockInvitationService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	ctrl.Health(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestInvitationController_InvitePsychologist(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *mockInvitationService
		wantStatus int
	}{
		{
			name:       "created",
			body:       `{"email":"doc@example.com","patient_id":"p1"}`,
			svc:        &mockInvitationService{code: "K7M2QX"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing email",
			body:       `{"patient_id":"p1"}`,
			svc:        &mockInvitationService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       `{"email":"nope","patient_id":"p1"}`,
			svc:        &mockInvitationService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "patient not found",
			body:       `{"email":"doc@example.com","patient_id":"ghost"}`,
			svc:        &mockInvitationService{createErr: domain.ErrPatientNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "duplicate pending",
			body:       `{"email":"doc@example.com","patient_id":"p1"}`,
			svc:        &mockInvitationService{createErr: domain.ErrDuplicatePendingInvitation},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "internal error",
			body:       `{"email":"doc@example.com","patient_id":"p1"}`,
			svc:        &mockInvitationService{createErr: context.DeadlineExceeded},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewInvitationController(discardLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/invite-psychologist", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			ctrl.InvitePsychologist(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusCreated {
				var resp InvitePsychologistResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "K7M2QX", resp.Code)
				assert.NotEmpty(t, resp.Message)
			} else {
				var resp helpers.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.False(t, resp.Success)
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestInvitationController_GetInviteByEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockInvitationService{
			invitation: &domain.Invitation{Code: "K7M2QX", PatientID: "p1"},
		}
		ctrl := NewInvitationController(discardLogger(), svc)
		req := httptest.NewRequest(http.MethodGet, "/get-invite-by-email?email=doc@example.com", nil)
		w := httptest.NewRecorder()

		ctrl.GetInviteByEmail(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp GetInviteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "K7M2QX", resp.Code)
		assert.Equal(t, "p1", resp.PatientID)
		assert.Equal(t, "doc@example.com", svc.gotEmail)
	})

	t.Run("missing email", func(t *testing.T) {
		ctrl := NewInvitationController(discardLogger(), &mockInvitationService{})
		req := httptest.NewRequest(http.MethodGet, "/get-invite-by-email", nil)
		w := httptest.NewRecorder()

		ctrl.GetInviteByEmail(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("none pending", func(t *testing.T) {
		ctrl := NewInvitationController(discardLogger(), &mockInvitationService{lookupErr: domain.ErrInvitationNotFound})
		req := httptest.NewRequest(http.MethodGet, "/get-invite-by-email?email=doc@example.com", nil)
		w := httptest.NewRecorder()

		ctrl.GetInviteByEmail(w, req)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInvitationController_ProcessInvite(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *mockInvitationService
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"code":" k7m2qx ","psychologistId":"psy1"}`,
			svc:        &mockInvitationService{},
			wantStatus: http.StatusOK,
		},
		{
			name:       "already processed maps to 400",
			body:       `{"code":"K7M2QX","psychologistId":"psy1"}`,
			svc:        &mockInvitationService{redeemErr: domain.ErrInvitationAlreadyProcessed},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown code maps to 404",
			body:       `{"code":"ZZZZZZ","psychologistId":"psy1"}`,
			svc:        &mockInvitationService{redeemErr: domain.ErrInvitationNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing psychologist maps to 404",
			body:       `{"code":"K7M2QX","psychologistId":"ghost"}`,
			svc:        &mockInvitationService{redeemErr: domain.ErrPsychologistNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing fields",
			body:       `{"code":""}`,
			svc:        &mockInvitationService{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewInvitationController(discardLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/process-invite", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			ctrl.ProcessInvite(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp ProcessInviteResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				// The raw code is passed through; normalization happens in the service.
				assert.Equal(t, " k7m2qx ", tt.svc.gotCode)
			}
		})
	}
}
