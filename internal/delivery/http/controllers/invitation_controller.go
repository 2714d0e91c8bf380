package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"psyconnect/internal/delivery/http/helpers"
	"psyconnect/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// InvitePsychologistRequest is the request body for POST /invite-psychologist.
type InvitePsychologistRequest struct {
	Email     string `json:"email"`
	PatientID string `json:"patient_id"`
}

// Validate implements Validator.
func (req InvitePsychologistRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if strings.TrimSpace(req.PatientID) == "" {
		errs = append(errs, "patient_id is required")
	}
	return errs
}

// InvitePsychologistResponse is the response body for POST /invite-psychologist.
type InvitePsychologistResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// GetInviteResponse is the response body for GET /get-invite-by-email.
type GetInviteResponse struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	PatientID string `json:"patient_id"`
}

// ProcessInviteRequest is the request body for POST /process-invite.
type ProcessInviteRequest struct {
	Code           string `json:"code"`
	PsychologistID string `json:"psychologistId"`
}

// Validate implements Validator.
func (req ProcessInviteRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Code) == "" {
		errs = append(errs, "code is required")
	}
	if strings.TrimSpace(req.PsychologistID) == "" {
		errs = append(errs, "psychologistId is required")
	}
	return errs
}

// ProcessInviteResponse is the response body for POST /process-invite.
type ProcessInviteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InvitationController handles invitation lifecycle endpoints.
type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

// NewInvitationController creates an InvitationController with the given logger and service.
func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} controllers.HealthResponse
// @Router /health [get]
func (c *InvitationController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Message: "invitation service up"})
}

// InvitePsychologist godoc
// @Summary Invite a psychologist
// @Description Create a pending invitation from a patient to a psychologist's email and dispatch the invitation email (best-effort).
// @Tags invitations
// @Accept json
// @Produce json
// @Param body body InvitePsychologistRequest true "Invitation data"
// @Success 201 {object} controllers.InvitePsychologistResponse
// @Failure 400 {object} helpers.ErrorResponse "invalid input"
// @Failure 404 {object} helpers.ErrorResponse "patient not found"
// @Failure 409 {object} helpers.ErrorResponse "duplicate pending invitation"
// @Failure 500 {object} helpers.ErrorResponse
// @Router /invite-psychologist [post]
func (c *InvitationController) InvitePsychologist(w http.ResponseWriter, r *http.Request) {
	var req InvitePsychologistRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	code, err := c.Service.CreateInvitation(r.Context(), req.Email, req.PatientID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPatientNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, "patient not found")
		case errors.Is(err, domain.ErrDuplicatePendingInvitation):
			helpers.WriteJSONError(w, http.StatusConflict, "a pending invitation already exists for this psychologist")
		case strings.Contains(err.Error(), "invalid email") || strings.Contains(err.Error(), "is required"):
			helpers.WriteJSONError(w, http.StatusBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, InvitePsychologistResponse{Message: "invitation sent", Code: code})
}

// GetInviteByEmail godoc
// @Summary Look up the latest pending invitation for an email
// @Tags invitations
// @Produce json
// @Param email query string true "Psychologist email"
// @Success 200 {object} controllers.GetInviteResponse
// @Failure 400 {object} helpers.ErrorResponse "missing email"
// @Failure 404 {object} helpers.ErrorResponse "no pending invitation"
// @Failure 500 {object} helpers.ErrorResponse
// @Router /get-invite-by-email [get]
func (c *InvitationController) GetInviteByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, "email is required")
		return
	}
	inv, err := c.Service.LookupByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "no pending invitation for this email")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, GetInviteResponse{Success: true, Code: inv.Code, PatientID: inv.PatientID})
}

// ProcessInvite godoc
// @Summary Redeem an invitation code
// @Description Flip the invitation to accepted and link the psychologist to the patient profile. Code matching tolerates surrounding whitespace and case differences.
// @Tags invitations
// @Accept json
// @Produce json
// @Param body body ProcessInviteRequest true "Redemption data"
// @Success 200 {object} controllers.ProcessInviteResponse
// @Failure 400 {object} helpers.ErrorResponse "invalid input or already processed"
// @Failure 404 {object} helpers.ErrorResponse "invitation, patient, or psychologist not found"
// @Failure 500 {object} helpers.ErrorResponse
// @Router /process-invite [post]
func (c *InvitationController) ProcessInvite(w http.ResponseWriter, r *http.Request) {
	var req ProcessInviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Service.RedeemInvitation(r.Context(), req.Code, req.PsychologistID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvitationAlreadyProcessed):
			helpers.WriteJSONError(w, http.StatusBadRequest, "this invitation has already been processed")
		case errors.Is(err, domain.ErrInvitationNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, "invitation not found")
		case errors.Is(err, domain.ErrPatientNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, "patient not found")
		case errors.Is(err, domain.ErrPsychologistNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, "psychologist not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ProcessInviteResponse{Success: true, Message: "invitation processed"})
}
