package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"psyconnect/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// notifyTimeout bounds the detached email dispatch, which outlives the request.
const notifyTimeout = 10 * time.Second

type invitationService struct {
	invitationRepo   domain.InvitationRepository
	patientRepo      domain.PatientRepository
	psychologistRepo domain.PsychologistRepository
	codeGen          domain.InvitationCodeGenerator
	emailService     domain.EmailService
	webappURL        string
	logger           *slog.Logger
}

// NewInvitationService creates an InvitationService with the given repositories,
// code generator, and email service. emailService may be nil to disable dispatch.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	patientRepo domain.PatientRepository,
	psychologistRepo domain.PsychologistRepository,
	codeGen domain.InvitationCodeGenerator,
	emailService domain.EmailService,
	webappURL string,
	logger *slog.Logger,
) domain.InvitationService {
	return &invitationService{
		invitationRepo:   invitationRepo,
		patientRepo:      patientRepo,
		psychologistRepo: psychologistRepo,
		codeGen:          codeGen,
		emailService:     emailService,
		webappURL:        webappURL,
		logger:           logger,
	}
}

func (s *invitationService) CreateInvitation(ctx context.Context, email, patientID string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return "", fmt.Errorf("invalid email format")
	}
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return "", fmt.Errorf("patient id is required")
	}
	if _, err := s.patientRepo.GetByUserID(ctx, patientID); err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to verify patient: %w", err)
	}
	code, err := s.codeGen.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate invitation code: %w", err)
	}
	inv := &domain.Invitation{
		Code:              code,
		PsychologistEmail: email,
		PatientID:         patientID,
		Status:            domain.InvitationStatusPending,
		CreatedAt:         time.Now(),
	}
	// The partial unique index rejects a second pending invitation for the
	// same pair, so concurrent creates cannot both land.
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicatePendingInvitation) {
			return "", err
		}
		return "", fmt.Errorf("failed to store invitation: %w", err)
	}
	s.dispatchInvitationEmail(email, code)
	return code, nil
}

// dispatchInvitationEmail sends the invitation email on a detached goroutine.
// The code remains valid and redeemable even if delivery fails, so failure is
// logged and never joined to the caller's result.
func (s *invitationService) dispatchInvitationEmail(email, code string) {
	if s.emailService == nil {
		return
	}
	inviteURL := fmt.Sprintf("%s/redirect-invite?code=%s", strings.TrimSuffix(s.webappURL, "/"), code)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		data := &domain.InvitationEmailData{Email: email, Code: code, InviteURL: inviteURL}
		if err := s.emailService.SendInvitation(ctx, data); err != nil {
			s.logger.Warn("invitation email not delivered", "email", email, "err", err)
		}
	}()
}

func (s *invitationService) LookupByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	inv, err := s.invitationRepo.LatestPendingByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) RedeemInvitation(ctx context.Context, code, psychologistID string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("code is required")
	}
	psychologistID = strings.TrimSpace(psychologistID)
	if psychologistID == "" {
		return fmt.Errorf("psychologist id is required")
	}

	inv, err := s.invitationRepo.GetByCode(ctx, code)
	switch {
	case err == nil:
		if inv.Status != domain.InvitationStatusPending {
			return domain.ErrInvitationAlreadyProcessed
		}
	case errors.Is(err, domain.ErrInvitationNotFound):
		// Typed codes have been observed to differ from stored ones in case
		// only; tolerate that before declaring the code unknown.
		inv, err = s.invitationRepo.FindPendingByCodeFold(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrInvitationNotFound) {
				return domain.ErrInvitationNotFound
			}
			return fmt.Errorf("failed to look up invitation: %w", err)
		}
	default:
		return fmt.Errorf("failed to look up invitation: %w", err)
	}

	if _, err := s.patientRepo.GetByUserID(ctx, inv.PatientID); err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			return err
		}
		return fmt.Errorf("failed to verify patient: %w", err)
	}
	if _, err := s.psychologistRepo.GetByID(ctx, psychologistID); err != nil {
		if errors.Is(err, domain.ErrPsychologistNotFound) {
			return err
		}
		return fmt.Errorf("failed to verify psychologist: %w", err)
	}

	if err := s.invitationRepo.Redeem(ctx, inv.ID, inv.PatientID, psychologistID); err != nil {
		if errors.Is(err, domain.ErrInvitationAlreadyProcessed) || errors.Is(err, domain.ErrPatientNotFound) {
			return err
		}
		return fmt.Errorf("failed to redeem invitation: %w", err)
	}
	return nil
}
