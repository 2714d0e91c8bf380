package domain

import (
	"context"
	"errors"
	"time"
)

// Invitation statuses. Accepted is terminal; nothing reverts it.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
)

// Sentinel errors for invitation operations.
var (
	ErrInvitationNotFound         = errors.New("invitation not found")
	ErrDuplicatePendingInvitation = errors.New("pending invitation already exists")
	ErrInvitationAlreadyProcessed = errors.New("invitation already processed")
)

// Invitation links a psychologist's email and a patient id via a redeemable code.
// swagger:model Invitation
type Invitation struct {
	ID                string    `json:"id"`
	Code              string    `json:"code"`
	PsychologistEmail string    `json:"psychologist_email"`
	PatientID         string    `json:"patient_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// InvitationCodeGenerator produces short, human-typable invitation codes.
type InvitationCodeGenerator interface {
	Generate() (string, error)
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	// Create inserts a pending invitation. A second pending invitation for the
	// same (psychologist_email, patient_id) pair fails with
	// ErrDuplicatePendingInvitation.
	Create(ctx context.Context, inv *Invitation) error
	// LatestPendingByEmail returns the most recent pending invitation for the
	// email, or ErrInvitationNotFound.
	LatestPendingByEmail(ctx context.Context, email string) (*Invitation, error)
	// GetByCode returns the invitation with the exact code, any status.
	GetByCode(ctx context.Context, code string) (*Invitation, error)
	// FindPendingByCodeFold matches a pending invitation ignoring code case.
	FindPendingByCodeFold(ctx context.Context, code string) (*Invitation, error)
	// Redeem flips the invitation to accepted and links the psychologist to the
	// patient profile in a single transaction. A non-pending invitation fails
	// with ErrInvitationAlreadyProcessed; a missing patient profile with
	// ErrPatientNotFound. Either both mutations commit or neither does.
	Redeem(ctx context.Context, invitationID, patientID, psychologistID string) error
}

// InvitationService defines the invitation lifecycle business logic.
type InvitationService interface {
	CreateInvitation(ctx context.Context, email, patientID string) (code string, err error)
	LookupByEmail(ctx context.Context, email string) (*Invitation, error)
	RedeemInvitation(ctx context.Context, code, psychologistID string) error
}
