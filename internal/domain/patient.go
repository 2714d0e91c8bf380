package domain

import (
	"context"
	"errors"
)

// ErrPatientNotFound is returned when no patient profile exists for a user id.
var ErrPatientNotFound = errors.New("patient not found")

// PatientProfile is the patient's profile record. Identity itself lives in the
// hosted auth provider; this row carries app-level fields such as the linked
// psychologist.
type PatientProfile struct {
	UserID         string  `json:"user_id"`
	PsychologistID *string `json:"psychologist_id,omitempty"`
}

// PatientRepository defines storage operations for patient profiles.
type PatientRepository interface {
	GetByUserID(ctx context.Context, userID string) (*PatientProfile, error)
}
