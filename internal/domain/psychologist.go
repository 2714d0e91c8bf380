package domain

import (
	"context"
	"errors"
)

// ErrPsychologistNotFound is returned when no psychologist record exists for an id.
var ErrPsychologistNotFound = errors.New("psychologist not found")

// Psychologist is a registered psychologist record.
type Psychologist struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PsychologistRepository defines storage operations for psychologists.
type PsychologistRepository interface {
	GetByID(ctx context.Context, id string) (*Psychologist, error)
}
