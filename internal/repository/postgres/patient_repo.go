package postgres

import (
	"context"
	"database/sql"
	"errors"

	"psyconnect/internal/domain"
)

type patientRepository struct {
	DB *sql.DB
}

func NewPatientRepository(db *sql.DB) domain.PatientRepository {
	return &patientRepository{DB: db}
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID string) (*domain.PatientProfile, error) {
	query := `
		SELECT user_id, psychologist_id
		FROM user_profiles
		WHERE user_id = $1
	`
	p := &domain.PatientProfile{}
	var psychologistID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &psychologistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, err
	}
	if psychologistID.Valid {
		p.PsychologistID = &psychologistID.String
	}
	return p, nil
}
