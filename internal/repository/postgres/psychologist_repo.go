package postgres

import (
	"context"
	"database/sql"
	"errors"

	"psyconnect/internal/domain"
)

type psychologistRepository struct {
	DB *sql.DB
}

func NewPsychologistRepository(db *sql.DB) domain.PsychologistRepository {
	return &psychologistRepository{DB: db}
}

func (r *psychologistRepository) GetByID(ctx context.Context, id string) (*domain.Psychologist, error) {
	query := `
		SELECT id, email, name
		FROM psychologists
		WHERE id = $1
	`
	p := &domain.Psychologist{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Email, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPsychologistNotFound
		}
		return nil, err
	}
	return p, nil
}
