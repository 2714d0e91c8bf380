package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"psyconnect/internal/domain"
)

// pendingPairConstraint is the partial unique index on
// (psychologist_email, patient_id) WHERE status = 'pending'.
const pendingPairConstraint = "invitations_one_pending_per_pair"

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (code, psychologist_email, patient_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.Code, inv.PsychologistEmail, inv.PatientID, inv.Status, inv.CreatedAt,
	).Scan(&inv.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == pendingPairConstraint {
				return domain.ErrDuplicatePendingInvitation
			}
			// Unique code index hit: the generator drew an existing code.
			return fmt.Errorf("invitation code collision: %w", err)
		}
		return err
	}
	return nil
}

func (r *invitationRepository) LatestPendingByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	query := `
		SELECT id, code, psychologist_email, patient_id, status, created_at
		FROM invitations
		WHERE psychologist_email = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, email, domain.InvitationStatusPending))
}

func (r *invitationRepository) GetByCode(ctx context.Context, code string) (*domain.Invitation, error) {
	query := `
		SELECT id, code, psychologist_email, patient_id, status, created_at
		FROM invitations
		WHERE code = $1
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, code))
}

func (r *invitationRepository) FindPendingByCodeFold(ctx context.Context, code string) (*domain.Invitation, error) {
	query := `
		SELECT id, code, psychologist_email, patient_id, status, created_at
		FROM invitations
		WHERE upper(code) = upper($1) AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, code, domain.InvitationStatusPending))
}

// Redeem flips the invitation to accepted and links the psychologist to the
// patient profile. Both updates run in one transaction so a failed link never
// leaves an accepted invitation behind.
func (r *invitationRepository) Redeem(ctx context.Context, invitationID, patientID, psychologistID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin redemption: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE invitations
		SET status = $1
		WHERE id = $2 AND status = $3
	`, domain.InvitationStatusAccepted, invitationID, domain.InvitationStatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvitationAlreadyProcessed
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE user_profiles
		SET psychologist_id = $1
		WHERE user_id = $2
	`, psychologistID, patientID)
	if err != nil {
		return err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPatientNotFound
	}

	return tx.Commit()
}

func scanInvitation(row *sql.Row) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := row.Scan(&inv.ID, &inv.Code, &inv.PsychologistEmail, &inv.PatientID, &inv.Status, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}
	return inv, nil
}
