package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"psyconnect/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).
					WithArgs("K7M2QX", "doc@example.com", "p1", domain.InvitationStatusPending, createdAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-1"))
			},
		},
		{
			name: "duplicate pending pair",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: pendingPairConstraint})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicatePendingInvitation,
		},
		{
			name: "code collision",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "invitations_code_key"})
			},
			wantErr: true,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInvitationRepository(db)
			inv := &domain.Invitation{
				Code:              "K7M2QX",
				PsychologistEmail: "doc@example.com",
				PatientID:         "p1",
				Status:            domain.InvitationStatusPending,
				CreatedAt:         createdAt,
			}
			err = repo.Create(ctx, inv)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "inv-1", inv.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_LatestPendingByEmail(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "code", "psychologist_email", "patient_id", "status", "created_at"}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, code, psychologist_email, patient_id, status, created_at`).
			WithArgs("doc@example.com", domain.InvitationStatusPending).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("inv-1", "K7M2QX", "doc@example.com", "p1", domain.InvitationStatusPending, createdAt))

		repo := NewInvitationRepository(db)
		inv, err := repo.LatestPendingByEmail(ctx, "doc@example.com")
		require.NoError(t, err)
		assert.Equal(t, "K7M2QX", inv.Code)
		assert.Equal(t, "p1", inv.PatientID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none pending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, code, psychologist_email, patient_id, status, created_at`).
			WithArgs("doc@example.com", domain.InvitationStatusPending).
			WillReturnError(sql.ErrNoRows)

		repo := NewInvitationRepository(db)
		_, err = repo.LatestPendingByEmail(ctx, "doc@example.com")
		require.ErrorIs(t, err, domain.ErrInvitationNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvitationRepository_FindPendingByCodeFold(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "code", "psychologist_email", "patient_id", "status", "created_at"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`upper\(code\) = upper\(\$1\)`).
		WithArgs("k7m2qx", domain.InvitationStatusPending).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("inv-1", "K7M2QX", "doc@example.com", "p1", domain.InvitationStatusPending, createdAt))

	repo := NewInvitationRepository(db)
	inv, err := repo.FindPendingByCodeFold(ctx, "k7m2qx")
	require.NoError(t, err)
	assert.Equal(t, "K7M2QX", inv.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_Redeem(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success commits both updates",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE invitations`).
					WithArgs(domain.InvitationStatusAccepted, "inv-1", domain.InvitationStatusPending).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`UPDATE user_profiles`).
					WithArgs("psy1", "p1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "already processed rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE invitations`).
					WithArgs(domain.InvitationStatusAccepted, "inv-1", domain.InvitationStatusPending).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: true,
			errIs:   domain.ErrInvitationAlreadyProcessed,
		},
		{
			name: "missing patient profile rolls back the status flip",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE invitations`).
					WithArgs(domain.InvitationStatusAccepted, "inv-1", domain.InvitationStatusPending).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`UPDATE user_profiles`).
					WithArgs("psy1", "p1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: true,
			errIs:   domain.ErrPatientNotFound,
		},
		{
			name: "db error during link rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE invitations`).
					WithArgs(domain.InvitationStatusAccepted, "inv-1", domain.InvitationStatusPending).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`UPDATE user_profiles`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInvitationRepository(db)
			err = repo.Redeem(ctx, "inv-1", "p1", "psy1")
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
