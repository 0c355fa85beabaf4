package persistence

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var obligationTestColumns = []string{
	"id", "subject_id", "trigger_date", "deadline", "submitted_date", "submitted_by_id", "status", "created_date",
}

func TestMarkSubmittedGuardsOnNullSubmission(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE compliance_obligation SET").
		WithArgs(now, "user-hr", "submitted", "obl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewObligationRepository(db)
	ok, err := repo.MarkSubmitted(context.Background(), "obl-1", "user-hr", now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSubmittedSecondWriterLoses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE compliance_obligation SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewObligationRepository(db)
	ok, err := repo.MarkSubmitted(context.Background(), "obl-1", "user-hr", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetStatusGuarded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE compliance_obligation SET status").
		WithArgs("approved", "obl-1", "submitted").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewObligationRepository(db)
	ok, err := repo.SetStatusGuarded(context.Background(), "obl-1", "submitted", "approved")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusGuardedSecondReviewerLoses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE compliance_obligation SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewObligationRepository(db)
	ok, err := repo.SetStatusGuarded(context.Background(), "obl-1", "submitted", "rejected")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListUnsubmittedDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(obligationTestColumns).
		AddRow("obl-1", "emp-1", "2026-05-01 00:00:00", "2026-05-06 00:00:00", nil, nil, "pending", "2026-05-01 00:00:00")

	mock.ExpectQuery("SELECT (.+) FROM compliance_obligation").
		WillReturnRows(rows)

	repo := NewObligationRepository(db)
	due, err := repo.ListUnsubmittedDue(context.Background(), time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "obl-1", due[0].ID)
	assert.Nil(t, due[0].SubmittedDate)
	assert.Equal(t, 6, due[0].Deadline.Day())
}

func TestGetObligationDecodesSubmission(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(obligationTestColumns).
		AddRow("obl-1", "emp-1", "2026-05-01 00:00:00", "2026-05-06 00:00:00",
			"2026-05-03 10:30:00", "user-hr", "submitted", "2026-05-01 00:00:00")

	mock.ExpectQuery("SELECT (.+) FROM compliance_obligation").
		WithArgs("obl-1").
		WillReturnRows(rows)

	repo := NewObligationRepository(db)
	obligation, err := repo.GetByID(context.Background(), "obl-1")
	require.NoError(t, err)
	require.NotNil(t, obligation)
	require.NotNil(t, obligation.SubmittedDate)
	assert.Equal(t, 3, obligation.SubmittedDate.Day())
	require.NotNil(t, obligation.SubmittedByID)
	assert.Equal(t, "user-hr", *obligation.SubmittedByID)
}
