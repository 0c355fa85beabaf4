package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/pkg/constants"
	"github.com/crewhq/backend/pkg/errors"
)

func newComplianceFixture() (*ComplianceService, *fakeObligationStore, *syncPublisher) {
	store := newFakeObligationStore()
	bus := &syncPublisher{}
	return NewComplianceService(store, &fakeAuditStore{}, bus), store, bus
}

func TestOpenSetsDeadlineFromTrigger(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	trigger := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	obligation, err := svc.Open(context.Background(), "emp-1", trigger, hrManager())
	require.NoError(t, err)
	assert.Equal(t, trigger.AddDate(0, 0, constants.DefaultComplianceWindowDays), obligation.Deadline)
	assert.Equal(t, constants.ObligationStatusPending, obligation.Status)
}

func TestOpenRequiresCapability(t *testing.T) {
	svc, _, _ := newComplianceFixture()

	_, err := svc.Open(context.Background(), "emp-1", time.Time{}, employee())
	require.Error(t, err)
	assert.True(t, errors.IsForbidden(err))
}

func TestOverdueIsDerivedAtReadTime(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	ctx := context.Background()
	trigger := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	obligation, err := svc.Open(ctx, "emp-1", trigger, hrManager())
	require.NoError(t, err)

	// Deadline is trigger+5d; day 3 is inside the window, day 6 is past it
	status, err := svc.StatusOf(ctx, obligation.ID, trigger.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, constants.ObligationStatusPending, status)

	status, err = svc.StatusOf(ctx, obligation.ID, trigger.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Equal(t, constants.ObligationStatusOverdue, status)
}

func TestSubmittedObligationNeverGoesOverdue(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	ctx := context.Background()
	trigger := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	obligation, err := svc.Open(ctx, "emp-1", trigger, hrManager())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, obligation.ID, hrManager())
	require.NoError(t, err)

	status, err := svc.StatusOf(ctx, obligation.ID, trigger.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, constants.ObligationStatusSubmitted, status)
}

func TestSubmitTwiceIsRejected(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	ctx := context.Background()

	obligation, err := svc.Open(ctx, "emp-1", time.Time{}, hrManager())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, obligation.ID, hrManager())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, obligation.ID, hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsAlreadySubmitted(err))
}

func TestSubmitUnknownObligation(t *testing.T) {
	svc, _, _ := newComplianceFixture()

	_, err := svc.Submit(context.Background(), "missing", hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestReviewClosesSubmittedFiling(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	ctx := context.Background()
	trigger := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	obligation, err := svc.Open(ctx, "emp-1", trigger, hrManager())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, obligation.ID, hrManager())
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, obligation.ID, constants.ObligationStatusApproved, hrManager())
	require.NoError(t, err)
	assert.Equal(t, constants.ObligationStatusApproved, reviewed.Status)

	// Reviewed filings keep their outcome on read, long past the deadline
	status, err := svc.StatusOf(ctx, obligation.ID, trigger.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, constants.ObligationStatusApproved, status)
}

func TestReviewIsFinal(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	ctx := context.Background()

	obligation, err := svc.Open(ctx, "emp-1", time.Time{}, hrManager())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, obligation.ID, hrManager())
	require.NoError(t, err)
	_, err = svc.Review(ctx, obligation.ID, constants.ObligationStatusRejected, hrManager())
	require.NoError(t, err)

	_, err = svc.Review(ctx, obligation.ID, constants.ObligationStatusApproved, hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyDecided(err))
}

func TestReviewRequiresSubmission(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	ctx := context.Background()

	obligation, err := svc.Open(ctx, "emp-1", time.Time{}, hrManager())
	require.NoError(t, err)

	_, err = svc.Review(ctx, obligation.ID, constants.ObligationStatusApproved, hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestReviewRejectsUnknownOutcome(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	ctx := context.Background()

	obligation, err := svc.Open(ctx, "emp-1", time.Time{}, hrManager())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, obligation.ID, hrManager())
	require.NoError(t, err)

	_, err = svc.Review(ctx, obligation.ID, "escalated", hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSweepPublishesOncePerObligation(t *testing.T) {
	svc, _, bus := newComplianceFixture()
	ctx := context.Background()
	trigger := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	obligation, err := svc.Open(ctx, "emp-1", trigger, hrManager())
	require.NoError(t, err)

	past := trigger.AddDate(0, 0, 10)
	overdue, err := svc.SweepOverdue(ctx, past)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, obligation.ID, overdue[0].ID)
	assert.Equal(t, constants.ObligationStatusOverdue, overdue[0].Status)

	// A second sweep still reports the obligation but does not alert again
	overdue, err = svc.SweepOverdue(ctx, past)
	require.NoError(t, err)
	assert.Len(t, overdue, 1)

	published := bus.events()
	require.Len(t, published, 1)
	assert.Equal(t, events.ObligationOverdue, published[0].Type)
}

func TestSweepSkipsSubmittedAndFutureObligations(t *testing.T) {
	svc, _, bus := newComplianceFixture()
	ctx := context.Background()
	trigger := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	submitted, err := svc.Open(ctx, "emp-1", trigger, hrManager())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, submitted.ID, hrManager())
	require.NoError(t, err)

	_, err = svc.Open(ctx, "emp-2", trigger.AddDate(0, 0, 20), hrManager())
	require.NoError(t, err)

	overdue, err := svc.SweepOverdue(ctx, trigger.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Empty(t, overdue)
	assert.Empty(t, bus.events())
}

func TestWindowDaysDefault(t *testing.T) {
	svc, _, _ := newComplianceFixture()
	assert.Equal(t, constants.DefaultComplianceWindowDays, svc.WindowDays())
}
