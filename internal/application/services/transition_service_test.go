package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
	"github.com/crewhq/backend/pkg/errors"
)

func hrManager() *auth.UserSession {
	return &auth.UserSession{ID: "user-hr", Name: "HR Manager", Role: constants.RoleHRManager}
}

func employee() *auth.UserSession {
	return &auth.UserSession{ID: "user-emp", Name: "Employee", Role: constants.RoleEmployee}
}

func onboardingStages(names ...string) []models.StageDefinition {
	stages := make([]models.StageDefinition, len(names))
	for i, name := range names {
		stages[i] = models.StageDefinition{
			ID:           "stage-" + name,
			WorkflowType: constants.WorkflowOnboarding,
			Subtype:      constants.ClassificationW2,
			Name:         name,
			Ordinal:      i + 1,
			IsActive:     true,
			CreatedDate:  time.Now().UTC(),
		}
	}
	return stages
}

func newTransitionFixture(stages []models.StageDefinition) (*TransitionService, *fakeInstanceStore, *syncPublisher) {
	stageStore := &fakeStageStore{stages: stages}
	instances := newFakeInstanceStore()
	bus := &syncPublisher{}
	svc := NewTransitionService(NewCatalogService(stageStore), instances, &fakeAuditStore{}, bus)
	return svc, instances, bus
}

func w2Advance(subjectID, target string) AdvanceRequest {
	return AdvanceRequest{
		WorkflowType:  constants.WorkflowOnboarding,
		SubjectID:     subjectID,
		Subtype:       constants.ClassificationW2,
		TargetStageID: target,
	}
}

func TestAdvanceWalksStagesInOrder(t *testing.T) {
	svc, _, bus := newTransitionFixture(onboardingStages("offer", "forms", "orientation"))
	ctx := context.Background()

	inst, err := svc.Advance(ctx, w2Advance("emp-1", ""), hrManager())
	require.NoError(t, err)
	assert.Equal(t, []string{"stage-offer"}, inst.CompletedStageIDs)
	assert.Equal(t, constants.InstanceStatusInProgress, inst.Status)
	assert.Equal(t, int64(2), inst.Version)

	inst, err = svc.Advance(ctx, w2Advance("emp-1", ""), hrManager())
	require.NoError(t, err)
	assert.Equal(t, []string{"stage-offer", "stage-forms"}, inst.CompletedStageIDs)

	inst, err = svc.Advance(ctx, w2Advance("emp-1", ""), hrManager())
	require.NoError(t, err)
	assert.Equal(t, constants.InstanceStatusComplete, inst.Status)
	assert.Equal(t, int64(4), inst.Version)

	published := bus.events()
	require.Len(t, published, 3)
	assert.Equal(t, events.WorkflowAdvanced, published[0].Type)
}

func TestAdvanceRejectsSkippedStage(t *testing.T) {
	svc, _, _ := newTransitionFixture(onboardingStages("offer", "forms", "orientation"))

	_, err := svc.Advance(context.Background(), w2Advance("emp-1", "stage-forms"), hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsOutOfOrder(err))

	var outOfOrder *errors.OutOfOrderError
	require.ErrorAs(t, err, &outOfOrder)
	assert.Equal(t, "stage-offer", outOfOrder.Expected)
}

func TestAdvanceRejectsCompletedInstance(t *testing.T) {
	svc, _, _ := newTransitionFixture(onboardingStages("offer"))
	ctx := context.Background()

	_, err := svc.Advance(ctx, w2Advance("emp-1", ""), hrManager())
	require.NoError(t, err)

	_, err = svc.Advance(ctx, w2Advance("emp-1", ""), hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyComplete(err))
}

func TestAdvanceRequiresCapability(t *testing.T) {
	svc, _, _ := newTransitionFixture(onboardingStages("offer"))

	_, err := svc.Advance(context.Background(), w2Advance("emp-1", ""), employee())
	require.Error(t, err)
	assert.True(t, errors.IsForbidden(err))
}

func TestAdvanceRejectsUnknownWorkflowType(t *testing.T) {
	svc, _, _ := newTransitionFixture(onboardingStages("offer"))

	_, err := svc.Advance(context.Background(), AdvanceRequest{
		WorkflowType: "payroll",
		SubjectID:    "emp-1",
	}, hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestAdvanceFailsOnEmptyCatalog(t *testing.T) {
	svc, _, _ := newTransitionFixture(nil)

	_, err := svc.Advance(context.Background(), w2Advance("emp-1", ""), hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAdvanceRetriesVersionConflicts(t *testing.T) {
	svc, instances, _ := newTransitionFixture(onboardingStages("offer", "forms"))
	instances.conflicts = 2

	inst, err := svc.Advance(context.Background(), w2Advance("emp-1", ""), hrManager())
	require.NoError(t, err)
	assert.Equal(t, []string{"stage-offer"}, inst.CompletedStageIDs)
}

func TestAdvanceSurfacesExhaustedConflicts(t *testing.T) {
	svc, instances, _ := newTransitionFixture(onboardingStages("offer", "forms"))
	instances.conflicts = constants.ConflictRetryAttempts

	_, err := svc.Advance(context.Background(), w2Advance("emp-1", ""), hrManager())
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestAdvanceIsIdempotentPerSubject(t *testing.T) {
	svc, instances, _ := newTransitionFixture(onboardingStages("offer", "forms"))
	ctx := context.Background()

	_, err := svc.Advance(ctx, w2Advance("emp-1", ""), hrManager())
	require.NoError(t, err)
	_, err = svc.Advance(ctx, w2Advance("emp-1", ""), hrManager())
	require.NoError(t, err)

	assert.Len(t, instances.instances, 1)
}

func TestGetProgressWithoutInstance(t *testing.T) {
	svc, _, _ := newTransitionFixture(onboardingStages("offer", "forms", "orientation"))

	progress, err := svc.GetProgress(context.Background(), constants.WorkflowOnboarding, "emp-new", constants.ClassificationW2)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.PercentComplete)
	require.NotNil(t, progress.CurrentStage)
	assert.Equal(t, "stage-offer", progress.CurrentStage.ID)
	assert.Equal(t, 1, progress.CurrentOrdinal)
	assert.Empty(t, progress.Instance.CompletedStageIDs)
}

func TestGetProgressDerivesPercent(t *testing.T) {
	svc, _, _ := newTransitionFixture(onboardingStages("offer", "forms", "orientation", "equipment"))
	ctx := context.Background()

	_, err := svc.Advance(ctx, w2Advance("emp-1", ""), hrManager())
	require.NoError(t, err)

	progress, err := svc.GetProgress(ctx, constants.WorkflowOnboarding, "emp-1", constants.ClassificationW2)
	require.NoError(t, err)
	assert.Equal(t, 25, progress.PercentComplete)
	assert.Equal(t, 2, progress.CurrentOrdinal)
}
