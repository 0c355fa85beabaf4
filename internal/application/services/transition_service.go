package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/crewhq/backend/internal/domain"
	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
	apperrors "github.com/crewhq/backend/pkg/errors"
)

// TransitionService validates and applies stage transitions against the
// catalog and the current instance: ordering, role permissions, terminal
// guard, and the optimistic commit. Every "advance a thing one step" call in
// the product funnels through here.
type TransitionService struct {
	catalog   *CatalogService
	instances ports.InstanceStore
	audit     ports.AuditStore
	events    ports.EventPublisher
}

// NewTransitionService creates a new TransitionService
func NewTransitionService(catalog *CatalogService, instances ports.InstanceStore, audit ports.AuditStore, bus ports.EventPublisher) *TransitionService {
	return &TransitionService{
		catalog:   catalog,
		instances: instances,
		audit:     audit,
		events:    bus,
	}
}

// AdvanceRequest identifies the transition to apply. TargetStageID is
// optional: empty means "advance one step"; when set it must equal the next
// stage in sequence.
type AdvanceRequest struct {
	WorkflowType  string
	SubjectID     string
	Subtype       string
	TargetStageID string
}

// Progress is the read model of one subject's position in its workflow.
// CurrentOrdinal and PercentComplete are derived on read, never stored.
type Progress struct {
	Instance        *models.WorkflowInstance `json:"instance"`
	Stages          []models.StageDefinition `json:"stages"`
	CurrentStage    *models.StageDefinition  `json:"current_stage,omitempty"`
	CurrentOrdinal  int                      `json:"current_ordinal"`
	PercentComplete int                      `json:"percent_complete"`
}

// Advance applies one stage transition. Version conflicts are retried with a
// bounded reload-and-retry loop; the final conflict surfaces to the caller.
func (s *TransitionService) Advance(ctx context.Context, req AdvanceRequest, user *auth.UserSession) (*models.WorkflowInstance, error) {
	capability := constants.CapabilityForWorkflow(req.WorkflowType)
	if capability == "" {
		return nil, apperrors.NewValidationError("workflow_type", "unknown workflow type: "+req.WorkflowType)
	}
	if !user.HasCapability(capability) {
		return nil, apperrors.NewForbiddenError("advance", req.WorkflowType)
	}

	var lastErr error
	for attempt := 0; attempt < constants.ConflictRetryAttempts; attempt++ {
		instance, err := s.advanceOnce(ctx, req, user)
		if err == nil {
			return instance, nil
		}
		if !apperrors.IsConflict(err) {
			return nil, err
		}
		lastErr = err
		log.Printf("⚠️ Advance conflict on %s/%s (attempt %d), reloading", req.WorkflowType, req.SubjectID, attempt+1)
	}
	return nil, lastErr
}

// advanceOnce runs one load-validate-commit cycle. Retry re-reads the
// instance and recomputes the next stage, so a repeated call converges to
// success or AlreadyComplete instead of double-applying.
func (s *TransitionService) advanceOnce(ctx context.Context, req AdvanceRequest, user *auth.UserSession) (*models.WorkflowInstance, error) {
	sequence, err := s.catalog.SequenceFor(ctx, req.WorkflowType, req.Subtype)
	if err != nil {
		return nil, err
	}
	if len(sequence) == 0 {
		return nil, apperrors.NewNotFoundError("stage catalog for "+req.WorkflowType, req.Subtype)
	}

	instance, err := s.instances.GetOrCreate(ctx, req.WorkflowType, req.SubjectID, req.Subtype)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load workflow instance", err)
	}

	if instance.Status == constants.InstanceStatusComplete {
		return nil, apperrors.NewAlreadyCompleteError(req.WorkflowType, req.SubjectID)
	}

	next := sequence.Next(instance.CompletedStageIDs)
	if next == nil {
		// Every stage is complete but the terminal marker was never written
		// (e.g. stages were deactivated after the fact). Treat as terminal.
		return nil, apperrors.NewAlreadyCompleteError(req.WorkflowType, req.SubjectID)
	}

	if req.TargetStageID != "" && req.TargetStageID != next.ID {
		return nil, apperrors.NewOutOfOrderError(req.WorkflowType, req.SubjectID, req.TargetStageID, next.ID)
	}

	previous := ""
	if last := sequence.LastCompleted(instance.CompletedStageIDs); last != nil {
		previous = last.ID
	}

	now := time.Now().UTC()
	instance.CompletedStageIDs = append(instance.CompletedStageIDs, next.ID)
	instance.LastTransitionDate = &now
	instance.LastActorID = &user.ID
	if sequence.Next(instance.CompletedStageIDs) == nil {
		instance.Status = constants.InstanceStatusComplete
	}

	event := &models.AuditEvent{
		WorkflowType:  req.WorkflowType,
		SubjectID:     req.SubjectID,
		PreviousStage: previous,
		NewStage:      next.ID,
		ActorID:       user.ID,
		OccurredAt:    now,
	}

	if err := s.instances.CommitTransition(ctx, instance, event); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			return nil, apperrors.NewConflictError("workflow instance", instance.ID)
		}
		return nil, apperrors.NewInternalError("failed to commit transition", err)
	}

	log.Printf("✅ %s advanced: subject=%s stage=%s by %s", req.WorkflowType, req.SubjectID, next.Name, user.ID)
	s.events.PublishAsync(events.WorkflowAdvanced, TransitionEventPayload{Instance: instance, Event: event})

	return instance, nil
}

// GetProgress returns the subject's position without creating an instance:
// re-reading state is always safe, terminal or not.
func (s *TransitionService) GetProgress(ctx context.Context, workflowType, subjectID, subtype string) (*Progress, error) {
	sequence, err := s.catalog.SequenceFor(ctx, workflowType, subtype)
	if err != nil {
		return nil, err
	}

	instance, err := s.instances.Load(ctx, workflowType, subjectID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load workflow instance", err)
	}
	if instance == nil {
		// No progress yet: a zero-value view, not an error
		instance = &models.WorkflowInstance{
			WorkflowType:      workflowType,
			SubjectID:         subjectID,
			Subtype:           subtype,
			CompletedStageIDs: []string{},
			Status:            constants.InstanceStatusInProgress,
		}
	}

	return buildProgress(instance, sequence), nil
}

// History returns a subject's committed transition trail, newest first.
func (s *TransitionService) History(ctx context.Context, workflowType, subjectID string) ([]models.AuditEvent, error) {
	trail, err := s.audit.ListBySubject(ctx, workflowType, subjectID, 100)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load transition history", err)
	}
	return trail, nil
}

func buildProgress(instance *models.WorkflowInstance, sequence domain.StageSequence) *Progress {
	progress := &Progress{
		Instance:        instance,
		Stages:          sequence,
		PercentComplete: instance.PercentComplete(len(sequence)),
	}
	if current := sequence.Next(instance.CompletedStageIDs); current != nil {
		progress.CurrentStage = current
		progress.CurrentOrdinal = current.Ordinal
	}
	return progress
}
