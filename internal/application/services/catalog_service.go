package services

import (
	"context"
	"time"

	"github.com/crewhq/backend/internal/domain"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
	apperrors "github.com/crewhq/backend/pkg/errors"
	"github.com/crewhq/backend/pkg/utils"
)

// CatalogService owns the stage catalog: the ordered stage sets per workflow
// type and subject subtype.
type CatalogService struct {
	stages ports.StageStore
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(stages ports.StageStore) *CatalogService {
	return &CatalogService{stages: stages}
}

// CreateStageInput is the authoring input for a stage definition.
type CreateStageInput struct {
	WorkflowType string
	Subtype      string
	Name         string
	Ordinal      int
}

// CreateStage validates and persists a stage definition. Ordinal ties within
// one (type, subtype) scope are rejected here, never resolved at advance time.
func (s *CatalogService) CreateStage(ctx context.Context, input CreateStageInput, user *auth.UserSession) (*models.StageDefinition, error) {
	if !user.HasCapability(constants.CapAuthorStages) {
		return nil, apperrors.NewForbiddenError("create", "stage definition")
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name", "stage name is required")
	}
	if input.Ordinal < 1 {
		return nil, apperrors.NewInvalidOrdinalError(input.Ordinal)
	}
	if err := validateScope(input.WorkflowType, input.Subtype); err != nil {
		return nil, err
	}

	taken, err := s.stages.OrdinalTaken(ctx, input.WorkflowType, input.Subtype, input.Ordinal)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check stage ordinal", err)
	}
	if taken {
		return nil, apperrors.NewDuplicateOrdinalError(input.WorkflowType, input.Subtype, input.Ordinal)
	}

	stage := &models.StageDefinition{
		ID:           utils.GenerateID(),
		WorkflowType: input.WorkflowType,
		Subtype:      input.Subtype,
		Name:         input.Name,
		Ordinal:      input.Ordinal,
		IsActive:     true,
		CreatedDate:  time.Now().UTC(),
	}

	if err := s.stages.Insert(ctx, stage); err != nil {
		return nil, apperrors.NewInternalError("failed to create stage", err)
	}
	return stage, nil
}

// DeactivateStage soft-disables a stage so historical instances referencing
// it remain resolvable. No deletion.
func (s *CatalogService) DeactivateStage(ctx context.Context, stageID string, user *auth.UserSession) error {
	if !user.HasCapability(constants.CapAuthorStages) {
		return apperrors.NewForbiddenError("deactivate", "stage definition")
	}
	if err := s.stages.Deactivate(ctx, stageID); err != nil {
		return apperrors.NewInternalError("failed to deactivate stage", err)
	}
	return nil
}

// SequenceFor resolves the ordered stage sequence applicable to one subject.
func (s *CatalogService) SequenceFor(ctx context.Context, workflowType, subtype string) (domain.StageSequence, error) {
	stages, err := s.stages.StagesFor(ctx, workflowType, subtype)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load stage catalog", err)
	}
	return domain.NewStageSequence(stages), nil
}

// StagesFor returns the stage list for API consumption.
func (s *CatalogService) StagesFor(ctx context.Context, workflowType, subtype string) ([]models.StageDefinition, error) {
	seq, err := s.SequenceFor(ctx, workflowType, subtype)
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// HiringFlows groups the hiring pipeline's stage sequences by category.
func (s *CatalogService) HiringFlows(ctx context.Context) (map[string][]models.StageDefinition, error) {
	flows := make(map[string][]models.StageDefinition, len(constants.ValidHiringCategories))
	for _, category := range constants.ValidHiringCategories {
		seq, err := s.SequenceFor(ctx, constants.WorkflowHiringPipeline, category)
		if err != nil {
			return nil, err
		}
		flows[category] = seq
	}
	return flows, nil
}

// validateScope checks the (workflow type, subtype) pairing.
func validateScope(workflowType, subtype string) error {
	switch workflowType {
	case constants.WorkflowOnboarding:
		if !constants.IsValidClassification(subtype) {
			return apperrors.NewValidationError("subtype", "unknown employment classification: "+subtype)
		}
	case constants.WorkflowHiringPipeline:
		if subtype != constants.SubtypeAll && !constants.IsValidHiringCategory(subtype) {
			return apperrors.NewValidationError("subtype", "unknown hiring category: "+subtype)
		}
	case constants.WorkflowTimeOff, constants.WorkflowCompliance, constants.WorkflowLeadRouting:
		if subtype != constants.SubtypeAll {
			return apperrors.NewValidationError("subtype", "workflow type does not support subtypes")
		}
	default:
		return apperrors.NewValidationError("workflow_type", "unknown workflow type: "+workflowType)
	}
	return nil
}
