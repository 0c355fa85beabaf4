package services

import (
	"context"
	"log"
	"time"

	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
	apperrors "github.com/crewhq/backend/pkg/errors"
	"github.com/crewhq/backend/pkg/utils"
)

// HiringService manages hiring candidates. Pipeline movement itself goes
// through the transition engine; this service owns the candidate records and
// the category that selects their stage sequence.
type HiringService struct {
	candidates  ports.CandidateStore
	transitions *TransitionService
}

// NewHiringService creates a new HiringService
func NewHiringService(candidates ports.CandidateStore, transitions *TransitionService) *HiringService {
	return &HiringService{
		candidates:  candidates,
		transitions: transitions,
	}
}

// CreateCandidateInput is the candidate intake payload.
type CreateCandidateInput struct {
	Name     string
	Email    string
	Category string
}

// CreateCandidate records a candidate under one hiring category.
func (s *HiringService) CreateCandidate(ctx context.Context, input CreateCandidateInput, user *auth.UserSession) (*models.Candidate, error) {
	if !user.HasCapability(constants.CapManageHiring) {
		return nil, apperrors.NewForbiddenError("create", "candidate")
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name", "candidate name is required")
	}
	if !constants.IsValidHiringCategory(input.Category) {
		return nil, apperrors.NewValidationError("category", "unknown hiring category: "+input.Category)
	}

	candidate := &models.Candidate{
		ID:          utils.GenerateID(),
		Name:        input.Name,
		Email:       input.Email,
		Category:    input.Category,
		CreatedDate: time.Now().UTC(),
	}

	if err := s.candidates.Insert(ctx, candidate); err != nil {
		return nil, apperrors.NewInternalError("failed to create candidate", err)
	}
	log.Printf("🧑 Candidate created: %s (%s) in %s pipeline", candidate.ID, candidate.Name, candidate.Category)
	return candidate, nil
}

// ListCandidates returns candidates newest first.
func (s *HiringService) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	candidates, err := s.candidates.ListAll(ctx, 200)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list candidates", err)
	}
	return candidates, nil
}

// CandidateProgress resolves the candidate and returns their pipeline
// position, using the category recorded at intake.
func (s *HiringService) CandidateProgress(ctx context.Context, candidateID string) (*Progress, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load candidate", err)
	}
	if candidate == nil {
		return nil, apperrors.NewNotFoundError("candidate", candidateID)
	}
	return s.transitions.GetProgress(ctx, constants.WorkflowHiringPipeline, candidate.ID, candidate.Category)
}

// AdvanceCandidate moves the candidate one stage forward in their category's
// pipeline.
func (s *HiringService) AdvanceCandidate(ctx context.Context, candidateID, targetStageID string, user *auth.UserSession) (*models.WorkflowInstance, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load candidate", err)
	}
	if candidate == nil {
		return nil, apperrors.NewNotFoundError("candidate", candidateID)
	}

	return s.transitions.Advance(ctx, AdvanceRequest{
		WorkflowType:  constants.WorkflowHiringPipeline,
		SubjectID:     candidate.ID,
		Subtype:       candidate.Category,
		TargetStageID: targetStageID,
	}, user)
}
