package services

import (
	"context"
	"log"
	"time"

	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
	apperrors "github.com/crewhq/backend/pkg/errors"
	"github.com/crewhq/backend/pkg/utils"
)

const ptoDateLayout = "2006-01-02"

// ApprovalService is the two-party request/decision workflow for time off:
// a requester proposes a date range, an authorized decider approves or
// denies. Decided requests are immutable.
type ApprovalService struct {
	approvals ports.ApprovalStore
	audit     ports.AuditStore
	events    ports.EventPublisher
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(approvals ports.ApprovalStore, audit ports.AuditStore, bus ports.EventPublisher) *ApprovalService {
	return &ApprovalService{
		approvals: approvals,
		audit:     audit,
		events:    bus,
	}
}

// SubmitInput is the PTO submission payload. Dates use YYYY-MM-DD.
type SubmitInput struct {
	StartDate string
	EndDate   string
	Reason    string
}

// Submit creates a pending PTO request. Duration is whole days inclusive of
// both endpoints. The requester's balance is informational only and never
// enforced here.
func (s *ApprovalService) Submit(ctx context.Context, input SubmitInput, user *auth.UserSession) (*models.ApprovalRequest, error) {
	if !user.HasCapability(constants.CapSubmitTimeOff) {
		return nil, apperrors.NewForbiddenError("submit", "time off request")
	}

	start, err := time.Parse(ptoDateLayout, input.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("start_date", "expected YYYY-MM-DD")
	}
	end, err := time.Parse(ptoDateLayout, input.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("end_date", "expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, apperrors.NewInvalidRangeError(input.StartDate, input.EndDate)
	}

	now := time.Now().UTC()
	request := &models.ApprovalRequest{
		ID:           utils.GenerateID(),
		RequesterID:  user.ID,
		StartDate:    start,
		EndDate:      end,
		DurationDays: int(end.Sub(start).Hours()/24) + 1,
		Reason:       input.Reason,
		Status:       constants.ApprovalStatusPending,
		CreatedDate:  now,
	}

	if err := s.approvals.Insert(ctx, request); err != nil {
		return nil, apperrors.NewInternalError("failed to create time off request", err)
	}

	s.recordAudit(ctx, request.ID, "", constants.ApprovalStatusPending, user.ID, now)
	log.Printf("📅 PTO request submitted: %s by %s (%d days)", request.ID, user.ID, request.DurationDays)
	return request, nil
}

// Decide approves or denies a pending request. The decider must hold the
// decision capability and may never decide their own request.
func (s *ApprovalService) Decide(ctx context.Context, requestID, outcome string, user *auth.UserSession) (*models.ApprovalRequest, error) {
	if outcome != constants.ApprovalStatusApproved && outcome != constants.ApprovalStatusDenied {
		return nil, apperrors.NewValidationError("status", "outcome must be approved or denied")
	}

	request, err := s.approvals.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load time off request", err)
	}
	if request == nil {
		return nil, apperrors.NewNotFoundError("time off request", requestID)
	}
	if request.IsDecided() {
		return nil, apperrors.NewAlreadyDecidedError(requestID, request.Status)
	}
	if !user.HasCapability(constants.CapDecideTimeOff) {
		return nil, apperrors.NewForbiddenError("decide", "time off request")
	}
	if request.RequesterID == user.ID {
		// No self-approval, regardless of role
		return nil, apperrors.NewForbiddenError("self-approve", "time off request")
	}

	now := time.Now().UTC()
	decided, err := s.approvals.Decide(ctx, requestID, outcome, user.ID, now)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to decide time off request", err)
	}
	if !decided {
		// A concurrent decider won the status guard
		return nil, apperrors.NewAlreadyDecidedError(requestID, request.Status)
	}

	request.Status = outcome
	request.DeciderID = &user.ID
	request.DecidedDate = &now

	s.recordAudit(ctx, request.ID, constants.ApprovalStatusPending, outcome, user.ID, now)
	s.events.PublishAsync(events.ApprovalDecided, ApprovalEventPayload{Request: request})
	log.Printf("✅ PTO request %s: %s by %s", outcome, requestID, user.ID)
	return request, nil
}

// List returns requests visible to the user: deciders see everything, other
// roles see their own submissions.
func (s *ApprovalService) List(ctx context.Context, user *auth.UserSession) ([]models.ApprovalRequest, error) {
	if user.HasCapability(constants.CapDecideTimeOff) {
		return s.approvals.ListAll(ctx, 100)
	}
	return s.approvals.ListByRequester(ctx, user.ID, 100)
}

func (s *ApprovalService) recordAudit(ctx context.Context, requestID, previous, next, actorID string, at time.Time) {
	event := &models.AuditEvent{
		ID:            utils.GenerateID(),
		WorkflowType:  constants.WorkflowTimeOff,
		SubjectID:     requestID,
		PreviousStage: previous,
		NewStage:      next,
		ActorID:       actorID,
		OccurredAt:    at,
	}
	if err := s.audit.Insert(ctx, event); err != nil {
		log.Printf("⚠️ Failed to write PTO audit event: %v", err)
	}
}
