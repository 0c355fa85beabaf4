package services

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
	apperrors "github.com/crewhq/backend/pkg/errors"
	"github.com/crewhq/backend/pkg/utils"
)

// ComplianceService tracks deadline-driven obligations (workers'-comp filing
// windows). Overdue is a pure function of (now, submission, deadline),
// recomputed on every read; the sweep exists only for proactive notification.
type ComplianceService struct {
	obligations ports.ObligationStore
	audit       ports.AuditStore
	events      ports.EventPublisher
	windowDays  int

	notifyMu sync.Mutex
	// notified dedups sweep alerts so one obligation fires once per process
	// lifetime, not once per sweep tick.
	notified map[string]bool
}

// NewComplianceService creates a new ComplianceService. The filing window is
// read from COMPLIANCE_WINDOW_DAYS, in calendar days, defaulting to 5.
func NewComplianceService(obligations ports.ObligationStore, audit ports.AuditStore, bus ports.EventPublisher) *ComplianceService {
	windowDays := constants.DefaultComplianceWindowDays
	if raw := os.Getenv("COMPLIANCE_WINDOW_DAYS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			windowDays = parsed
		} else {
			log.Printf("⚠️ Ignoring invalid COMPLIANCE_WINDOW_DAYS=%q, using %d", raw, constants.DefaultComplianceWindowDays)
		}
	}

	return &ComplianceService{
		obligations: obligations,
		audit:       audit,
		events:      bus,
		windowDays:  windowDays,
		notified:    make(map[string]bool),
	}
}

// WindowDays exposes the configured filing window.
func (s *ComplianceService) WindowDays() int {
	return s.windowDays
}

// Open creates an obligation whose deadline is trigger + window. A zero
// trigger means "now".
func (s *ComplianceService) Open(ctx context.Context, subjectID string, trigger time.Time, user *auth.UserSession) (*models.ComplianceObligation, error) {
	if !user.HasCapability(constants.CapFileCompliance) {
		return nil, apperrors.NewForbiddenError("open", "compliance obligation")
	}
	if subjectID == "" {
		return nil, apperrors.NewValidationError("employee_id", "subject employee id is required")
	}

	now := time.Now().UTC()
	if trigger.IsZero() {
		trigger = now
	}

	obligation := &models.ComplianceObligation{
		ID:          utils.GenerateID(),
		SubjectID:   subjectID,
		TriggerDate: trigger,
		Deadline:    trigger.AddDate(0, 0, s.windowDays),
		Status:      constants.ObligationStatusPending,
		CreatedDate: now,
	}

	if err := s.obligations.Insert(ctx, obligation); err != nil {
		return nil, apperrors.NewInternalError("failed to open obligation", err)
	}

	s.recordAudit(ctx, obligation.ID, "", constants.ObligationStatusPending, user.ID, now)
	log.Printf("📋 Obligation opened: %s for %s, due %s", obligation.ID, subjectID, obligation.Deadline.Format(time.RFC3339))
	return obligation, nil
}

// Submit marks the filing as done. A second submission is rejected; the
// SQL-level null guard closes the race between two submitters.
func (s *ComplianceService) Submit(ctx context.Context, obligationID string, user *auth.UserSession) (*models.ComplianceObligation, error) {
	if !user.HasCapability(constants.CapFileCompliance) {
		return nil, apperrors.NewForbiddenError("submit", "compliance obligation")
	}

	obligation, err := s.obligations.GetByID(ctx, obligationID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load obligation", err)
	}
	if obligation == nil {
		return nil, apperrors.NewNotFoundError("compliance obligation", obligationID)
	}
	if obligation.SubmittedDate != nil {
		return nil, apperrors.NewAlreadySubmittedError(obligationID)
	}

	now := time.Now().UTC()
	submitted, err := s.obligations.MarkSubmitted(ctx, obligationID, user.ID, now)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to submit obligation", err)
	}
	if !submitted {
		return nil, apperrors.NewAlreadySubmittedError(obligationID)
	}

	obligation.SubmittedDate = &now
	obligation.SubmittedByID = &user.ID
	obligation.Status = constants.ObligationStatusSubmitted

	s.recordAudit(ctx, obligationID, constants.ObligationStatusPending, constants.ObligationStatusSubmitted, user.ID, now)
	log.Printf("✅ Obligation submitted: %s by %s", obligationID, user.ID)
	return obligation, nil
}

// Review closes out a submitted filing as approved or rejected. Only
// submitted obligations are reviewable; a review is final.
func (s *ComplianceService) Review(ctx context.Context, obligationID, outcome string, user *auth.UserSession) (*models.ComplianceObligation, error) {
	if !user.HasCapability(constants.CapFileCompliance) {
		return nil, apperrors.NewForbiddenError("review", "compliance obligation")
	}
	if outcome != constants.ObligationStatusApproved && outcome != constants.ObligationStatusRejected {
		return nil, apperrors.NewValidationError("status", "outcome must be approved or rejected")
	}

	obligation, err := s.obligations.GetByID(ctx, obligationID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load obligation", err)
	}
	if obligation == nil {
		return nil, apperrors.NewNotFoundError("compliance obligation", obligationID)
	}
	if obligation.SubmittedDate == nil {
		return nil, apperrors.NewValidationError("status", "obligation has not been submitted yet")
	}
	if obligation.Status != constants.ObligationStatusSubmitted {
		return nil, apperrors.NewAlreadyDecidedError(obligationID, obligation.Status)
	}

	reviewed, err := s.obligations.SetStatusGuarded(ctx, obligationID, constants.ObligationStatusSubmitted, outcome)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to review obligation", err)
	}
	if !reviewed {
		return nil, apperrors.NewAlreadyDecidedError(obligationID, outcome)
	}

	now := time.Now().UTC()
	obligation.Status = outcome

	s.recordAudit(ctx, obligationID, constants.ObligationStatusSubmitted, outcome, user.ID, now)
	log.Printf("✅ Obligation reviewed: %s %s by %s", obligationID, outcome, user.ID)
	return obligation, nil
}

// StatusOf recomputes the derived status at the given time.
func (s *ComplianceService) StatusOf(ctx context.Context, obligationID string, now time.Time) (string, error) {
	obligation, err := s.obligations.GetByID(ctx, obligationID)
	if err != nil {
		return "", apperrors.NewInternalError("failed to load obligation", err)
	}
	if obligation == nil {
		return "", apperrors.NewNotFoundError("compliance obligation", obligationID)
	}
	return obligation.DerivedStatus(now), nil
}

// List returns obligations with their status derived at read time.
func (s *ComplianceService) List(ctx context.Context, now time.Time) ([]models.ComplianceObligation, error) {
	obligations, err := s.obligations.ListAll(ctx, 200)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list obligations", err)
	}
	for i := range obligations {
		obligations[i].Status = obligations[i].DerivedStatus(now)
	}
	return obligations, nil
}

// SweepOverdue publishes an event per unsubmitted obligation past its
// deadline. Correctness never depends on this running; it only drives
// proactive notification.
func (s *ComplianceService) SweepOverdue(ctx context.Context, now time.Time) ([]models.ComplianceObligation, error) {
	overdue, err := s.obligations.ListUnsubmittedDue(ctx, now)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to sweep obligations", err)
	}

	for i := range overdue {
		overdue[i].Status = constants.ObligationStatusOverdue
		if s.firstNotice(overdue[i].ID) {
			s.events.PublishAsync(events.ObligationOverdue, ObligationEventPayload{Obligation: &overdue[i]})
		}
	}
	if len(overdue) > 0 {
		log.Printf("⏰ Overdue sweep found %d unsubmitted obligations", len(overdue))
	}
	return overdue, nil
}

// firstNotice returns true the first time it sees an obligation id.
func (s *ComplianceService) firstNotice(obligationID string) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if s.notified[obligationID] {
		return false
	}
	s.notified[obligationID] = true
	return true
}

func (s *ComplianceService) recordAudit(ctx context.Context, obligationID, previous, next, actorID string, at time.Time) {
	event := &models.AuditEvent{
		ID:            utils.GenerateID(),
		WorkflowType:  constants.WorkflowCompliance,
		SubjectID:     obligationID,
		PreviousStage: previous,
		NewStage:      next,
		ActorID:       actorID,
		OccurredAt:    at,
	}
	if err := s.audit.Insert(ctx, event); err != nil {
		log.Printf("⚠️ Failed to write compliance audit event: %v", err)
	}
}
