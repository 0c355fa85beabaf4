package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/auth"
	apperrors "github.com/crewhq/backend/pkg/errors"
	"github.com/crewhq/backend/pkg/utils"
)

// NotificationService turns committed workflow events into user-facing
// notifications and serves the per-user inbox.
type NotificationService struct {
	notifications ports.NotificationStore
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications ports.NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the user's notifications newest first.
func (s *NotificationService) List(ctx context.Context, user *auth.UserSession) ([]models.Notification, error) {
	items, err := s.notifications.ListForUser(ctx, user.ID, 100)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list notifications", err)
	}
	return items, nil
}

// MarkRead marks one of the user's notifications as read. Scoped to the
// recipient so users cannot touch each other's inboxes.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string, user *auth.UserSession) error {
	if err := s.notifications.MarkRead(ctx, notificationID, user.ID); err != nil {
		return apperrors.NewInternalError("failed to mark notification read", err)
	}
	return nil
}

// RegisterHandlers subscribes the notification fan-out to the event bus.
// Handlers run after commit, so a notification failure never blocks or rolls
// back the transition that caused it.
func (s *NotificationService) RegisterHandlers(bus *EventBus) {
	bus.Subscribe(events.WorkflowAdvanced, s.onWorkflowAdvanced)
	bus.Subscribe(events.ApprovalDecided, s.onApprovalDecided)
	bus.Subscribe(events.ObligationOverdue, s.onObligationOverdue)
	bus.Subscribe(events.LeadAssigned, s.onLeadAssigned)
}

func (s *NotificationService) onWorkflowAdvanced(ctx context.Context, payload interface{}) error {
	p, ok := payload.(TransitionEventPayload)
	if !ok || p.Instance == nil || p.Event == nil {
		return fmt.Errorf("unexpected payload type %T for workflow advance", payload)
	}

	// The subject is an employee or candidate id; notify them directly.
	return s.deliver(ctx, p.Instance.SubjectID,
		"Workflow progress",
		fmt.Sprintf("Your %s moved to stage %s", p.Instance.WorkflowType, p.Event.NewStage))
}

func (s *NotificationService) onApprovalDecided(ctx context.Context, payload interface{}) error {
	p, ok := payload.(ApprovalEventPayload)
	if !ok || p.Request == nil {
		return fmt.Errorf("unexpected payload type %T for approval decision", payload)
	}

	return s.deliver(ctx, p.Request.RequesterID,
		"Time off request decided",
		fmt.Sprintf("Your time off request (%s to %s) was %s",
			p.Request.StartDate.Format("2006-01-02"),
			p.Request.EndDate.Format("2006-01-02"),
			p.Request.Status))
}

func (s *NotificationService) onObligationOverdue(ctx context.Context, payload interface{}) error {
	p, ok := payload.(ObligationEventPayload)
	if !ok || p.Obligation == nil {
		return fmt.Errorf("unexpected payload type %T for overdue obligation", payload)
	}

	return s.deliver(ctx, p.Obligation.SubjectID,
		"Compliance filing overdue",
		fmt.Sprintf("Filing for obligation %s was due %s and has not been submitted",
			p.Obligation.ID, p.Obligation.Deadline.Format("2006-01-02")))
}

func (s *NotificationService) onLeadAssigned(ctx context.Context, payload interface{}) error {
	p, ok := payload.(LeadEventPayload)
	if !ok || p.Lead == nil || p.Lead.AssignedRepID == nil {
		return fmt.Errorf("unexpected payload type %T for lead assignment", payload)
	}

	return s.deliver(ctx, *p.Lead.AssignedRepID,
		"New lead assigned",
		fmt.Sprintf("Lead %s (%s) was assigned to you", p.Lead.Name, p.Lead.Source))
}

func (s *NotificationService) deliver(ctx context.Context, recipientID, title, body string) error {
	notification := &models.Notification{
		ID:          utils.GenerateID(),
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
		CreatedDate: time.Now().UTC(),
	}
	if err := s.notifications.Insert(ctx, notification); err != nil {
		log.Printf("⚠️ Failed to deliver notification to %s: %v", recipientID, err)
		return err
	}
	return nil
}
