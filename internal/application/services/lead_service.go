package services

import (
	"context"
	"log"
	"time"

	"github.com/crewhq/backend/internal/domain"
	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
	apperrors "github.com/crewhq/backend/pkg/errors"
	"github.com/crewhq/backend/pkg/expression"
	"github.com/crewhq/backend/pkg/utils"
)

// LeadService manages the lead lifecycle: intake with rule-driven
// auto-assignment, manual assignment, and status transitions along the
// lead state machine. Terminal leads are immutable.
type LeadService struct {
	leads        ports.LeadStore
	rules        ports.RuleStore
	audit        ports.AuditStore
	events       ports.EventPublisher
	stateMachine *domain.LeadStateMachine
	expressions  *expression.Engine
}

// NewLeadService creates a new LeadService
func NewLeadService(leads ports.LeadStore, rules ports.RuleStore, audit ports.AuditStore, bus ports.EventPublisher, engine *expression.Engine) *LeadService {
	return &LeadService{
		leads:        leads,
		rules:        rules,
		audit:        audit,
		events:       bus,
		stateMachine: domain.NewLeadStateMachine(),
		expressions:  engine,
	}
}

// IntakeInput is the inbound lead payload.
type IntakeInput struct {
	Name     string
	Phone    string
	Source   string
	Priority string
}

// Intake records a new lead and runs it through the routing rules. A matching
// rule moves the lead straight to assigned; no match leaves it new for manual
// triage. A rule evaluation error skips that rule, never fails the intake.
func (s *LeadService) Intake(ctx context.Context, input IntakeInput, user *auth.UserSession) (*models.LeadRecord, error) {
	if !user.HasCapability(constants.CapRouteLeads) {
		return nil, apperrors.NewForbiddenError("create", "lead")
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name", "lead name is required")
	}

	now := time.Now().UTC()
	lead := &models.LeadRecord{
		ID:          utils.GenerateID(),
		Name:        input.Name,
		Phone:       input.Phone,
		Source:      input.Source,
		Status:      constants.LeadStatusNew,
		Priority:    input.Priority,
		CreatedDate: now,
	}

	if err := s.leads.Insert(ctx, lead); err != nil {
		return nil, apperrors.NewInternalError("failed to create lead", err)
	}
	s.recordAudit(ctx, lead.ID, "", constants.LeadStatusNew, user.ID, now)
	log.Printf("📥 Lead created: %s (%s) from %s", lead.ID, lead.Name, lead.Source)

	if rule := s.matchRule(ctx, lead); rule != nil {
		assigned, err := s.applyAssignment(ctx, lead, rule.TargetRepID, user.ID)
		if err != nil {
			log.Printf("⚠️ Auto-assignment of lead %s via rule %s failed: %v", lead.ID, rule.Name, err)
			return lead, nil
		}
		log.Printf("🎯 Lead %s auto-assigned to %s via rule %s", lead.ID, rule.TargetRepID, rule.Name)
		return assigned, nil
	}

	return lead, nil
}

// Assign manually assigns a new lead to a rep.
func (s *LeadService) Assign(ctx context.Context, leadID, repID string, user *auth.UserSession) (*models.LeadRecord, error) {
	if !user.HasCapability(constants.CapRouteLeads) {
		return nil, apperrors.NewForbiddenError("assign", "lead")
	}
	if repID == "" {
		return nil, apperrors.NewValidationError("rep_id", "target rep id is required")
	}

	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.IsTerminal() {
		return nil, apperrors.NewAlreadyTerminalError(leadID, lead.Status)
	}
	if !s.stateMachine.CanTransition(lead.Status, constants.LeadStatusAssigned) {
		return nil, apperrors.NewOutOfOrderError(constants.WorkflowLeadRouting, leadID, constants.LeadStatusAssigned, lead.Status)
	}

	return s.applyAssignment(ctx, lead, repID, user.ID)
}

// SetStatus moves a lead along the lifecycle. Edges outside the state machine
// and any write to a terminal lead are rejected. The assigned status always
// carries a rep, so it is only reachable through Assign.
func (s *LeadService) SetStatus(ctx context.Context, leadID, status string, user *auth.UserSession) (*models.LeadRecord, error) {
	if !user.HasCapability(constants.CapRouteLeads) {
		return nil, apperrors.NewForbiddenError("update", "lead")
	}
	if status == constants.LeadStatusAssigned {
		return nil, apperrors.NewOutOfOrderError(constants.WorkflowLeadRouting, leadID, status, "")
	}

	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.IsTerminal() {
		return nil, apperrors.NewAlreadyTerminalError(leadID, lead.Status)
	}
	if _, err := s.stateMachine.Transition(lead.Status, status); err != nil {
		return nil, apperrors.NewOutOfOrderError(constants.WorkflowLeadRouting, leadID, status, lead.Status)
	}
	if lead.Status == constants.LeadStatusAssigned && lead.AssignedRepID == nil {
		// A lead may not progress past assigned until a rep exists
		return nil, apperrors.NewOutOfOrderError(constants.WorkflowLeadRouting, leadID, status, constants.LeadStatusAssigned)
	}

	now := time.Now().UTC()
	updated, err := s.leads.UpdateGuarded(ctx, leadID, lead.Status, status, nil, now)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update lead", err)
	}
	if !updated {
		// A concurrent writer changed the status under us
		return nil, apperrors.NewConflictError("lead", leadID)
	}

	s.recordAudit(ctx, leadID, lead.Status, status, user.ID, now)
	log.Printf("✅ Lead %s: %s -> %s by %s", leadID, lead.Status, status, user.ID)

	lead.Status = status
	lead.LastModifiedDate = &now
	return lead, nil
}

// List returns leads newest first.
func (s *LeadService) List(ctx context.Context) ([]models.LeadRecord, error) {
	leads, err := s.leads.ListAll(ctx, 200)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list leads", err)
	}
	return leads, nil
}

// Get returns one lead.
func (s *LeadService) Get(ctx context.Context, leadID string) (*models.LeadRecord, error) {
	return s.loadLead(ctx, leadID)
}

// CreateRuleInput is the routing rule authoring payload.
type CreateRuleInput struct {
	Name        string
	Condition   string
	TargetRepID string
	Priority    int
}

// CreateRule validates and persists a routing rule. The condition is compiled
// up front so a broken expression never reaches intake.
func (s *LeadService) CreateRule(ctx context.Context, input CreateRuleInput, user *auth.UserSession) (*models.RoutingRule, error) {
	if !user.HasCapability(constants.CapRouteLeads) {
		return nil, apperrors.NewForbiddenError("create", "routing rule")
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name", "rule name is required")
	}
	if input.TargetRepID == "" {
		return nil, apperrors.NewValidationError("target_rep_id", "target rep id is required")
	}
	if err := s.expressions.Validate(input.Condition); err != nil {
		return nil, apperrors.NewValidationError("condition", err.Error())
	}

	rule := &models.RoutingRule{
		ID:          utils.GenerateID(),
		Name:        input.Name,
		Condition:   input.Condition,
		TargetRepID: input.TargetRepID,
		Priority:    input.Priority,
		IsActive:    true,
		CreatedDate: time.Now().UTC(),
	}

	if err := s.rules.Insert(ctx, rule); err != nil {
		return nil, apperrors.NewInternalError("failed to create routing rule", err)
	}
	log.Printf("📐 Routing rule created: %s (priority %d) -> %s", rule.Name, rule.Priority, rule.TargetRepID)
	return rule, nil
}

// ListRules returns every routing rule, active or not.
func (s *LeadService) ListRules(ctx context.Context) ([]models.RoutingRule, error) {
	rules, err := s.rules.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list routing rules", err)
	}
	return rules, nil
}

// ScanEvents returns the lead slice of the transition trail, newest first.
// The dashboard renders this as the QR scan feed.
func (s *LeadService) ScanEvents(ctx context.Context) ([]models.AuditEvent, error) {
	feed, err := s.audit.ListByWorkflowType(ctx, constants.WorkflowLeadRouting, 200)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load scan feed", err)
	}
	return feed, nil
}

// History returns the lead's transition trail.
func (s *LeadService) History(ctx context.Context, leadID string) ([]models.AuditEvent, error) {
	trail, err := s.audit.ListBySubject(ctx, constants.WorkflowLeadRouting, leadID, 100)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load lead history", err)
	}
	return trail, nil
}

// matchRule evaluates active rules in priority order and returns the first
// match, or nil.
func (s *LeadService) matchRule(ctx context.Context, lead *models.LeadRecord) *models.RoutingRule {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to load routing rules: %v", err)
		return nil
	}

	env := map[string]interface{}{
		"name":     lead.Name,
		"phone":    lead.Phone,
		"source":   lead.Source,
		"priority": lead.Priority,
	}

	for i := range rules {
		matched, err := s.expressions.EvaluateCondition(rules[i].Condition, env)
		if err != nil {
			log.Printf("⚠️ Routing rule %s evaluation error: %v", rules[i].Name, err)
			continue
		}
		if matched {
			return &rules[i]
		}
	}
	return nil
}

func (s *LeadService) applyAssignment(ctx context.Context, lead *models.LeadRecord, repID, actorID string) (*models.LeadRecord, error) {
	now := time.Now().UTC()
	updated, err := s.leads.UpdateGuarded(ctx, lead.ID, lead.Status, constants.LeadStatusAssigned, &repID, now)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to assign lead", err)
	}
	if !updated {
		return nil, apperrors.NewConflictError("lead", lead.ID)
	}

	s.recordAudit(ctx, lead.ID, lead.Status, constants.LeadStatusAssigned, actorID, now)

	lead.Status = constants.LeadStatusAssigned
	lead.AssignedRepID = &repID
	lead.LastModifiedDate = &now
	s.events.PublishAsync(events.LeadAssigned, LeadEventPayload{Lead: lead})
	return lead, nil
}

func (s *LeadService) loadLead(ctx context.Context, leadID string) (*models.LeadRecord, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load lead", err)
	}
	if lead == nil {
		return nil, apperrors.NewNotFoundError("lead", leadID)
	}
	return lead, nil
}

func (s *LeadService) recordAudit(ctx context.Context, leadID, previous, next, actorID string, at time.Time) {
	event := &models.AuditEvent{
		ID:            utils.GenerateID(),
		WorkflowType:  constants.WorkflowLeadRouting,
		SubjectID:     leadID,
		PreviousStage: previous,
		NewStage:      next,
		ActorID:       actorID,
		OccurredAt:    at,
	}
	if err := s.audit.Insert(ctx, event); err != nil {
		log.Printf("⚠️ Failed to write lead audit event: %v", err)
	}
}
