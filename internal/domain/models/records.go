package models

import (
	"time"

	"github.com/crewhq/backend/pkg/constants"
)

// ApprovalRequest is the TimeOffApproval specialization: a two-party
// request/decision record. Once decided it is immutable.
type ApprovalRequest struct {
	ID           string     `json:"id"`
	RequesterID  string     `json:"requester_id"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	DurationDays int        `json:"duration_days"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	DeciderID    *string    `json:"decider_id,omitempty"`
	DecidedDate  *time.Time `json:"decided_date,omitempty"`
	CreatedDate  time.Time  `json:"created_date"`
}

// IsDecided reports whether the request has left the pending state.
func (r *ApprovalRequest) IsDecided() bool {
	return r.Status != constants.ApprovalStatusPending
}

// ComplianceObligation is the deadline-tracked specialization (e.g. a
// workers'-comp filing window). Overdue is derived, never stored.
type ComplianceObligation struct {
	ID            string     `json:"id"`
	SubjectID     string     `json:"subject_id"`
	TriggerDate   time.Time  `json:"trigger_date"`
	Deadline      time.Time  `json:"deadline"`
	SubmittedDate *time.Time `json:"submitted_date,omitempty"`
	SubmittedByID *string    `json:"submitted_by_id,omitempty"`
	Status        string     `json:"status"`
	CreatedDate   time.Time  `json:"created_date"`
}

// DerivedStatus recomputes the obligation status as a pure function of
// (now, submission timestamp, deadline). Overdue if and only if nothing has
// been submitted and the deadline has passed.
func (o *ComplianceObligation) DerivedStatus(now time.Time) string {
	if o.SubmittedDate == nil && now.After(o.Deadline) {
		return constants.ObligationStatusOverdue
	}
	return o.Status
}

// IsOverdue reports whether the obligation is overdue at the given time.
func (o *ComplianceObligation) IsOverdue(now time.Time) bool {
	return o.DerivedStatus(now) == constants.ObligationStatusOverdue
}

// LeadRecord is the LeadRouting subject: an inbound lead moving through
// new -> assigned -> contacted -> {converted, lost}. Priority is
// informational and never gates transitions.
type LeadRecord struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone,omitempty"`
	Source           string     `json:"source,omitempty"`
	Status           string     `json:"status"`
	AssignedRepID    *string    `json:"assigned_rep_id,omitempty"`
	Priority         string     `json:"priority,omitempty"`
	CreatedDate      time.Time  `json:"created_date"`
	LastModifiedDate *time.Time `json:"last_modified_date,omitempty"`
}

// IsTerminal reports whether the lead can no longer change status.
func (l *LeadRecord) IsTerminal() bool {
	return l.Status == constants.LeadStatusConverted || l.Status == constants.LeadStatusLost
}

// Candidate is the HiringPipeline subject. The candidate's hiring category
// selects which stage sequence applies.
type Candidate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Category    string    `json:"category"`
	CreatedDate time.Time `json:"created_date"`
}

// RoutingRule auto-assigns inbound leads: the first active rule (by priority,
// then creation order) whose condition matches the lead's fields wins.
type RoutingRule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Condition   string    `json:"condition"`
	TargetRepID string    `json:"target_rep_id"`
	Priority    int       `json:"priority"`
	IsActive    bool      `json:"is_active"`
	CreatedDate time.Time `json:"created_date"`
}

// AuditEvent records one committed transition for downstream display and
// history. Written in the same transaction as the transition itself.
type AuditEvent struct {
	ID            string    `json:"id"`
	WorkflowType  string    `json:"workflow_type"`
	SubjectID     string    `json:"subject_id"`
	PreviousStage string    `json:"previous_stage,omitempty"`
	NewStage      string    `json:"new_stage"`
	ActorID       string    `json:"actor_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notification is a user-facing message produced from committed transitions
// and overdue obligations.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	IsRead      bool      `json:"is_read"`
	CreatedDate time.Time `json:"created_date"`
}
