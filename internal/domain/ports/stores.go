package ports

import (
	"context"
	"errors"
	"time"

	"github.com/crewhq/backend/internal/domain/models"
)

// ErrVersionConflict is returned by CommitTransition when a concurrent writer
// advanced the instance version first. Callers reload and retry.
var ErrVersionConflict = errors.New("instance version conflict")

// StageStore persists the stage catalog. Read-mostly shared configuration.
type StageStore interface {
	// StagesFor returns active stages for the scope, subtype "all" included,
	// sorted by ordinal.
	StagesFor(ctx context.Context, workflowType, subtype string) ([]models.StageDefinition, error)
	// AllStages returns every active stage of a workflow type across subtypes.
	AllStages(ctx context.Context, workflowType string) ([]models.StageDefinition, error)
	// OrdinalTaken reports whether an active stage in the scope already holds
	// the ordinal.
	OrdinalTaken(ctx context.Context, workflowType, subtype string, ordinal int) (bool, error)
	Insert(ctx context.Context, stage *models.StageDefinition) error
	Deactivate(ctx context.Context, stageID string) error
}

// InstanceStore persists workflow instances. All instance mutation flows
// through CommitTransition's compare-and-set.
type InstanceStore interface {
	// GetOrCreate is idempotent per (workflow type, subject): a racing second
	// insert converges on the existing row.
	GetOrCreate(ctx context.Context, workflowType, subjectID, subtype string) (*models.WorkflowInstance, error)
	// Load returns nil when no instance exists.
	Load(ctx context.Context, workflowType, subjectID string) (*models.WorkflowInstance, error)
	// CommitTransition applies the instance mutation and writes the audit
	// event in one transaction, guarded by a version check. Returns
	// ErrVersionConflict when the stored version no longer matches
	// instance.Version; on success instance.Version is incremented.
	CommitTransition(ctx context.Context, instance *models.WorkflowInstance, event *models.AuditEvent) error
}

// ApprovalStore persists PTO approval requests.
type ApprovalStore interface {
	Insert(ctx context.Context, req *models.ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error)
	ListAll(ctx context.Context, limit int) ([]models.ApprovalRequest, error)
	ListByRequester(ctx context.Context, requesterID string, limit int) ([]models.ApprovalRequest, error)
	// Decide flips a pending request to its outcome. The status guard runs in
	// SQL so a racing second decision affects zero rows.
	Decide(ctx context.Context, id, status, deciderID string, decidedAt time.Time) (bool, error)
}

// ObligationStore persists compliance obligations.
type ObligationStore interface {
	Insert(ctx context.Context, o *models.ComplianceObligation) error
	GetByID(ctx context.Context, id string) (*models.ComplianceObligation, error)
	ListAll(ctx context.Context, limit int) ([]models.ComplianceObligation, error)
	// MarkSubmitted sets the submission timestamp iff none is set yet.
	MarkSubmitted(ctx context.Context, id, submitterID string, submittedAt time.Time) (bool, error)
	// SetStatusGuarded moves the stored status iff it still equals fromStatus,
	// serializing concurrent reviewers.
	SetStatusGuarded(ctx context.Context, id, fromStatus, toStatus string) (bool, error)
	// ListUnsubmittedDue returns obligations with no submission whose deadline
	// precedes the given time. Feeds the proactive overdue sweep.
	ListUnsubmittedDue(ctx context.Context, before time.Time) ([]models.ComplianceObligation, error)
}

// LeadStore persists lead records.
type LeadStore interface {
	Insert(ctx context.Context, lead *models.LeadRecord) error
	GetByID(ctx context.Context, id string) (*models.LeadRecord, error)
	ListAll(ctx context.Context, limit int) ([]models.LeadRecord, error)
	// UpdateGuarded applies updates iff the stored status still equals
	// fromStatus, serializing concurrent writers on the same lead.
	UpdateGuarded(ctx context.Context, id, fromStatus string, status string, assignedRepID *string, modifiedAt time.Time) (bool, error)
}

// CandidateStore persists hiring candidates.
type CandidateStore interface {
	Insert(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, id string) (*models.Candidate, error)
	ListAll(ctx context.Context, limit int) ([]models.Candidate, error)
}

// RuleStore persists lead routing rules.
type RuleStore interface {
	Insert(ctx context.Context, r *models.RoutingRule) error
	ListActive(ctx context.Context) ([]models.RoutingRule, error)
	ListAll(ctx context.Context) ([]models.RoutingRule, error)
}

// AuditStore reads the committed transition history. Writes happen inside
// InstanceStore.CommitTransition or alongside the owning record's mutation.
type AuditStore interface {
	Insert(ctx context.Context, e *models.AuditEvent) error
	ListBySubject(ctx context.Context, workflowType, subjectID string, limit int) ([]models.AuditEvent, error)
	ListByWorkflowType(ctx context.Context, workflowType string, limit int) ([]models.AuditEvent, error)
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}
