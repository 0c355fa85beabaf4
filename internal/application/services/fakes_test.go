package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
)

// In-memory port fakes shared by the service tests.

type fakeStageStore struct {
	stages []models.StageDefinition
}

func (f *fakeStageStore) StagesFor(_ context.Context, workflowType, subtype string) ([]models.StageDefinition, error) {
	var out []models.StageDefinition
	for _, s := range f.stages {
		if s.WorkflowType == workflowType && s.IsActive && (s.Subtype == subtype || s.Subtype == "all") {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (f *fakeStageStore) AllStages(_ context.Context, workflowType string) ([]models.StageDefinition, error) {
	var out []models.StageDefinition
	for _, s := range f.stages {
		if s.WorkflowType == workflowType && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStageStore) OrdinalTaken(_ context.Context, workflowType, subtype string, ordinal int) (bool, error) {
	for _, s := range f.stages {
		if s.WorkflowType == workflowType && s.Subtype == subtype && s.Ordinal == ordinal && s.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStageStore) Insert(_ context.Context, stage *models.StageDefinition) error {
	f.stages = append(f.stages, *stage)
	return nil
}

func (f *fakeStageStore) Deactivate(_ context.Context, stageID string) error {
	for i := range f.stages {
		if f.stages[i].ID == stageID {
			f.stages[i].IsActive = false
		}
	}
	return nil
}

type fakeInstanceStore struct {
	mu        sync.Mutex
	instances map[string]*models.WorkflowInstance
	audit     []models.AuditEvent
	// conflicts injects that many version conflicts before commits succeed
	conflicts int
}

func newFakeInstanceStore() *fakeInstanceStore {
	return &fakeInstanceStore{instances: make(map[string]*models.WorkflowInstance)}
}

func instanceKey(workflowType, subjectID string) string {
	return workflowType + "|" + subjectID
}

func (f *fakeInstanceStore) GetOrCreate(_ context.Context, workflowType, subjectID, subtype string) (*models.WorkflowInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := instanceKey(workflowType, subjectID)
	if existing, ok := f.instances[key]; ok {
		return cloneInstance(existing), nil
	}
	created := &models.WorkflowInstance{
		ID:                "inst-" + subjectID,
		WorkflowType:      workflowType,
		SubjectID:         subjectID,
		Subtype:           subtype,
		CompletedStageIDs: []string{},
		Status:            "in_progress",
		CreatedDate:       time.Now().UTC(),
		Version:           1,
	}
	f.instances[key] = created
	return cloneInstance(created), nil
}

func (f *fakeInstanceStore) Load(_ context.Context, workflowType, subjectID string) (*models.WorkflowInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.instances[instanceKey(workflowType, subjectID)]; ok {
		return cloneInstance(existing), nil
	}
	return nil, nil
}

func (f *fakeInstanceStore) CommitTransition(_ context.Context, instance *models.WorkflowInstance, event *models.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return ports.ErrVersionConflict
	}
	key := instanceKey(instance.WorkflowType, instance.SubjectID)
	stored, ok := f.instances[key]
	if !ok || stored.Version != instance.Version {
		return ports.ErrVersionConflict
	}
	instance.Version++
	f.instances[key] = cloneInstance(instance)
	f.audit = append(f.audit, *event)
	return nil
}

func cloneInstance(in *models.WorkflowInstance) *models.WorkflowInstance {
	out := *in
	out.CompletedStageIDs = append([]string{}, in.CompletedStageIDs...)
	return &out
}

type fakeApprovalStore struct {
	requests map[string]*models.ApprovalRequest
}

func newFakeApprovalStore() *fakeApprovalStore {
	return &fakeApprovalStore{requests: make(map[string]*models.ApprovalRequest)}
}

func (f *fakeApprovalStore) Insert(_ context.Context, req *models.ApprovalRequest) error {
	copied := *req
	f.requests[req.ID] = &copied
	return nil
}

func (f *fakeApprovalStore) GetByID(_ context.Context, id string) (*models.ApprovalRequest, error) {
	if req, ok := f.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeApprovalStore) ListAll(_ context.Context, _ int) ([]models.ApprovalRequest, error) {
	var out []models.ApprovalRequest
	for _, req := range f.requests {
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeApprovalStore) ListByRequester(_ context.Context, requesterID string, _ int) ([]models.ApprovalRequest, error) {
	var out []models.ApprovalRequest
	for _, req := range f.requests {
		if req.RequesterID == requesterID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeApprovalStore) Decide(_ context.Context, id, status, deciderID string, decidedAt time.Time) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != "pending" {
		return false, nil
	}
	req.Status = status
	req.DeciderID = &deciderID
	req.DecidedDate = &decidedAt
	return true, nil
}

type fakeObligationStore struct {
	obligations map[string]*models.ComplianceObligation
}

func newFakeObligationStore() *fakeObligationStore {
	return &fakeObligationStore{obligations: make(map[string]*models.ComplianceObligation)}
}

func (f *fakeObligationStore) Insert(_ context.Context, o *models.ComplianceObligation) error {
	copied := *o
	f.obligations[o.ID] = &copied
	return nil
}

func (f *fakeObligationStore) GetByID(_ context.Context, id string) (*models.ComplianceObligation, error) {
	if o, ok := f.obligations[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeObligationStore) ListAll(_ context.Context, _ int) ([]models.ComplianceObligation, error) {
	var out []models.ComplianceObligation
	for _, o := range f.obligations {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeObligationStore) MarkSubmitted(_ context.Context, id, submitterID string, submittedAt time.Time) (bool, error) {
	o, ok := f.obligations[id]
	if !ok || o.SubmittedDate != nil {
		return false, nil
	}
	o.SubmittedDate = &submittedAt
	o.SubmittedByID = &submitterID
	o.Status = "submitted"
	return true, nil
}

func (f *fakeObligationStore) SetStatusGuarded(_ context.Context, id, fromStatus, toStatus string) (bool, error) {
	o, ok := f.obligations[id]
	if !ok || o.Status != fromStatus {
		return false, nil
	}
	o.Status = toStatus
	return true, nil
}

func (f *fakeObligationStore) ListUnsubmittedDue(_ context.Context, before time.Time) ([]models.ComplianceObligation, error) {
	var out []models.ComplianceObligation
	for _, o := range f.obligations {
		if o.SubmittedDate == nil && o.Deadline.Before(before) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeLeadStore struct {
	leads map[string]*models.LeadRecord
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{leads: make(map[string]*models.LeadRecord)}
}

func (f *fakeLeadStore) Insert(_ context.Context, lead *models.LeadRecord) error {
	copied := *lead
	f.leads[lead.ID] = &copied
	return nil
}

func (f *fakeLeadStore) GetByID(_ context.Context, id string) (*models.LeadRecord, error) {
	if lead, ok := f.leads[id]; ok {
		copied := *lead
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLeadStore) ListAll(_ context.Context, _ int) ([]models.LeadRecord, error) {
	var out []models.LeadRecord
	for _, lead := range f.leads {
		out = append(out, *lead)
	}
	return out, nil
}

func (f *fakeLeadStore) UpdateGuarded(_ context.Context, id, fromStatus, status string, assignedRepID *string, modifiedAt time.Time) (bool, error) {
	lead, ok := f.leads[id]
	if !ok || lead.Status != fromStatus {
		return false, nil
	}
	lead.Status = status
	if assignedRepID != nil {
		lead.AssignedRepID = assignedRepID
	}
	lead.LastModifiedDate = &modifiedAt
	return true, nil
}

type fakeRuleStore struct {
	rules []models.RoutingRule
}

func (f *fakeRuleStore) Insert(_ context.Context, r *models.RoutingRule) error {
	f.rules = append(f.rules, *r)
	return nil
}

func (f *fakeRuleStore) ListActive(_ context.Context) ([]models.RoutingRule, error) {
	var out []models.RoutingRule
	for _, r := range f.rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (f *fakeRuleStore) ListAll(_ context.Context) ([]models.RoutingRule, error) {
	return append([]models.RoutingRule{}, f.rules...), nil
}

type fakeAuditStore struct {
	events []models.AuditEvent
}

func (f *fakeAuditStore) Insert(_ context.Context, e *models.AuditEvent) error {
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeAuditStore) ListBySubject(_ context.Context, workflowType, subjectID string, _ int) ([]models.AuditEvent, error) {
	var out []models.AuditEvent
	for _, e := range f.events {
		if e.WorkflowType == workflowType && e.SubjectID == subjectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAuditStore) ListByWorkflowType(_ context.Context, workflowType string, _ int) ([]models.AuditEvent, error) {
	var out []models.AuditEvent
	for _, e := range f.events {
		if e.WorkflowType == workflowType {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeNotificationStore struct {
	notifications []models.Notification
}

func (f *fakeNotificationStore) Insert(_ context.Context, n *models.Notification) error {
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationStore) ListForUser(_ context.Context, userID string, _ int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id, userID string) error {
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].RecipientID == userID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

type fakeCandidateStore struct {
	candidates map[string]*models.Candidate
}

func newFakeCandidateStore() *fakeCandidateStore {
	return &fakeCandidateStore{candidates: make(map[string]*models.Candidate)}
}

func (f *fakeCandidateStore) Insert(_ context.Context, c *models.Candidate) error {
	copied := *c
	f.candidates[c.ID] = &copied
	return nil
}

func (f *fakeCandidateStore) GetByID(_ context.Context, id string) (*models.Candidate, error) {
	if c, ok := f.candidates[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeCandidateStore) ListAll(_ context.Context, _ int) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, c := range f.candidates {
		out = append(out, *c)
	}
	return out, nil
}

// syncPublisher records events synchronously so tests can assert on them
// without timing games.
type syncPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	Type    events.EventType
	Payload interface{}
}

func (p *syncPublisher) Publish(_ context.Context, eventType events.EventType, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *syncPublisher) PublishAsync(eventType events.EventType, payload interface{}) {
	_ = p.Publish(context.Background(), eventType, payload)
}

func (p *syncPublisher) events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent{}, p.published...)
}

var _ ports.EventPublisher = (*syncPublisher)(nil)
