package services

import (
	"github.com/crewhq/backend/internal/infrastructure/database"
	"github.com/crewhq/backend/internal/infrastructure/persistence"
	"github.com/crewhq/backend/pkg/expression"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.Connection

	EventBus     *EventBus
	Catalog      *CatalogService
	Transitions  *TransitionService
	Approval     *ApprovalService
	Compliance   *ComplianceService
	Leads        *LeadService
	Hiring       *HiringService
	Notification *NotificationService
	Scheduler    *SchedulerService
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.Connection) *ServiceManager {
	sm := &ServiceManager{
		db: db,
	}

	// Repositories over one shared pool
	stages := persistence.NewStageRepository(db.DB())
	instances := persistence.NewInstanceRepository(db.DB())
	approvals := persistence.NewApprovalRepository(db.DB())
	obligations := persistence.NewObligationRepository(db.DB())
	leads := persistence.NewLeadRepository(db.DB())
	candidates := persistence.NewCandidateRepository(db.DB())
	rules := persistence.NewRuleRepository(db.DB())
	audit := persistence.NewAuditRepository(db.DB())
	notifications := persistence.NewNotificationRepository(db.DB())

	// Services in dependency order
	sm.EventBus = NewEventBus()
	sm.Catalog = NewCatalogService(stages)
	sm.Transitions = NewTransitionService(sm.Catalog, instances, audit, sm.EventBus)
	sm.Approval = NewApprovalService(approvals, audit, sm.EventBus)
	sm.Compliance = NewComplianceService(obligations, audit, sm.EventBus)
	sm.Leads = NewLeadService(leads, rules, audit, sm.EventBus, expression.NewEngine())
	sm.Hiring = NewHiringService(candidates, sm.Transitions)
	sm.Notification = NewNotificationService(notifications)
	sm.Scheduler = NewSchedulerService(sm.Compliance)

	// Notification fan-out listens to committed transitions
	sm.Notification.RegisterHandlers(sm.EventBus)

	return sm
}

// StartScheduler begins the background overdue sweep.
func (sm *ServiceManager) StartScheduler() error {
	return sm.Scheduler.Start()
}

// StopScheduler halts the background overdue sweep.
func (sm *ServiceManager) StopScheduler() {
	sm.Scheduler.Stop()
}
