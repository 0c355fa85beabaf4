package events

// EventType identifies an in-process event published on the bus.
type EventType string

const (
	// WorkflowAdvanced fires after a transition commits (instance + audit).
	WorkflowAdvanced EventType = "workflow.advanced"
	// ApprovalDecided fires when a PTO request is approved or denied.
	ApprovalDecided EventType = "approval.decided"
	// ObligationOverdue fires when the sweep finds an unsubmitted obligation
	// past its deadline.
	ObligationOverdue EventType = "obligation.overdue"
	// LeadAssigned fires when a lead is routed to a rep.
	LeadAssigned EventType = "lead.assigned"
)
