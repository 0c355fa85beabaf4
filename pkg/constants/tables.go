package constants

// Table names
const (
	TableStageDefinition  = "stage_definition"
	TableWorkflowInstance = "workflow_instance"
	TableApprovalRequest  = "approval_request"
	TableObligation       = "compliance_obligation"
	TableLead             = "lead_record"
	TableCandidate        = "hiring_candidate"
	TableRoutingRule      = "routing_rule"
	TableAuditEvent       = "audit_event"
	TableNotification     = "notification"
)

// Shared field names
const (
	FieldID          = "id"
	FieldCreatedDate = "created_date"
	FieldMessage     = "message"
)

// API keys
const (
	ContextKeyUser      = "user"
	HeaderAuthorization = "Authorization"
	ResponseError       = "error"
	ResponseData        = "data"
)
