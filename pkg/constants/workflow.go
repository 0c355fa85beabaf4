package constants

// WorkflowType identifies one of the five lifecycle workflows backed by the
// engine. Fixed at design time; not user-extensible.
const (
	WorkflowOnboarding     = "onboarding"
	WorkflowHiringPipeline = "hiring_pipeline"
	WorkflowTimeOff        = "time_off_approval"
	WorkflowCompliance     = "compliance_obligation"
	WorkflowLeadRouting    = "lead_routing"
)

// SubtypeAll matches every subject regardless of classification or category.
const SubtypeAll = "all"

// Employment classifications (onboarding stage scopes)
const (
	ClassificationW2   = "w2"
	Classification1099 = "1099"
)

// Hiring categories (hiring pipeline stage scopes)
const (
	HiringCategoryInsurance  = "insurance"
	HiringCategoryRetail     = "retail"
	HiringCategoryOffice     = "office"
	HiringCategoryProduction = "production"
)

// Workflow instance statuses
const (
	InstanceStatusInProgress = "in_progress"
	InstanceStatusComplete   = "complete"
)

// Approval request statuses
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusDenied   = "denied"
)

// Compliance obligation statuses. Overdue is derived on read, never stored.
const (
	ObligationStatusPending   = "pending"
	ObligationStatusSubmitted = "submitted"
	ObligationStatusApproved  = "approved"
	ObligationStatusRejected  = "rejected"
	ObligationStatusOverdue   = "overdue"
)

// Lead statuses
const (
	LeadStatusNew       = "new"
	LeadStatusAssigned  = "assigned"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// DefaultComplianceWindowDays is the workers'-comp filing window applied when
// COMPLIANCE_WINDOW_DAYS is unset. Calendar days, counted from the trigger.
const DefaultComplianceWindowDays = 5

// ConflictRetryAttempts bounds the reload-and-retry loop for optimistic
// concurrency collisions before the failure is surfaced to the caller.
const ConflictRetryAttempts = 3

// ValidClassifications lists the accepted onboarding subtypes.
var ValidClassifications = []string{SubtypeAll, ClassificationW2, Classification1099}

// ValidHiringCategories lists the accepted hiring pipeline subtypes.
var ValidHiringCategories = []string{HiringCategoryInsurance, HiringCategoryRetail, HiringCategoryOffice, HiringCategoryProduction}

// IsValidClassification reports whether c is a known employment classification.
func IsValidClassification(c string) bool {
	for _, v := range ValidClassifications {
		if v == c {
			return true
		}
	}
	return false
}

// IsValidHiringCategory reports whether c is a known hiring category.
func IsValidHiringCategory(c string) bool {
	for _, v := range ValidHiringCategories {
		if v == c {
			return true
		}
	}
	return false
}
