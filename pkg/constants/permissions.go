package constants

// Roles carried in the JWT session. These mirror the dashboard's user base.
const (
	RoleSuperAdmin   = "super_admin"
	RoleHRManager    = "hr_manager"
	RoleSalesManager = "sales_manager"
	RoleSalesRep     = "sales_rep"
	RoleEmployee     = "employee"
)

// Capabilities gate workflow mutations. Role-gating is expressed as capability
// sets so every call site enforces the same {workflow type -> capability}
// mapping instead of scattering role-name comparisons through handlers.
const (
	CapManageOnboarding = "manage_onboarding"
	CapManageHiring     = "manage_hiring"
	CapDecideTimeOff    = "decide_time_off"
	CapSubmitTimeOff    = "submit_time_off"
	CapFileCompliance   = "file_compliance"
	CapRouteLeads       = "route_leads"
	CapAuthorStages     = "author_stages"
)

// roleCapabilities maps each role to the capabilities it holds.
var roleCapabilities = map[string]map[string]bool{
	RoleSuperAdmin: {
		CapManageOnboarding: true,
		CapManageHiring:     true,
		CapDecideTimeOff:    true,
		CapSubmitTimeOff:    true,
		CapFileCompliance:   true,
		CapRouteLeads:       true,
		CapAuthorStages:     true,
	},
	RoleHRManager: {
		CapManageOnboarding: true,
		CapManageHiring:     true,
		CapDecideTimeOff:    true,
		CapSubmitTimeOff:    true,
		CapFileCompliance:   true,
		CapAuthorStages:     true,
	},
	RoleSalesManager: {
		CapDecideTimeOff: true,
		CapSubmitTimeOff: true,
		CapRouteLeads:    true,
	},
	RoleSalesRep: {
		CapSubmitTimeOff: true,
	},
	RoleEmployee: {
		CapSubmitTimeOff: true,
	},
}

// workflowCapability maps a workflow type to the capability required to
// advance it through the Transition Engine.
var workflowCapability = map[string]string{
	WorkflowOnboarding:     CapManageOnboarding,
	WorkflowHiringPipeline: CapManageHiring,
	WorkflowTimeOff:        CapDecideTimeOff,
	WorkflowCompliance:     CapFileCompliance,
	WorkflowLeadRouting:    CapRouteLeads,
}

// RoleHasCapability reports whether the role holds the capability.
func RoleHasCapability(role, capability string) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	return caps[capability]
}

// CapabilityForWorkflow returns the capability required to advance the given
// workflow type. Unknown types map to the empty string, which no role holds.
func CapabilityForWorkflow(workflowType string) string {
	return workflowCapability[workflowType]
}

// IsSuperUser reports whether the role bypasses all capability checks.
func IsSuperUser(role string) bool {
	return role == RoleSuperAdmin
}
