package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/crewhq/backend/internal/application/services"
	"github.com/crewhq/backend/pkg/constants"
	"github.com/crewhq/backend/pkg/errors"
)

// LeadHandler serves lead intake, routing rules, assignments and the QR scan
// read model.
type LeadHandler struct {
	svcMgr *services.ServiceManager
}

func NewLeadHandler(svcMgr *services.ServiceManager) *LeadHandler {
	return &LeadHandler{svcMgr: svcMgr}
}

// GetAssignments handles GET /api/assignments
func (h *LeadHandler) GetAssignments(c *gin.Context) {
	HandleGetEnvelope(c, "leads", func() (interface{}, error) {
		return h.svcMgr.Leads.List(c.Request.Context())
	})
}

// GetQRScans handles GET /api/assignments/qr-scans.
// The scan feed is the lead slice of the transition trail.
func (h *LeadHandler) GetQRScans(c *gin.Context) {
	HandleGetEnvelope(c, "scans", func() (interface{}, error) {
		return h.svcMgr.Leads.ScanEvents(c.Request.Context())
	})
}

// CreateLead handles POST /api/qr-generator/leads
func (h *LeadHandler) CreateLead(c *gin.Context) {
	user := GetUserFromContext(c)

	var req struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Source   string `json:"source"`
		Priority string `json:"priority"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "lead", "Lead created", func() (interface{}, error) {
		return h.svcMgr.Leads.Intake(c.Request.Context(), services.IntakeInput{
			Name:     req.Name,
			Phone:    req.Phone,
			Source:   req.Source,
			Priority: req.Priority,
		}, user)
	})
}

// UpdateLead handles PUT /api/qr-generator/leads/:id.
// Body carries {status} for a lifecycle move or {assigned_to, status} for an
// assignment.
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	user := GetUserFromContext(c)
	leadID := c.Param("id")

	var req struct {
		Status     string `json:"status"`
		AssignedTo string `json:"assigned_to"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "lead", "Lead updated", func() (interface{}, error) {
		if req.AssignedTo != "" {
			if req.Status != "" && req.Status != constants.LeadStatusAssigned {
				return nil, errors.NewValidationError("status", "assignment always moves a lead to assigned")
			}
			return h.svcMgr.Leads.Assign(c.Request.Context(), leadID, req.AssignedTo, user)
		}
		if req.Status == "" {
			return nil, errors.NewValidationError("status", "status or assigned_to is required")
		}
		return h.svcMgr.Leads.SetStatus(c.Request.Context(), leadID, req.Status, user)
	})
}

// GetLeadHistory handles GET /api/qr-generator/leads/:id/history
func (h *LeadHandler) GetLeadHistory(c *gin.Context) {
	leadID := c.Param("id")

	HandleGetEnvelope(c, "history", func() (interface{}, error) {
		return h.svcMgr.Leads.History(c.Request.Context(), leadID)
	})
}

// GetRoutingRules handles GET /api/routing/rules
func (h *LeadHandler) GetRoutingRules(c *gin.Context) {
	HandleGetEnvelope(c, "rules", func() (interface{}, error) {
		return h.svcMgr.Leads.ListRules(c.Request.Context())
	})
}

// CreateRoutingRule handles POST /api/routing/rules
func (h *LeadHandler) CreateRoutingRule(c *gin.Context) {
	user := GetUserFromContext(c)

	var req struct {
		Name        string `json:"name"`
		Condition   string `json:"condition"`
		TargetRepID string `json:"target_rep_id"`
		Priority    int    `json:"priority"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "rule", "Routing rule created", func() (interface{}, error) {
		return h.svcMgr.Leads.CreateRule(c.Request.Context(), services.CreateRuleInput{
			Name:        req.Name,
			Condition:   req.Condition,
			TargetRepID: req.TargetRepID,
			Priority:    req.Priority,
		}, user)
	})
}
