package rest

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crewhq/backend/internal/application/services"
	"github.com/crewhq/backend/pkg/errors"
)

// ComplianceHandler serves the workers'-comp filing workflow. Statuses in
// every response are derived at read time.
type ComplianceHandler struct {
	svcMgr *services.ServiceManager
}

func NewComplianceHandler(svcMgr *services.ServiceManager) *ComplianceHandler {
	return &ComplianceHandler{svcMgr: svcMgr}
}

// GetObligations handles GET /api/compliance/workers-comp
func (h *ComplianceHandler) GetObligations(c *gin.Context) {
	HandleGetEnvelope(c, "obligations", func() (interface{}, error) {
		return h.svcMgr.Compliance.List(c.Request.Context(), time.Now().UTC())
	})
}

// OpenObligation handles POST /api/compliance/workers-comp?employee_id=
func (h *ComplianceHandler) OpenObligation(c *gin.Context) {
	user := GetUserFromContext(c)

	employeeID := c.Query("employee_id")
	if employeeID == "" {
		RespondAppError(c, errors.NewValidationError("employee_id", "employee_id query parameter is required"))
		return
	}

	// Optional trigger override, YYYY-MM-DD; zero means now
	var trigger time.Time
	if raw := c.Query("trigger_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondAppError(c, errors.NewValidationError("trigger_date", "expected YYYY-MM-DD"))
			return
		}
		trigger = parsed
	}

	HandleCreateEnvelope(c, "obligation", "Obligation opened", func() (interface{}, error) {
		return h.svcMgr.Compliance.Open(c.Request.Context(), employeeID, trigger, user)
	})
}

// SubmitObligation handles POST /api/compliance/workers-comp/:id/submit
func (h *ComplianceHandler) SubmitObligation(c *gin.Context) {
	user := GetUserFromContext(c)
	obligationID := c.Param("id")

	HandleUpdateEnvelope(c, "obligation", "Filing submitted", func() (interface{}, error) {
		return h.svcMgr.Compliance.Submit(c.Request.Context(), obligationID, user)
	})
}

// ReviewObligation handles PUT /api/compliance/workers-comp/:id/review
func (h *ComplianceHandler) ReviewObligation(c *gin.Context) {
	user := GetUserFromContext(c)
	obligationID := c.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "obligation", "Filing reviewed", func() (interface{}, error) {
		return h.svcMgr.Compliance.Review(c.Request.Context(), obligationID, req.Status, user)
	})
}
