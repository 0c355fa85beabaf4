package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/crewhq/backend/internal/application/services"
)

// PTOHandler serves the time off request/decision workflow.
type PTOHandler struct {
	svcMgr *services.ServiceManager
}

func NewPTOHandler(svcMgr *services.ServiceManager) *PTOHandler {
	return &PTOHandler{svcMgr: svcMgr}
}

// GetRequests handles GET /api/pto/requests
func (h *PTOHandler) GetRequests(c *gin.Context) {
	user := GetUserFromContext(c)

	HandleGetEnvelope(c, "requests", func() (interface{}, error) {
		return h.svcMgr.Approval.List(c.Request.Context(), user)
	})
}

// CreateRequest handles POST /api/pto/requests
func (h *PTOHandler) CreateRequest(c *gin.Context) {
	user := GetUserFromContext(c)

	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Reason    string `json:"reason"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "request", "Time off request submitted", func() (interface{}, error) {
		return h.svcMgr.Approval.Submit(c.Request.Context(), services.SubmitInput{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Reason:    req.Reason,
		}, user)
	})
}

// DecideRequest handles PUT /api/pto/requests/:id
func (h *PTOHandler) DecideRequest(c *gin.Context) {
	user := GetUserFromContext(c)
	requestID := c.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "request", "Time off request decided", func() (interface{}, error) {
		return h.svcMgr.Approval.Decide(c.Request.Context(), requestID, req.Status, user)
	})
}
