package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/crewhq/backend/internal/application/services"
	"github.com/crewhq/backend/pkg/constants"
)

// HiringHandler serves the hiring pipeline: per-category stage flows and
// candidate movement.
type HiringHandler struct {
	svcMgr *services.ServiceManager
}

func NewHiringHandler(svcMgr *services.ServiceManager) *HiringHandler {
	return &HiringHandler{svcMgr: svcMgr}
}

// GetFlows handles GET /api/hiring/flows
func (h *HiringHandler) GetFlows(c *gin.Context) {
	HandleGetEnvelope(c, "flows", func() (interface{}, error) {
		return h.svcMgr.Catalog.HiringFlows(c.Request.Context())
	})
}

// CreateStage handles POST /api/hiring/stages
func (h *HiringHandler) CreateStage(c *gin.Context) {
	user := GetUserFromContext(c)

	var req struct {
		Category string `json:"category"`
		Name     string `json:"name"`
		Ordinal  int    `json:"ordinal"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "stage", "Stage created", func() (interface{}, error) {
		return h.svcMgr.Catalog.CreateStage(c.Request.Context(), services.CreateStageInput{
			WorkflowType: constants.WorkflowHiringPipeline,
			Subtype:      req.Category,
			Name:         req.Name,
			Ordinal:      req.Ordinal,
		}, user)
	})
}

// GetCandidates handles GET /api/hiring/candidates
func (h *HiringHandler) GetCandidates(c *gin.Context) {
	HandleGetEnvelope(c, "candidates", func() (interface{}, error) {
		return h.svcMgr.Hiring.ListCandidates(c.Request.Context())
	})
}

// CreateCandidate handles POST /api/hiring/candidates
func (h *HiringHandler) CreateCandidate(c *gin.Context) {
	user := GetUserFromContext(c)

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Category string `json:"category"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleCreateEnvelope(c, "candidate", "Candidate created", func() (interface{}, error) {
		return h.svcMgr.Hiring.CreateCandidate(c.Request.Context(), services.CreateCandidateInput{
			Name:     req.Name,
			Email:    req.Email,
			Category: req.Category,
		}, user)
	})
}

// GetCandidateProgress handles GET /api/hiring/candidates/:id/progress
func (h *HiringHandler) GetCandidateProgress(c *gin.Context) {
	candidateID := c.Param("id")

	HandleGetEnvelope(c, "progress", func() (interface{}, error) {
		return h.svcMgr.Hiring.CandidateProgress(c.Request.Context(), candidateID)
	})
}

// AdvanceCandidate handles POST /api/hiring/candidates/:id/advance
func (h *HiringHandler) AdvanceCandidate(c *gin.Context) {
	user := GetUserFromContext(c)
	candidateID := c.Param("id")

	var req struct {
		StageID string `json:"stage_id"`
	}
	if !BindJSON(c, &req) {
		return
	}

	HandleUpdateEnvelope(c, "instance", "Candidate advanced", func() (interface{}, error) {
		return h.svcMgr.Hiring.AdvanceCandidate(c.Request.Context(), candidateID, req.StageID, user)
	})
}
