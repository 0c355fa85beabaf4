package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/crewhq/backend/internal/application/services"
	"github.com/crewhq/backend/pkg/constants"
)

// OnboardingHandler serves the employee onboarding workflow: the stage
// catalog per classification and per-employee progress.
type OnboardingHandler struct {
	svcMgr *services.ServiceManager
}

func NewOnboardingHandler(svcMgr *services.ServiceManager) *OnboardingHandler {
	return &OnboardingHandler{svcMgr: svcMgr}
}

// GetStages handles GET /api/onboarding/stages?classification=
func (h *OnboardingHandler) GetStages(c *gin.Context) {
	classification := c.DefaultQuery("classification", constants.SubtypeAll)

	HandleGetEnvelope(c, "stages", func() (interface{}, error) {
		return h.svcMgr.Catalog.StagesFor(c.Request.Context(), constants.WorkflowOnboarding, classification)
	})
}

// CreateStage handles POST /api/onboarding/stages
func (h *OnboardingHandler) CreateStage(c *gin.Context) {
	user := GetUserFromContext(c)

	var req struct {
		Classification string `json:"classification"`
		Name           string `json:"name"`
		Ordinal        int    `json:"ordinal"`
	}
	if !BindJSON(c, &req) {
		return
	}
	if req.Classification == "" {
		req.Classification = constants.SubtypeAll
	}

	HandleCreateEnvelope(c, "stage", "Stage created", func() (interface{}, error) {
		return h.svcMgr.Catalog.CreateStage(c.Request.Context(), services.CreateStageInput{
			WorkflowType: constants.WorkflowOnboarding,
			Subtype:      req.Classification,
			Name:         req.Name,
			Ordinal:      req.Ordinal,
		}, user)
	})
}

// DeactivateStage handles DELETE /api/onboarding/stages/:id
func (h *OnboardingHandler) DeactivateStage(c *gin.Context) {
	user := GetUserFromContext(c)
	stageID := c.Param("id")

	if err := h.svcMgr.Catalog.DeactivateStage(c.Request.Context(), stageID, user); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(200, gin.H{constants.FieldMessage: "Stage deactivated"})
}

// GetEmployeeProgress handles GET /api/onboarding/employee/:id?classification=
func (h *OnboardingHandler) GetEmployeeProgress(c *gin.Context) {
	employeeID := c.Param("id")
	classification := c.DefaultQuery("classification", constants.SubtypeAll)

	HandleGetEnvelope(c, "progress", func() (interface{}, error) {
		return h.svcMgr.Transitions.GetProgress(c.Request.Context(), constants.WorkflowOnboarding, employeeID, classification)
	})
}

// CompleteStage handles POST /api/onboarding/employee/:id/stage/:stageId/complete
func (h *OnboardingHandler) CompleteStage(c *gin.Context) {
	user := GetUserFromContext(c)
	employeeID := c.Param("id")
	stageID := c.Param("stageId")
	classification := c.DefaultQuery("classification", constants.SubtypeAll)

	HandleUpdateEnvelope(c, "instance", "Stage completed", func() (interface{}, error) {
		return h.svcMgr.Transitions.Advance(c.Request.Context(), services.AdvanceRequest{
			WorkflowType:  constants.WorkflowOnboarding,
			SubjectID:     employeeID,
			Subtype:       classification,
			TargetStageID: stageID,
		}, user)
	})
}

// GetEmployeeHistory handles GET /api/onboarding/employee/:id/history
func (h *OnboardingHandler) GetEmployeeHistory(c *gin.Context) {
	employeeID := c.Param("id")

	HandleGetEnvelope(c, "history", func() (interface{}, error) {
		return h.svcMgr.Transitions.History(c.Request.Context(), constants.WorkflowOnboarding, employeeID)
	})
}
