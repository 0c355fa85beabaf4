package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/crewhq/backend/pkg/constants"
)

func TestPercentComplete(t *testing.T) {
	inst := &WorkflowInstance{CompletedStageIDs: []string{"a"}}

	assert.Equal(t, 25, inst.PercentComplete(4))
	assert.Equal(t, 33, inst.PercentComplete(3))
	assert.Equal(t, 0, inst.PercentComplete(0))

	inst.CompletedStageIDs = []string{"a", "b", "c"}
	assert.Equal(t, 100, inst.PercentComplete(3))
}

func TestHasCompleted(t *testing.T) {
	inst := &WorkflowInstance{CompletedStageIDs: []string{"a", "b"}}
	assert.True(t, inst.HasCompleted("a"))
	assert.False(t, inst.HasCompleted("c"))
}

func TestObligationDerivedStatus(t *testing.T) {
	deadline := time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)
	o := &ComplianceObligation{
		Deadline: deadline,
		Status:   constants.ObligationStatusPending,
	}

	assert.Equal(t, constants.ObligationStatusPending, o.DerivedStatus(deadline.AddDate(0, 0, -2)))
	assert.Equal(t, constants.ObligationStatusPending, o.DerivedStatus(deadline))
	assert.Equal(t, constants.ObligationStatusOverdue, o.DerivedStatus(deadline.Add(time.Minute)))

	submitted := deadline.AddDate(0, 0, -1)
	o.SubmittedDate = &submitted
	o.Status = constants.ObligationStatusSubmitted
	assert.Equal(t, constants.ObligationStatusSubmitted, o.DerivedStatus(deadline.AddDate(0, 0, 30)))
}

func TestApprovalIsDecided(t *testing.T) {
	req := &ApprovalRequest{Status: constants.ApprovalStatusPending}
	assert.False(t, req.IsDecided())

	req.Status = constants.ApprovalStatusDenied
	assert.True(t, req.IsDecided())
}

func TestLeadIsTerminal(t *testing.T) {
	lead := &LeadRecord{Status: constants.LeadStatusContacted}
	assert.False(t, lead.IsTerminal())

	lead.Status = constants.LeadStatusConverted
	assert.True(t, lead.IsTerminal())
	lead.Status = constants.LeadStatusLost
	assert.True(t, lead.IsTerminal())
}
