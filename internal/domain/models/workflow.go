package models

import (
	"time"
)

// StageDefinition is one ordered step within a workflow type, optionally
// scoped to a subject subtype (employment classification for onboarding,
// hiring category for the hiring pipeline). Subtype "all" applies to every
// subject of the type.
type StageDefinition struct {
	ID           string    `json:"id"`
	WorkflowType string    `json:"workflow_type"`
	Subtype      string    `json:"subtype"`
	Name         string    `json:"name"`
	Ordinal      int       `json:"ordinal"`
	IsActive     bool      `json:"is_active"`
	CreatedDate  time.Time `json:"created_date"`
}

// WorkflowInstance is the progress record of one subject through one workflow
// type's stage sequence. CompletedStageIDs preserves insertion order and is
// always a prefix of the applicable stage sequence. Version backs the
// optimistic compare-and-set on every mutation.
type WorkflowInstance struct {
	ID                 string     `json:"id"`
	WorkflowType       string     `json:"workflow_type"`
	SubjectID          string     `json:"subject_id"`
	Subtype            string     `json:"subtype"`
	CompletedStageIDs  []string   `json:"completed_stage_ids"`
	Status             string     `json:"status"`
	CreatedDate        time.Time  `json:"created_date"`
	LastTransitionDate *time.Time `json:"last_transition_date,omitempty"`
	LastActorID        *string    `json:"last_actor_id,omitempty"`
	Version            int64      `json:"version"`
}

// HasCompleted reports whether the stage id is in the completed set.
func (i *WorkflowInstance) HasCompleted(stageID string) bool {
	for _, id := range i.CompletedStageIDs {
		if id == stageID {
			return true
		}
	}
	return false
}

// PercentComplete derives completion out of the applicable sequence length.
// Derived on read, never stored.
func (i *WorkflowInstance) PercentComplete(sequenceLen int) int {
	if sequenceLen == 0 {
		return 0
	}
	return len(i.CompletedStageIDs) * 100 / sequenceLen
}
