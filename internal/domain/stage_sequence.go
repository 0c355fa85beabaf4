package domain

import (
	"sort"

	"github.com/crewhq/backend/internal/domain/models"
)

// StageSequence is the ordered, active stage set applicable to one subject:
// the catalog's stages for a (workflow type, subtype) scope sorted by ordinal.
type StageSequence []models.StageDefinition

// NewStageSequence sorts the given stages by ordinal. Ordinal ties within a
// scope are rejected at catalog authoring time, so the order is total.
func NewStageSequence(stages []models.StageDefinition) StageSequence {
	seq := make(StageSequence, len(stages))
	copy(seq, stages)
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].Ordinal < seq[j].Ordinal
	})
	return seq
}

// Next returns the first stage not yet in the completed set, or nil when the
// sequence is fully complete.
func (s StageSequence) Next(completedIDs []string) *models.StageDefinition {
	done := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		done[id] = true
	}
	for i := range s {
		if !done[s[i].ID] {
			return &s[i]
		}
	}
	return nil
}

// IsPrefix reports whether completedIDs is exactly the leading run of the
// sequence, in order and with no gaps. This is the core instance invariant:
// stage N+1 can never be complete while stage N is not.
func (s StageSequence) IsPrefix(completedIDs []string) bool {
	if len(completedIDs) > len(s) {
		return false
	}
	for i, id := range completedIDs {
		if s[i].ID != id {
			return false
		}
	}
	return true
}

// ByID returns the stage with the given id, or nil if absent.
func (s StageSequence) ByID(stageID string) *models.StageDefinition {
	for i := range s {
		if s[i].ID == stageID {
			return &s[i]
		}
	}
	return nil
}

// LastCompleted returns the most recently completed stage, or nil when
// nothing is complete yet.
func (s StageSequence) LastCompleted(completedIDs []string) *models.StageDefinition {
	if len(completedIDs) == 0 {
		return nil
	}
	return s.ByID(completedIDs[len(completedIDs)-1])
}
