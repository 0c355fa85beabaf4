package domain

import (
	"fmt"

	"github.com/crewhq/backend/pkg/constants"
)

// LeadStateMachine enforces valid lead status transitions. Invalid edges
// return an error (fail-fast approach).
//
// State diagram:
//
//	[new] ──Assign──▶ [assigned] ──▶ [contacted] ──▶ [converted]
//	                                      │
//	                                      └─────────▶ [lost]
//
// converted and lost are terminal.
type LeadStateMachine struct {
	// transitions maps (current status, next status) -> allowed
	transitions map[leadEdge]bool
}

type leadEdge struct {
	from string
	to   string
}

// NewLeadStateMachine creates a state machine with the lead lifecycle rules.
func NewLeadStateMachine() *LeadStateMachine {
	sm := &LeadStateMachine{
		transitions: make(map[leadEdge]bool),
	}

	// Define valid transitions
	sm.addEdge(constants.LeadStatusNew, constants.LeadStatusAssigned)
	sm.addEdge(constants.LeadStatusAssigned, constants.LeadStatusContacted)
	sm.addEdge(constants.LeadStatusContacted, constants.LeadStatusConverted)
	sm.addEdge(constants.LeadStatusContacted, constants.LeadStatusLost)

	return sm
}

func (sm *LeadStateMachine) addEdge(from, to string) {
	sm.transitions[leadEdge{from: from, to: to}] = true
}

// CanTransition checks if moving from one status to another is valid.
func (sm *LeadStateMachine) CanTransition(from, to string) bool {
	return sm.transitions[leadEdge{from: from, to: to}]
}

// Transition validates the edge and returns the new status, or an error for
// any edge outside the lifecycle ordering.
func (sm *LeadStateMachine) Transition(from, to string) (string, error) {
	if !sm.CanTransition(from, to) {
		return from, fmt.Errorf("invalid lead transition: cannot move from %s to %s", from, to)
	}
	return to, nil
}

// IsTerminal returns true if the status permits no further transitions.
func (sm *LeadStateMachine) IsTerminal(status string) bool {
	return status == constants.LeadStatusConverted || status == constants.LeadStatusLost
}
