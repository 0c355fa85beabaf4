package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewhq/backend/pkg/constants"
)

func TestLeadTransitions(t *testing.T) {
	sm := NewLeadStateMachine()

	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{constants.LeadStatusNew, constants.LeadStatusAssigned, true},
		{constants.LeadStatusAssigned, constants.LeadStatusContacted, true},
		{constants.LeadStatusContacted, constants.LeadStatusConverted, true},
		{constants.LeadStatusContacted, constants.LeadStatusLost, true},

		{constants.LeadStatusNew, constants.LeadStatusContacted, false},
		{constants.LeadStatusNew, constants.LeadStatusConverted, false},
		{constants.LeadStatusAssigned, constants.LeadStatusNew, false},
		{constants.LeadStatusAssigned, constants.LeadStatusConverted, false},
		{constants.LeadStatusConverted, constants.LeadStatusLost, false},
		{constants.LeadStatusLost, constants.LeadStatusContacted, false},
		{constants.LeadStatusNew, constants.LeadStatusNew, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.allowed, sm.CanTransition(tt.from, tt.to))

			next, err := sm.Transition(tt.from, tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, next)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.from, next)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	sm := NewLeadStateMachine()

	assert.True(t, sm.IsTerminal(constants.LeadStatusConverted))
	assert.True(t, sm.IsTerminal(constants.LeadStatusLost))
	assert.False(t, sm.IsTerminal(constants.LeadStatusNew))
	assert.False(t, sm.IsTerminal(constants.LeadStatusAssigned))
	assert.False(t, sm.IsTerminal(constants.LeadStatusContacted))
}
