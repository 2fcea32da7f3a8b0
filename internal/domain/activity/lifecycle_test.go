package activity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		allowed  bool
	}{
		{StateDraft, StateActive, true},
		{StateDraft, StateCancelled, true},
		{StateDraft, StatePaused, false},
		{StateDraft, StateCompleted, false},
		{StateActive, StatePaused, true},
		{StateActive, StateCompleted, true},
		{StateActive, StateCancelled, true},
		{StateActive, StateDraft, false},
		{StatePaused, StateActive, true},
		{StatePaused, StateCompleted, true},
		{StatePaused, StateCancelled, true},
		{StatePaused, StateDraft, false},
		{StateCompleted, StateActive, false},
		{StateCompleted, StateCancelled, false},
		{StateCancelled, StateActive, false},
		{StateCancelled, StateDraft, false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.allowed, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStates(t *testing.T) {
	require.True(t, Terminal(StateCompleted))
	require.True(t, Terminal(StateCancelled))
	require.False(t, Terminal(StateDraft))
	require.False(t, Terminal(StateActive))
	require.False(t, Terminal(StatePaused))
}

func TestValidTransitionsReturnsCopy(t *testing.T) {
	first := ValidTransitions(StateActive)
	first[0] = StateDraft
	second := ValidTransitions(StateActive)
	require.NotContains(t, second, StateDraft)
}

func TestStatusLabel(t *testing.T) {
	act := &Activity{State: StatePaused}
	require.Equal(t, "active", act.StatusLabel())

	act.State = StateCompleted
	require.Equal(t, "completed", act.StatusLabel())
}
